package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/autosave/internal/logger"
	"github.com/nkiryanov/autosave/internal/service/monnify"
	"github.com/nkiryanov/autosave/internal/service/split"
)

const (
	defaultListenAddr     = "localhost:10000"
	defaultLoggingLevel   = logger.LevelInfo
	defaultEnvironment    = logger.EnvProduction
	defaultMonnifyEnv     = string(monnify.EnvAuto)
	defaultMonnifyTimeout = 15 * time.Second
	defaultBankCode       = "999992"
	defaultLedgerEnabled  = true
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Environment (dev, prod) of the service itself, defines log format
	Environment string

	// Monnify credentials; secret also signs incoming webhooks
	MonnifyAPIKey       string
	MonnifySecret       string
	MonnifyContractCode string

	// live, sandbox or auto (resolved by api key)
	MonnifyEnvironment string

	// Overrides Monnify host; empty means environment default
	MonnifyBaseURL string

	MonnifyTimeout time.Duration

	// Provider wallet the spending money is sent from
	WalletAccount string

	// Bank account the spending money is sent to
	BankCode      string
	AccountNumber string

	SavingsPercentage decimal.Decimal

	// Record savings to the ledger
	LedgerEnabled bool

	// Secret key to sign operator tokens
	// Operator API is enabled only if both key and password hash are set
	SecretKey            string
	OperatorPasswordHash string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:           defaultLoggingLevel,
		ListenAddr:         defaultListenAddr,
		Environment:        defaultEnvironment,
		MonnifyEnvironment: defaultMonnifyEnv,
		MonnifyTimeout:     defaultMonnifyTimeout,
		BankCode:           defaultBankCode,
		SavingsPercentage:  split.DefaultPercentage,
		LedgerEnabled:      defaultLedgerEnabled,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setBool := func(o *bool) func(value string) error {
		return func(value string) (err error) {
			if value != "" {
				*o, err = strconv.ParseBool(value)
			}
			return err
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) (err error) {
			if value != "" {
				*o, err = time.ParseDuration(value)
			}
			return err
		}
	}
	setDecimal := func(o *decimal.Decimal) func(value string) error {
		return func(value string) (err error) {
			if value != "" {
				*o, err = decimal.NewFromString(value)
			}
			return err
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":               setString(&c.ListenAddr),
		"DATABASE_URI":              setString(&c.DatabaseDSN),
		"LOG_LEVEL":                 setString(&c.LogLevel),
		"ENVIRONMENT":               setString(&c.Environment),
		"MONNIFY_API_KEY":           setString(&c.MonnifyAPIKey),
		"MONNIFY_SECRET":            setString(&c.MonnifySecret),
		"MONNIFY_CONTRACT_CODE":     setString(&c.MonnifyContractCode),
		"MONNIFY_ENVIRONMENT":       setString(&c.MonnifyEnvironment),
		"MONNIFY_BASE_URL":          setString(&c.MonnifyBaseURL),
		"MONNIFY_TIMEOUT":           setDuration(&c.MonnifyTimeout),
		"MY_MONNIFY_WALLET_ACCOUNT": setString(&c.WalletAccount),
		"MY_REAL_BANK_CODE":         setString(&c.BankCode),
		"MY_REAL_ACCOUNT_NUM":       setString(&c.AccountNumber),
		"SAVINGS_PERCENTAGE":        setDecimal(&c.SavingsPercentage),
		"LEDGER_ENABLED":            setBool(&c.LedgerEnabled),
		"SECRET_KEY":                setString(&c.SecretKey),
		"OPERATOR_PASSWORD_HASH":    setString(&c.OperatorPasswordHash),
	}

	var errs []error
	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("autosave", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.MonnifyAPIKey, "api-key", c.MonnifyAPIKey, "Monnify API key")
	fs.StringVar(&c.MonnifySecret, "api-secret", c.MonnifySecret, "Monnify secret key")
	fs.StringVar(&c.MonnifyContractCode, "contract-code", c.MonnifyContractCode, "Monnify contract code")
	fs.StringVar(&c.MonnifyEnvironment, "monnify-env", c.MonnifyEnvironment, "Monnify environment (live, sandbox, auto)")
	fs.StringVar(&c.MonnifyBaseURL, "monnify-url", c.MonnifyBaseURL, "Monnify base URL, overrides environment host")
	fs.DurationVar(&c.MonnifyTimeout, "monnify-timeout", c.MonnifyTimeout, "Timeout of every Monnify call")
	fs.StringVar(&c.WalletAccount, "wallet-account", c.WalletAccount, "Monnify wallet account to send money from")
	fs.StringVar(&c.BankCode, "bank-code", c.BankCode, "Destination bank code")
	fs.StringVar(&c.AccountNumber, "account-number", c.AccountNumber, "Destination account number")
	fs.Var(&decimalFlag{&c.SavingsPercentage}, "savings-percentage", "Share of every payment kept as savings, from 0 to 1")
	fs.BoolVar(&c.LedgerEnabled, "ledger", c.LedgerEnabled, "Record savings to the ledger")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key to sign operator tokens")
	fs.StringVar(&c.OperatorPasswordHash, "operator-password-hash", c.OperatorPasswordHash, "Operator password hash")

	return fs.Parse(args)
}

// Validate fails on missing secrets or values the service can't run with
func (c *Config) Validate() error {
	var errs []error

	required := map[string]string{
		"DATABASE_URI":              c.DatabaseDSN,
		"MONNIFY_API_KEY":           c.MonnifyAPIKey,
		"MONNIFY_SECRET":            c.MonnifySecret,
		"MY_MONNIFY_WALLET_ACCOUNT": c.WalletAccount,
		"MY_REAL_BANK_CODE":         c.BankCode,
		"MY_REAL_ACCOUNT_NUM":       c.AccountNumber,
	}
	for key, value := range required {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s must be set", key))
		}
	}

	if _, err := monnify.ParseEnvironment(c.MonnifyEnvironment, c.MonnifyAPIKey); err != nil {
		errs = append(errs, err)
	}
	if err := split.ValidatePercentage(c.SavingsPercentage); err != nil {
		errs = append(errs, fmt.Errorf("invalid savings percentage %s: %w", c.SavingsPercentage, err))
	}
	if c.MonnifyTimeout <= 0 {
		errs = append(errs, errors.New("monnify timeout must be positive"))
	}
	if (c.SecretKey == "") != (c.OperatorPasswordHash == "") {
		errs = append(errs, errors.New("SECRET_KEY and OPERATOR_PASSWORD_HASH must be set together"))
	}

	return errors.Join(errs...)
}

func (c *Config) OperatorEnabled() bool {
	return c.SecretKey != "" && c.OperatorPasswordHash != ""
}

// pflag value for decimal numbers
type decimalFlag struct {
	d *decimal.Decimal
}

func (f *decimalFlag) String() string {
	if f.d == nil {
		return ""
	}
	return f.d.String()
}

func (f *decimalFlag) Set(value string) error {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return err
	}
	*f.d = d
	return nil
}

func (f *decimalFlag) Type() string {
	return "decimal"
}
