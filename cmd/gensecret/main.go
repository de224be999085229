package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/nkiryanov/autosave/internal/service/auth"
)

const SecretKeyBytesLen = 32

// Prints random secret key for SECRET_KEY
// With --password prints operator password hash for OPERATOR_PASSWORD_HASH instead
func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("gensecret", pflag.ContinueOnError)
	password := fs.StringP("password", "p", "", "Operator password to hash")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *password != "" {
		hash, err := auth.BcryptHasher{}.Hash(*password)
		if err != nil {
			return fmt.Errorf("error while hashing password: %w", err)
		}
		_, err = fmt.Fprintln(out, hash)
		return err
	}

	b := make([]byte, SecretKeyBytesLen)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("error while generating secret key: %w", err)
	}

	_, err := fmt.Fprintln(out, hex.EncodeToString(b))
	return err
}
