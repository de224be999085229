package monnify

import (
	"fmt"
	"strings"
)

type Environment string

const (
	EnvLive    Environment = "live"
	EnvSandbox Environment = "sandbox"

	// Resolve environment from the api key format
	EnvAuto Environment = "auto"
)

// Live api keys issued by Monnify contain the marker, sandbox ones don't
const LiveKeyMarker = "MK_PROD"

const (
	LiveBaseURL    = "https://api.monnify.com"
	SandboxBaseURL = "https://sandbox.monnify.com"
)

const (
	authPath         = "/api/v1/auth/login"
	disbursementPath = "/api/v2/disbursements/single"
)

// DetectEnvironment chooses live environment if the key contains the live marker
func DetectEnvironment(apiKey string) Environment {
	if strings.Contains(apiKey, LiveKeyMarker) {
		return EnvLive
	}
	return EnvSandbox
}

// ParseEnvironment parses configured value; "auto" and empty resolve by the api key
func ParseEnvironment(value string, apiKey string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(value))) {
	case EnvLive:
		return EnvLive, nil
	case EnvSandbox:
		return EnvSandbox, nil
	case EnvAuto, "":
		return DetectEnvironment(apiKey), nil
	default:
		return "", fmt.Errorf("unknown monnify environment %q, expected one of live, sandbox, auto", value)
	}
}

func (e Environment) BaseURL() string {
	if e == EnvLive {
		return LiveBaseURL
	}
	return SandboxBaseURL
}

func (e Environment) Endpoints() Endpoints {
	return NewEndpoints(e.BaseURL())
}

// Endpoints the client talks to
type Endpoints struct {
	Auth         string
	Disbursement string
}

func NewEndpoints(baseURL string) Endpoints {
	base := strings.TrimRight(baseURL, "/")
	return Endpoints{
		Auth:         base + authPath,
		Disbursement: base + disbursementPath,
	}
}
