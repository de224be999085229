package monnify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nkiryanov/autosave/internal/logger"
)

const (
	defaultTimeout = 15 * time.Second

	// Provider responses are small; anything bigger is cut
	maxResponseSize = 1 << 20
)

type Config struct {
	APIKey    string
	SecretKey string

	Environment Environment

	// Overrides environment host if set
	BaseURL string

	// Timeout for each outbound call
	Timeout time.Duration
}

type Client struct {
	apiKey    string
	secretKey string
	endpoints Endpoints

	client *http.Client
	logger logger.Logger
}

func NewClient(cfg Config, l logger.Logger) (*Client, error) {
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("monnify api key and secret key must not be empty")
	}

	if cfg.Environment == "" || cfg.Environment == EnvAuto {
		cfg.Environment = DetectEnvironment(cfg.APIKey)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	endpoints := cfg.Environment.Endpoints()
	if cfg.BaseURL != "" {
		endpoints = NewEndpoints(cfg.BaseURL)
	}

	return &Client{
		apiKey:    cfg.APIKey,
		secretKey: cfg.SecretKey,
		endpoints: endpoints,
		client:    &http.Client{Timeout: cfg.Timeout},
		logger:    l.With("component", "monnify"),
	}, nil
}

func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// Envelope every Monnify response is wrapped into
type envelope[T any] struct {
	RequestSuccessful bool   `json:"requestSuccessful"`
	ResponseMessage   string `json:"responseMessage"`
	ResponseCode      string `json:"responseCode"`
	ResponseBody      *T     `json:"responseBody"`
}

// post sends request and reads the whole (limited) response body
// Transport level failures are returned as *Error with CodeConnection
func (c *Client) post(ctx context.Context, url string, authorization string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, newError(CodeUnknown, 0, "", fmt.Errorf("failed to encode request: %w", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return 0, nil, newError(CodeUnknown, 0, "", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, newError(CodeConnection, 0, "", fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close() // nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, nil, newError(CodeConnection, resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err))
	}

	return resp.StatusCode, raw, nil
}

func basicAuth(key string, secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(key+":"+secret))
}

func bearerAuth(token string) string {
	return "Bearer " + token
}
