package monnify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type authBody struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

// Authenticate exchanges api key and secret for a bearer token
// Token is not cached: every call hits the provider
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	status, raw, err := c.post(ctx, c.endpoints.Auth, basicAuth(c.apiKey, c.secretKey), nil)
	if err != nil {
		c.logger.Error("Monnify auth connection error", "error", err)
		return "", err
	}

	if status != http.StatusOK {
		c.logger.Error("Monnify auth failed", "status_code", status, "body", string(raw))
		return "", newError(CodeAuthFailed, status, string(raw), fmt.Errorf("unexpected status code %d", status))
	}

	var resp envelope[authBody]
	err = json.Unmarshal(raw, &resp)
	if err != nil {
		c.logger.Error("Monnify auth response is not valid json", "error", err, "body", string(raw))
		return "", newError(CodeMalformedResponse, status, string(raw), fmt.Errorf("failed to decode response: %w", err))
	}
	if resp.ResponseBody == nil || resp.ResponseBody.AccessToken == "" {
		c.logger.Error("Monnify auth response has no access token", "body", string(raw))
		return "", newError(CodeMalformedResponse, status, string(raw), errors.New("responseBody.accessToken is missing"))
	}

	c.logger.Debug("Monnify access token obtained", "expires_in", resp.ResponseBody.ExpiresIn)
	return resp.ResponseBody.AccessToken, nil
}
