package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// FakeMonnify serves Monnify auth and disbursement endpoints and records calls
type FakeMonnify struct {
	URL string

	mu sync.Mutex

	// Auth answers with this status; token is issued only on 200
	authStatus int

	// Value of requestSuccessful in disbursement response
	disburseSuccessful bool

	authCalls     int
	disbursements []map[string]any
	bearers       []string
}

func StartFakeMonnify(t *testing.T) *FakeMonnify {
	t.Helper()

	f := &FakeMonnify{
		authStatus:         http.StatusOK,
		disburseSuccessful: true,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", f.handleAuth)
	mux.HandleFunc("POST /api/v2/disbursements/single", f.handleDisburse)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	f.URL = srv.URL

	return f
}

func (f *FakeMonnify) handleAuth(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++

	if _, _, ok := r.BasicAuth(); !ok || f.authStatus != http.StatusOK {
		status := f.authStatus
		if status == http.StatusOK {
			status = http.StatusUnauthorized
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"requestSuccessful":false,"responseMessage":"Invalid credentials"}`))
		return
	}

	_, _ = w.Write([]byte(`{"requestSuccessful":true,"responseMessage":"0","responseCode":"0","responseBody":{"accessToken":"fake-token","expiresIn":3600}}`))
}

func (f *FakeMonnify) handleDisburse(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.disbursements = append(f.disbursements, body)
	f.bearers = append(f.bearers, r.Header.Get("Authorization"))

	if !f.disburseSuccessful {
		_, _ = w.Write([]byte(`{"requestSuccessful":false,"responseMessage":"Insufficient balance","responseCode":"D02"}`))
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"requestSuccessful": true,
		"responseMessage":   "success",
		"responseCode":      "0",
		"responseBody": map[string]any{
			"amount":    body["amount"],
			"reference": body["reference"],
			"status":    "SUCCESS",
			"totalFee":  10,
		},
	})
}

func (f *FakeMonnify) SetAuthStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authStatus = status
}

func (f *FakeMonnify) SetDisburseSuccessful(ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disburseSuccessful = ok
}

func (f *FakeMonnify) AuthCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authCalls
}

// Disbursement request bodies in order they were received
func (f *FakeMonnify) Disbursements() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.disbursements...)
}

func (f *FakeMonnify) Bearers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bearers...)
}
