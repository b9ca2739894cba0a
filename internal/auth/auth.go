// Package auth resolves the caller's identity from an incoming request.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

// ErrUnauthenticated means the request carries no usable credentials.
var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator resolves the identity behind a request.
type Authenticator interface {
	Authenticate(r *http.Request) (model.Identity, error)
}

// HeaderAuthenticator trusts X-User-Id and X-User-Email, set by an
// authenticating gateway in front of the service.
type HeaderAuthenticator struct{}

func (HeaderAuthenticator) Authenticate(r *http.Request) (model.Identity, error) {
	id := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if id == "" {
		return model.Identity{}, ErrUnauthenticated
	}
	return model.Identity{ID: id, Email: strings.TrimSpace(r.Header.Get("X-User-Email"))}, nil
}

// RemoteAuthenticator validates bearer tokens against the hosted auth
// service's user endpoint.
type RemoteAuthenticator struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewRemoteAuthenticator(baseURL, apiKey string) *RemoteAuthenticator {
	return &RemoteAuthenticator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func (a *RemoteAuthenticator) Authenticate(r *http.Request) (model.Identity, error) {
	token := bearer(r)
	if token == "" {
		return model.Identity{}, ErrUnauthenticated
	}
	return a.lookup(r.Context(), token)
}

func (a *RemoteAuthenticator) lookup(ctx context.Context, token string) (model.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/user", nil)
	if err != nil {
		return model.Identity{}, fmt.Errorf("building auth request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if a.APIKey != "" {
		req.Header.Set("apikey", a.APIKey)
	}
	resp, err := a.Client.Do(req)
	if err != nil {
		return model.Identity{}, fmt.Errorf("calling auth service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return model.Identity{}, ErrUnauthenticated
	case resp.StatusCode/100 != 2:
		return model.Identity{}, fmt.Errorf("auth service returned %d", resp.StatusCode)
	}
	var id model.Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return model.Identity{}, fmt.Errorf("decoding auth user: %w", err)
	}
	if id.ID == "" {
		return model.Identity{}, ErrUnauthenticated
	}
	return id, nil
}
