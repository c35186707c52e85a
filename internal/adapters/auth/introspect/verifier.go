// Package introspect verifica tokens contra un proveedor de identidad externo
// (endpoint de introspección al estilo RFC 7662). Se usa cuando el despliegue
// no firma sus propios JWT.
package introspect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"epaws/internal/platform/httpclient"
	"epaws/internal/platform/sentinel"
	"epaws/internal/ports/auth"
)

var ErrNotConfigured = errors.New("introspect: url and api key are required")

type Config struct {
	URL    string
	APIKey string
	// Header de la API key; vacío = X-Api-Key.
	APIKeyHeader string
	Timeout      time.Duration
}

type Verifier struct {
	client *httpclient.Client
	url    string
}

var _ auth.AuthVerifier = (*Verifier)(nil)

func New(cfg Config) (*Verifier, error) {
	if strings.TrimSpace(cfg.URL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	u := strings.TrimSpace(cfg.URL)
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return nil, fmt.Errorf("introspect: url must be absolute: %q", u)
	}

	c, err := httpclient.New(httpclient.Options{
		Timeout: timeout,
		Headers: map[string]string{h: strings.TrimSpace(cfg.APIKey)},
	})
	if err != nil {
		return nil, err
	}
	return &Verifier{client: c, url: u}, nil
}

type introspectResponse struct {
	Active bool   `json:"active"`
	Sub    string `json:"sub"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, fmt.Errorf("%w: empty token", sentinel.ErrUnauthorized)
	}

	var out introspectResponse
	err := v.client.DoJSON(ctx, http.MethodPost, v.url, nil, map[string]string{"token": token}, &out)
	if err != nil {
		if errors.Is(err, sentinel.ErrUnauthorized) || errors.Is(err, sentinel.ErrForbidden) {
			return auth.Claims{}, fmt.Errorf("%w: rejected by identity provider", sentinel.ErrUnauthorized)
		}
		return auth.Claims{}, fmt.Errorf("introspect: %w", err)
	}

	sub := strings.TrimSpace(out.Sub)
	if !out.Active || sub == "" {
		return auth.Claims{}, fmt.Errorf("%w: token is not active", sentinel.ErrUnauthorized)
	}
	return auth.Claims{
		UserID: sub,
		Email:  strings.TrimSpace(out.Email),
		Role:   auth.ParseRole(out.Role),
	}, nil
}
