package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Henok-Aragaw/echo/internal/model"
)

// HTTPVerifier resolves sessions against the hosted auth service's REST API.
type HTTPVerifier struct {
	client *resty.Client
}

// NewHTTPVerifier creates a verifier against the auth service base URL.
func NewHTTPVerifier(baseURL string) *HTTPVerifier {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(5 * time.Second)
	return &HTTPVerifier{client: c}
}

type sessionResponse struct {
	Session *struct {
		ID string `json:"id"`
	} `json:"session"`
	User *struct {
		ID    string  `json:"id"`
		Email string  `json:"email"`
		Name  *string `json:"name"`
	} `json:"user"`
}

// VerifySession asks the auth service for the session behind a bearer token.
func (v *HTTPVerifier) VerifySession(ctx context.Context, token string) (*Session, error) {
	resp, err := v.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		Get("/api/auth/get-session")
	if err != nil {
		return nil, fmt.Errorf("auth request: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, ErrNoSession
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("auth status %d: %s", resp.StatusCode(), resp.String())
	}

	var sr sessionResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	// The auth service answers 200 with a null body for unknown tokens.
	if sr.Session == nil || sr.User == nil {
		return nil, ErrNoSession
	}
	return &Session{
		SessionID: sr.Session.ID,
		Token:     token,
		User: model.User{
			UserID:      sr.User.ID,
			Email:       sr.User.Email,
			DisplayName: sr.User.Name,
		},
	}, nil
}

// DeleteUser asks the auth service to delete the account behind the token.
func (v *HTTPVerifier) DeleteUser(ctx context.Context, token string) error {
	resp, err := v.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetBody(map[string]interface{}{}).
		Post("/api/auth/delete-user")
	if err != nil {
		return fmt.Errorf("auth request: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return ErrNoSession
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("auth status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
