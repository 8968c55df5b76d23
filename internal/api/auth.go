package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/credstore"
)

// Credentials is the login/register payload.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by login and register.
type AuthResult struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user,omitempty"`
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, creds Credentials) (*AuthResult, error) {
	return c.authenticate(ctx, "register", "/auth/register", creds, "Registration failed")
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	return c.authenticate(ctx, "login", "/auth/login", creds, "Login failed")
}

// Logout drops the stored session.
func (c *Client) Logout() error {
	return c.creds.Clear()
}

func (c *Client) authenticate(ctx context.Context, op, path string, creds Credentials, fallback string) (*AuthResult, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return nil, apperr.Validation(op, "Email and password are required.")
	}
	var out AuthResult
	err := c.do(ctx, call{
		op:       op,
		method:   http.MethodPost,
		path:     path,
		body:     creds,
		out:      &out,
		fallback: fallback,
	})
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, apperr.Transport(op, http.StatusOK, "server returned no token", nil)
	}
	if err := c.creds.Set(credstore.KeyToken, out.Token); err != nil {
		return nil, err
	}
	if len(out.User) > 0 && string(out.User) != "null" {
		if err := c.creds.Set(credstore.KeyUser, string(out.User)); err != nil {
			return nil, err
		}
	}
	return &out, nil
}
