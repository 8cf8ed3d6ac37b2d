package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tarasboiko2005/AirportAPI/pkg/domain"
)

// Login exchanges credentials for a token pair and records the session.
// Login bypasses the pipeline: a 401 here means bad credentials, not an
// expired session.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	var pair domain.TokenPair
	req := &request{method: http.MethodPost, path: "/api/auth/login/", body: body}
	if err := c.send(ctx, req, "", &pair); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	if err := c.store.Save(pair.Access, pair.Refresh); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	if err := c.store.SetUsername(username); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &pair, nil
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return errors.New("client.Register: username and password are required")
	}
	body, err := json.Marshal(map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("client.Register: %w", err)
	}
	req := &request{method: http.MethodPost, path: "/api/auth/register/", body: body}
	if err := c.send(ctx, req, "", nil); err != nil {
		return fmt.Errorf("client.Register: %w", err)
	}
	return nil
}

// Logout forgets the session locally. The backend keeps no server-side
// session to revoke.
func (c *Client) Logout() error {
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// RefreshAccess mints a new access token from refresh. It is sent without an
// Authorization header and is never itself intercepted.
func (c *Client) RefreshAccess(ctx context.Context, refresh string) (string, error) {
	body, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return "", fmt.Errorf("client.RefreshAccess: %w", err)
	}
	var out struct {
		Access string `json:"access"`
	}
	req := &request{method: http.MethodPost, path: refreshPath, body: body}
	if err := c.send(ctx, req, "", &out); err != nil {
		return "", fmt.Errorf("client.RefreshAccess: %w", err)
	}
	if out.Access == "" {
		return "", errors.New("client.RefreshAccess: response carried no access token")
	}
	return out.Access, nil
}
