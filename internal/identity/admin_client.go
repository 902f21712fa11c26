package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/estatelink/backend/internal/config"
)

// AdminClient talks to the identity provider's admin REST API with a service
// key. It implements Provider.
type AdminClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewAdminClient creates an admin client from configuration.
func NewAdminClient(cfg config.IdentityConfig) *AdminClient {
	return &AdminClient{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type createUserRequest struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	AppMetadata  map[string]interface{} `json:"app_metadata"`
}

// CreateUser provisions a new user with a confirmed email address.
func (c *AdminClient) CreateUser(ctx context.Context, email, password, fullName, role string) (*User, error) {
	body := createUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
		UserMetadata: map[string]interface{}{"full_name": fullName, "role": role},
		AppMetadata:  map[string]interface{}{"role": role},
	}

	var user User
	if err := c.do(ctx, http.MethodPost, "/admin/users", body, &user); err != nil {
		return nil, fmt.Errorf("identity create user: %w", err)
	}
	return &user, nil
}

// UpdateUserMetadata mirrors application-side fields (role, is_active) into
// the provider's app metadata.
func (c *AdminClient) UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]interface{}) error {
	body := map[string]interface{}{"app_metadata": metadata, "user_metadata": metadata}
	if err := c.do(ctx, http.MethodPut, "/admin/users/"+userID, body, nil); err != nil {
		return fmt.Errorf("identity update metadata: %w", err)
	}
	return nil
}

// ResetPassword sets a new password for the user.
func (c *AdminClient) ResetPassword(ctx context.Context, userID, newPassword string) error {
	body := map[string]interface{}{"password": newPassword}
	if err := c.do(ctx, http.MethodPut, "/admin/users/"+userID, body, nil); err != nil {
		return fmt.Errorf("identity reset password: %w", err)
	}
	return nil
}

func (c *AdminClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return err
		}
	}
	return nil
}
