// Package api provides an HTTP client for the accountd server. It wraps the
// JSON endpoints for registration, sessions and user management, carrying the
// session token on authenticated calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// User is the public projection of a user record as returned by the server.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type messageResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Token   string `json:"token"`
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// IsAuthenticated reports whether a session token is currently held.
func (c *Client) IsAuthenticated() bool {
	return c.token != ""
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {

	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var m messageResponse
		if err := json.NewDecoder(resp.Body).Decode(&m); err == nil && m.Message != "" {
			return fmt.Errorf("%s", m.Message)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Register creates a new account and returns the assigned user id.
func (c *Client) Register(ctx context.Context, username, email string, password []byte) (string, error) {
	req := map[string]string{"username": username, "email": email, "password": string(password)}
	var m messageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &m); err != nil {
		return "", err
	}
	return m.UserID, nil
}

// Login authenticates and stores the issued session token on the client for
// subsequent calls.
func (c *Client) Login(ctx context.Context, email string, password []byte) error {
	req := map[string]string{"email": email, "password": string(password)}
	var m messageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &m); err != nil {
		return err
	}
	c.token = m.Token
	return nil
}

// Logout invalidates the current session on the server and drops the token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var list []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/users/"+id, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, username, email *string) error {
	req := map[string]*string{"username": username, "email": email}
	return c.do(ctx, http.MethodPatch, "/users/"+id, req, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+id, nil, nil)
}
