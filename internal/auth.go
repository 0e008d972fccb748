package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// UserKey is the slot holding the logged-in user
const UserKey = "chatpane.user"

// User is the account returned by the auth backend
type User struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

// SignupRequest carries the signup form fields
type SignupRequest struct {
	Name           string
	Email          string
	Password       string
	ProfilePicPath string // optional
}

type authResponse struct {
	Status  string `json:"status"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// AuthClient talks to the authentication backend
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewAuthClient creates an auth client; every call is bounded by timeout
func NewAuthClient(baseURL string, timeout time.Duration) *AuthClient {
	return &AuthClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

// Login verifies credentials and returns the account
func (c *AuthClient) Login(ctx context.Context, email, password string) (*User, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.do(ctx, "/login", bytes.NewReader(body), "application/json", "Login failed")
	if err != nil {
		return nil, err
	}
	if resp.Status != statusSuccess || resp.User == nil {
		return nil, errors.New(firstNonEmpty(resp.Error, "Invalid credentials"))
	}
	return resp.User, nil
}

// Signup creates an account, uploading the optional profile picture
func (c *AuthClient) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range []struct{ name, value string }{
		{"name", req.Name},
		{"email", req.Email},
		{"password", req.Password},
	} {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	if req.ProfilePicPath != "" {
		f, err := os.Open(req.ProfilePicPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open profile picture: %w", err)
		}
		defer f.Close()

		part, err := mw.CreateFormFile("profile_pic", filepath.Base(req.ProfilePicPath))
		if err != nil {
			return nil, fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			return nil, fmt.Errorf("failed to read profile picture: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	resp, err := c.do(ctx, "/signup", &buf, mw.FormDataContentType(), "Signup failed")
	if err != nil {
		return nil, err
	}
	if resp.Status != statusSuccess || resp.User == nil {
		return nil, errors.New(firstNonEmpty(resp.Error, "Failed to create account"))
	}
	return resp.User, nil
}

// ForgotPassword sets a new password for email and returns the backend message
func (c *AuthClient) ForgotPassword(ctx context.Context, email, newPassword string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "newPassword": newPassword})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.do(ctx, "/forgot-password", bytes.NewReader(body), "application/json", "Password reset failed")
	if err != nil {
		return "", err
	}
	if resp.Status != statusSuccess {
		return "", errors.New(firstNonEmpty(resp.Error, "Password reset failed"))
	}
	return firstNonEmpty(resp.Message, "Password updated successfully. Please log in."), nil
}

// do posts to path. On a non-2xx status the body's detail (or fallback) is
// reported.
func (c *AuthClient) do(ctx context.Context, path string, body io.Reader, contentType, fallback string) (*authResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	var out authResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := fallback
		if decodeErr == nil {
			reason = firstNonEmpty(out.Detail, out.Error, fallback)
		}
		return nil, &RequestError{Endpoint: endpoint, Status: resp.StatusCode, Err: errors.New(reason)}
	}
	if decodeErr != nil {
		return nil, &ParseError{Source: "response", Key: endpoint, Err: decodeErr}
	}
	return &out, nil
}

// Ping checks that the auth backend answers
func (c *AuthClient) Ping(ctx context.Context) error {
	return ping(ctx, c.httpClient, c.baseURL+"/login")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// AuthStore persists the logged-in user
type AuthStore struct {
	slot Slot
}

// NewAuthStore creates an auth store on slot
func NewAuthStore(slot Slot) *AuthStore {
	return &AuthStore{slot: slot}
}

// Save records user as logged in
func (a *AuthStore) Save(user *User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	return a.slot.Write(UserKey, data)
}

// Current returns the logged-in user; a missing or malformed record means
// nobody is logged in.
func (a *AuthStore) Current() (*User, bool) {
	data, ok, err := a.slot.Read(UserKey)
	if err != nil {
		LogWarn("Failed to read user: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil || user.Email == "" {
		LogWarn("Ignoring malformed user record")
		return nil, false
	}
	return &user, true
}

// Logout forgets the logged-in user
func (a *AuthStore) Logout() error {
	return a.slot.Delete(UserKey)
}
