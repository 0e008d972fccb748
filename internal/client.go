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

const statusSuccess = "success"

// GenerateRequest is the body sent to the generation endpoint
type GenerateRequest struct {
	Prompt    string `json:"prompt"`
	Model     string `json:"model"`
	UserEmail string `json:"userEmail"`
}

// FileRequest uploads a file alongside the usual prompt metadata
type FileRequest struct {
	GenerateRequest
	FileName string
	File     io.Reader
}

// GenerateResponse is the endpoint reply
type GenerateResponse struct {
	Status   string `json:"status"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Generator produces a raw text reply for a prompt
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	GenerateFile(ctx context.Context, req FileRequest) (string, error)
}

// Client talks to the remote text-generation endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a generation client. A zero timeout means no deadline
// beyond the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

// BaseURL returns the endpoint root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Generate sends a JSON prompt request and returns the response text
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.post(ctx, bytes.NewReader(body), "application/json")
}

// GenerateFile sends the file as multipart form data with the prompt fields
func (c *Client) GenerateFile(ctx context.Context, req FileRequest) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", req.FileName)
	if err != nil {
		return "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	fields := []struct{ name, value string }{
		{"prompt", req.Prompt},
		{"model", req.Model},
		{"userEmail", req.UserEmail},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return "", fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return c.post(ctx, &buf, mw.FormDataContentType())
}

// OpenUpload prepares a FileRequest for a file on disk. The caller closes the
// returned file.
func OpenUpload(path string, base GenerateRequest) (FileRequest, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileRequest{}, nil, fmt.Errorf("failed to open upload: %w", err)
	}
	return FileRequest{
		GenerateRequest: base,
		FileName:        filepath.Base(path),
		File:            f,
	}, f, nil
}

func (c *Client) post(ctx context.Context, body io.Reader, contentType string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := c.baseURL + "/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	LogDebug("POST %s", endpoint)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &RequestError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &RequestError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("HTTP error! status: %d", resp.StatusCode),
		}
	}

	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &ParseError{Source: "response", Key: endpoint, Err: err}
	}

	if out.Status != statusSuccess {
		reason := out.Error
		if reason == "" {
			reason = "No response generated"
		}
		return "", errors.New(reason)
	}

	return out.Response, nil
}

// Ping checks that the endpoint host answers at all. Any HTTP status counts as
// reachable; only transport failures are reported.
func (c *Client) Ping(ctx context.Context) error {
	return ping(ctx, c.httpClient, c.baseURL+"/generate")
}

func ping(ctx context.Context, httpClient *http.Client, endpoint string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return &RequestError{Endpoint: endpoint, Err: err}
	}
	resp.Body.Close()
	return nil
}
