package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lens/internal/blob"
	"lens/internal/upload"
)

const defaultClientTimeout = 30 * time.Second

// APIError is the decoded error envelope of a failed daemon response.
type APIError struct {
	Status      int
	Kind        string
	Description string
	Payload     map[string]any
}

func (e *APIError) Error() string {
	if e.Kind != "" && e.Description != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Description)
	}
	if e.Description != "" {
		return e.Description
	}
	return fmt.Sprintf("api error: %d", e.Status)
}

// Client talks to a running lens daemon.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client for the daemon at baseURL. token may be empty
// when the daemon runs without auth.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultClientTimeout},
	}
}

// Register creates a blob record for callbackURL and returns the upload
// target.
func (c *Client) Register(ctx context.Context, callbackURL string) (*upload.Registration, error) {
	var resp upload.Registration
	if err := c.do(ctx, http.MethodPost, "/v1/blobs", RegisterRequest{CallbackURL: callbackURL}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Result fetches the recognition outcome for a blob. Non-success workflow
// states surface as *APIError with the corresponding fault kind.
func (c *Client) Result(ctx context.Context, id string) (*blob.Result, error) {
	var resp blob.Result
	if err := c.do(ctx, http.MethodGet, "/v1/blobs/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Upload streams blob content to the daemon's upload target.
func (c *Client) Upload(ctx context.Context, id string, content io.Reader) error {
	endpoint := c.baseURL + "/v1/blobs/" + url.PathEscape(id) + "/content"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, content)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	return nil
}

// List fetches summaries of every blob record.
func (c *Client) List(ctx context.Context) ([]BlobSummary, error) {
	var resp ListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/blobs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Blobs, nil
}

// Health fetches the daemon health report.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	err := c.do(ctx, http.MethodGet, "/v1/health", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var envelope ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
		apiErr.Kind = envelope.Error
		apiErr.Description = envelope.Description
		apiErr.Payload = envelope.Payload
	}
	return apiErr
}
