package publer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	defaultBaseURL      = "https://app.publer.com/api/v1"
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 2 * time.Second
	defaultPollAttempts = 20

	workspacesEndpoint = "/workspaces"

	// Publer's API key scheme, not standard Bearer.
	authScheme      = "Bearer-API"
	workspaceHeader = "Publer-Workspace-Id"
)

// ErrNoWorkspace is returned when the API key has no workspace attached.
var ErrNoWorkspace = errors.New("no publer workspace found for this API key")

// Client is a Publer API client. All calls except workspace listing
// are scoped to a workspace; the workspace id is resolved lazily from
// the first entry of the workspace list and cached for the lifetime
// of the client.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
	pollAttempts int

	mu          sync.RWMutex
	workspaceID string
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithPollInterval sets the media job polling interval
func WithPollInterval(interval time.Duration) ClientOption {
	return func(c *Client) {
		c.pollInterval = interval
	}
}

// WithPollAttempts sets the media job polling attempt budget
func WithPollAttempts(attempts int) ClientOption {
	return func(c *Client) {
		c.pollAttempts = attempts
	}
}

// New creates a new Publer API client
func New(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		pollInterval: defaultPollInterval,
		pollAttempts: defaultPollAttempts,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-success response from the Publer API
type APIError struct {
	Status   int
	Endpoint string
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("publer API error %d at %s: %s", e.Status, e.Endpoint, e.Body)
}

// Account represents a social account connected to the workspace
type Account struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Picture string `json:"picture"`
	URL     string `json:"url"`
}

// Network returns the canonical network key for the account
func (a Account) Network() Network {
	return MapAccountType(a.Type)
}

// Workspace represents a Publer workspace
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ResolveWorkspace returns the workspace id used to scope API calls,
// resolving and caching it on first use. Publer exposes no default
// workspace marker, so the first entry of the list is taken.
func (c *Client) ResolveWorkspace(ctx context.Context) (string, error) {
	c.mu.RLock()
	id := c.workspaceID
	c.mu.RUnlock()
	if id != "" {
		return id, nil
	}

	var workspaces []Workspace
	if err := c.do(ctx, http.MethodGet, workspacesEndpoint, nil, &workspaces); err != nil {
		return "", fmt.Errorf("fetching workspaces: %w", err)
	}
	if len(workspaces) == 0 {
		return "", ErrNoWorkspace
	}

	c.mu.Lock()
	c.workspaceID = workspaces[0].ID
	c.mu.Unlock()

	return workspaces[0].ID, nil
}

// Accounts retrieves the social accounts connected to the workspace
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, &accounts); err != nil {
		return nil, fmt.Errorf("fetching accounts: %w", err)
	}
	return accounts, nil
}

// do executes an authenticated request against the Publer API and
// decodes the JSON response. Every call carries the API key; every
// call except workspace listing also carries the workspace header,
// resolving the workspace first if needed.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", authScheme+" "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	if endpoint != workspacesEndpoint {
		workspaceID, err := c.ResolveWorkspace(ctx)
		if err != nil {
			return err
		}
		req.Header.Set(workspaceHeader, workspaceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Status:   resp.StatusCode,
			Endpoint: endpoint,
			Body:     string(respBody),
		}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
