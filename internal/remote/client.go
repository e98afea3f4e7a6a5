// ABOUTME: HTTP client for the remote configuration service REST API
// ABOUTME: Covers agent-config replace and per-record knowledge-base CRUD

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StatusError is returned when the remote service answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote returned status %d", e.Code)
	}
	return fmt.Sprintf("remote returned status %d: %s", e.Code, e.Body)
}

// Client talks to the remote configuration service. Every call is stateless
// HTTP/JSON with a bearer token; the backend treats each call independently,
// offering no batching, idempotency keys, or conditional concurrency control.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the service at baseURL. An empty timeout
// falls back to the transport default.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default().With("component", "remote"),
	}
}

// GetAgentConfig fetches the tenant's configuration object.
func (c *Client) GetAgentConfig(ctx context.Context, tenantID string) (*TenantConfiguration, error) {
	var cfg TenantConfiguration
	if err := c.do(ctx, http.MethodGet, c.configPath(tenantID), nil, &cfg); err != nil {
		return nil, fmt.Errorf("fetching agent config: %w", err)
	}
	return &cfg, nil
}

// PutAgentConfig replaces the tenant's configuration object wholesale.
// The tenant_id field is always set from the path argument.
func (c *Client) PutAgentConfig(ctx context.Context, tenantID string, cfg *TenantConfiguration) error {
	body := *cfg
	body.TenantID = tenantID
	if err := c.do(ctx, http.MethodPut, c.configPath(tenantID), &body, nil); err != nil {
		return fmt.Errorf("replacing agent config: %w", err)
	}
	return nil
}

// ListKnowledgeBases fetches the canonical knowledge-base list for the tenant.
func (c *Client) ListKnowledgeBases(ctx context.Context, tenantID string) ([]KnowledgeBaseRecord, error) {
	var records []KnowledgeBaseRecord
	if err := c.do(ctx, http.MethodGet, c.kbPath(tenantID), nil, &records); err != nil {
		return nil, fmt.Errorf("listing knowledge bases: %w", err)
	}
	return records, nil
}

// CreateKnowledgeBase creates a new record. The server assigns the ID; the
// response body is not consumed — callers resolve IDs through a subsequent
// ListKnowledgeBases.
func (c *Client) CreateKnowledgeBase(ctx context.Context, tenantID string, rec *KnowledgeBaseRecord) error {
	body := *rec
	body.ID = ""
	if err := c.do(ctx, http.MethodPost, c.kbPath(tenantID), &body, nil); err != nil {
		return fmt.Errorf("creating knowledge base %q: %w", rec.Name, err)
	}
	return nil
}

// UpdateKnowledgeBase replaces the fields of an existing record.
func (c *Client) UpdateKnowledgeBase(ctx context.Context, tenantID, kbID string, rec *KnowledgeBaseRecord) error {
	if err := c.do(ctx, http.MethodPut, c.kbPath(tenantID)+"/"+url.PathEscape(kbID), rec, nil); err != nil {
		return fmt.Errorf("updating knowledge base %s: %w", kbID, err)
	}
	return nil
}

// DeleteKnowledgeBase deletes a record by ID.
func (c *Client) DeleteKnowledgeBase(ctx context.Context, tenantID, kbID string) error {
	if err := c.do(ctx, http.MethodDelete, c.kbPath(tenantID)+"/"+url.PathEscape(kbID), nil, nil); err != nil {
		return fmt.Errorf("deleting knowledge base %s: %w", kbID, err)
	}
	return nil
}

func (c *Client) configPath(tenantID string) string {
	return "/api/admin/agent-config/" + url.PathEscape(tenantID)
}

func (c *Client) kbPath(tenantID string) string {
	return "/api/knowledge-bases/" + url.PathEscape(tenantID)
}

// do issues one request and decodes the JSON response into out when non-nil.
// Non-2xx statuses become a *StatusError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Keep a short prefix of the body for diagnostics
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Debug("remote call failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
