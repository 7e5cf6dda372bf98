package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/setflow/internal/models"
	"github.com/claude/setflow/internal/session"
	"github.com/claude/setflow/internal/storage"
)

// HTTPClient implements DataSource by calling the setflow REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// plans live on a server, typically reached over Tailscale.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func planPath(id string) string {
	return "/api/v1/plans/" + url.PathEscape(id)
}

func (c *HTTPClient) ListPlans(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	if err := c.do(ctx, http.MethodGet, "/api/v1/plans", &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (c *HTTPClient) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	var p models.Plan
	if err := c.do(ctx, http.MethodGet, planPath(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) SessionState(ctx context.Context, planID string) (session.Snapshot, error) {
	var snap session.Snapshot
	err := c.do(ctx, http.MethodGet, planPath(planID)+"/session", &snap)
	return snap, err
}

func (c *HTTPClient) ControlSession(ctx context.Context, planID string, action session.Action) (session.Snapshot, error) {
	var snap session.Snapshot
	err := c.do(ctx, http.MethodPost, planPath(planID)+"/session/"+string(action), &snap)
	return snap, err
}
