package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/setsheet/internal/storage"
)

// HTTPClient implements DataSource by calling the SetSheet REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func dateParams(startDate, endDate string) url.Values {
	v := url.Values{}
	v.Set("start", startDate)
	v.Set("end", endDate)
	return v
}

func (c *HTTPClient) QueryFlatSets(ctx context.Context, startDate, endDate, exerciseFilter string) ([]storage.FlatSetRow, error) {
	params := dateParams(startDate, endDate)
	if exerciseFilter != "" {
		params.Set("exercise", exerciseFilter)
	}

	body, err := c.get(ctx, "/api/v1/sets", params)
	if err != nil {
		return nil, err
	}

	var rows []storage.FlatSetRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode flat sets: %w", err)
	}
	return rows, nil
}

func (c *HTTPClient) GetExerciseSummary(ctx context.Context, startDate, endDate string) ([]storage.ExerciseSummary, error) {
	body, err := c.get(ctx, "/api/v1/exercises/summary", dateParams(startDate, endDate))
	if err != nil {
		return nil, err
	}

	var summary []storage.ExerciseSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercise summary: %w", err)
	}
	return summary, nil
}

func (c *HTTPClient) ListExportLogs(ctx context.Context, limit int) ([]storage.ExportLog, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/api/v1/exports", params)
	if err != nil {
		return nil, err
	}

	var logs []storage.ExportLog
	if err := json.Unmarshal(body, &logs); err != nil {
		return nil, fmt.Errorf("httpclient: decode export logs: %w", err)
	}
	return logs, nil
}
