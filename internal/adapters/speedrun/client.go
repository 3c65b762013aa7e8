// Package speedrun implements the submission source on the speedrun.com v1 API.
package speedrun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/queuebot/internal/ports/secondary"
)

// maxPages bounds pagination in case the API keeps returning a next link.
const maxPages = 500

// Client reads one game's verification queue.
type Client struct {
	baseURL    string
	gameID     string
	apiKey     string
	pageSize   int
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
	apiKey     string
	pageSize   int
}

// New creates a Client for gameID.
func New(baseURL, gameID string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("speedrun: baseURL is required")
	}
	if gameID == "" {
		return nil, fmt.Errorf("speedrun: gameID is required")
	}

	cfg := &clientConfig{pageSize: 200}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{}
	if cfg.httpClient != nil {
		shared := *cfg.httpClient
		httpClient = &shared
	}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		gameID:     gameID,
		apiKey:     cfg.apiKey,
		pageSize:   cfg.pageSize,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = hc
		return nil
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithTimeout sets a timeout on the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		cfg.timeout = d
		return nil
	}
}

// WithAPIKey sends an X-API-Key header on every request.
func WithAPIKey(key string) Option {
	return func(cfg *clientConfig) error {
		cfg.apiKey = key
		return nil
	}
}

// WithPageSize sets the number of runs requested per page (1-200).
func WithPageSize(n int) Option {
	return func(cfg *clientConfig) error {
		if n < 1 || n > 200 {
			return fmt.Errorf("speedrun: page size must be between 1 and 200, got %d", n)
		}
		cfg.pageSize = n
		return nil
	}
}

// ListNew returns every run awaiting verification, oldest submitted first.
// Runs that fail to decode are logged and skipped.
func (c *Client) ListNew(ctx context.Context) ([]*secondary.Submission, error) {
	params := url.Values{}
	params.Set("status", "new")
	params.Set("game", c.gameID)
	params.Set("orderby", "submitted")
	params.Set("direction", "asc")
	params.Set("embed", "players")
	params.Set("max", strconv.Itoa(c.pageSize))

	next := c.baseURL + "/runs?" + params.Encode()
	var subs []*secondary.Submission

	for page := 0; next != ""; page++ {
		if page >= maxPages {
			c.logger.WarnContext(ctx, "pagination limit reached", "pages", page)
			break
		}

		var paged rawPage
		if err := c.getJSON(ctx, next, "list runs", &paged); err != nil {
			return nil, err
		}

		for i, raw := range paged.Data {
			sub, err := decodeSubmission(raw)
			if err != nil {
				c.logger.WarnContext(ctx, "skipping undecodable run", "page", page, "index", i, "error", err)
				continue
			}
			subs = append(subs, sub)
		}

		next = paged.Pagination.next()
	}

	return subs, nil
}

// GetStatus returns a run's current verification status.
func (c *Client) GetStatus(ctx context.Context, runID string) (*secondary.SubmissionStatus, error) {
	u := fmt.Sprintf("%s/runs/%s", c.baseURL, url.PathEscape(runID))
	var rs envelope[runStatusRS]
	if err := c.getJSON(ctx, u, "get run", &rs); err != nil {
		return nil, err
	}
	return &secondary.SubmissionStatus{ID: rs.Data.ID, Status: rs.Data.Status.Status}, nil
}

// ListCategories returns the game's non-miscellaneous categories with their variables.
func (c *Client) ListCategories(ctx context.Context) ([]*secondary.Category, error) {
	params := url.Values{}
	params.Set("miscellaneous", "no")
	params.Set("embed", "variables")
	u := fmt.Sprintf("%s/games/%s/categories?%s", c.baseURL, url.PathEscape(c.gameID), params.Encode())

	var rs envelope[[]categoryRS]
	if err := c.getJSON(ctx, u, "list categories", &rs); err != nil {
		return nil, err
	}

	categories := make([]*secondary.Category, 0, len(rs.Data))
	for _, cat := range rs.Data {
		out := &secondary.Category{ID: cat.ID, Name: cat.Name}
		for _, v := range cat.Variables.Data {
			cv := &secondary.CategoryVariable{
				ID:            v.ID,
				IsSubcategory: v.IsSubcategory,
				Values:        make(map[string]string, len(v.Values.Values)),
			}
			for id, val := range v.Values.Values {
				cv.Values[id] = val.Label
			}
			out.Variables = append(out.Variables, cv)
		}
		categories = append(categories, out)
	}
	return categories, nil
}

func decodeSubmission(raw json.RawMessage) (*secondary.Submission, error) {
	var r runRS
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	if r.ID == "" {
		return nil, fmt.Errorf("run has no id")
	}

	sub := &secondary.Submission{
		ID:          r.ID,
		Weblink:     r.Weblink,
		CategoryID:  r.Category,
		Values:      r.Values,
		PrimaryTime: r.Times.PrimaryT,
	}
	if r.Submitted != nil {
		sub.Submitted = *r.Submitted
	}
	if len(r.Players.Data) > 0 {
		sub.PlayerName = r.Players.Data[0].displayName()
	}
	return sub, nil
}

// getJSON executes a GET request and decodes the JSON response into dst.
// If the response has an error status, it returns an *APIError.
func (c *Client) getJSON(ctx context.Context, u, operation string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	c.logger.DebugContext(ctx, "API request", "operation", operation, "url", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "API response", "operation", operation, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		var errRS errorRS
		if json.Unmarshal(body, &errRS) == nil && errRS.Message != "" {
			return newAPIError(operation, resp.StatusCode, errRS.Message)
		}
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return newAPIError(operation, resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

// Ensure Client implements the interface
var _ secondary.SubmissionSource = (*Client)(nil)
