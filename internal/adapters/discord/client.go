// Package discord implements the notification gateway on the Discord REST API.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/queuebot/internal/core/announce"
	"github.com/example/queuebot/internal/ports/secondary"
)

const userAgent = "DiscordBot (https://github.com/example/queuebot, dev)"

// Client posts threads and messages into one configured channel.
type Client struct {
	baseURL    string
	token      string
	channelID  string
	httpClient *http.Client
	logger     *slog.Logger
	channels   *channelCache
	sleep      func(context.Context, time.Duration) error
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	httpClient     *http.Client
	logger         *slog.Logger
	timeout        time.Duration
	channelInfoTTL time.Duration
}

// New creates a Client for the channel channelID.
// The bot token is sent as "Authorization: Bot <token>" on every request.
func New(baseURL, token, channelID string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("discord: baseURL is required")
	}
	if token == "" {
		return nil, fmt.Errorf("discord: token is required")
	}
	if channelID == "" {
		return nil, fmt.Errorf("discord: channelID is required")
	}

	cfg := &clientConfig{channelInfoTTL: time.Hour}
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

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		channelID:  channelID,
		httpClient: httpClient,
		logger:     logger,
		sleep:      sleepContext,
	}
	c.channels = newChannelCache(cfg.channelInfoTTL, c.getChannel)
	return c, nil
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

// WithChannelInfoTTL sets how long channel metadata is cached.
func WithChannelInfoTTL(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return fmt.Errorf("discord: channel info ttl must be positive")
		}
		cfg.channelInfoTTL = d
		return nil
	}
}

// CreateThread opens a public thread in the configured channel.
// The channel's default auto-archive duration is applied when it can be read.
func (c *Client) CreateThread(ctx context.Context, title string) (string, *secondary.RateLimitInfo, error) {
	if err := validateLength("thread name", title, announce.MaxThreadNameRunes); err != nil {
		return "", nil, err
	}

	rq := createThreadRQ{Name: title, Type: channelTypePublicThread}
	if parent, err := c.channels.get(ctx, c.channelID); err != nil {
		c.logger.WarnContext(ctx, "channel info unavailable, using platform archive default",
			"channel_id", c.channelID, "error", err)
	} else {
		rq.AutoArchiveDuration = parent.DefaultAutoArchiveDuration
	}

	var thread channel
	rl, err := c.do(ctx, http.MethodPost, "/channels/"+c.channelID+"/threads", "create thread", rq, &thread)
	if err != nil {
		return "", rl, err
	}
	if thread.ID == "" {
		return "", rl, fmt.Errorf("create thread: response carried no thread id")
	}
	return thread.ID, rl, nil
}

// CreateMessage posts content into a channel or thread.
func (c *Client) CreateMessage(ctx context.Context, channelID, content string) (*secondary.RateLimitInfo, error) {
	if err := validateLength("message content", content, announce.MaxMessageRunes); err != nil {
		return nil, err
	}
	var msg message
	return c.do(ctx, http.MethodPost, "/channels/"+channelID+"/messages", "create message", createMessageRQ{Content: content}, &msg)
}

// RenameAndArchive prefixes the thread name with symbol and archives it.
// An already archived thread is left untouched and reported as didWork=false.
func (c *Client) RenameAndArchive(ctx context.Context, threadID, symbol string) (bool, *secondary.RateLimitInfo, error) {
	current, rl, err := c.fetchChannel(ctx, threadID)
	if err != nil {
		return false, rl, err
	}
	if current.archived() {
		c.logger.DebugContext(ctx, "thread already archived", "thread_id", threadID)
		return false, rl, nil
	}
	if err := c.waitExhausted(ctx, "get channel", rl); err != nil {
		return false, rl, err
	}

	rq := modifyThreadRQ{
		Name:     announce.FinalTitle(symbol, current.Name),
		Archived: true,
	}
	var updated channel
	rl, err = c.do(ctx, http.MethodPatch, "/channels/"+threadID, "archive thread", rq, &updated)
	if err != nil {
		return false, rl, err
	}
	return true, rl, nil
}

func (c *Client) getChannel(ctx context.Context, id string) (*channel, error) {
	ch, rl, err := c.fetchChannel(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.waitExhausted(ctx, "get channel", rl); err != nil {
		return nil, err
	}
	return ch, nil
}

// waitExhausted blocks for reset-after when a lookup made ahead of the main
// request left its bucket with no remaining calls.
func (c *Client) waitExhausted(ctx context.Context, operation string, rl *secondary.RateLimitInfo) error {
	if rl == nil || rl.Remaining > 0 || rl.ResetAfter <= 0 {
		return nil
	}
	c.logger.InfoContext(ctx, "rate limit exhausted, waiting",
		"operation", operation, "bucket", rl.Bucket, "reset_after", rl.ResetAfter)
	if err := c.sleep(ctx, rl.ResetAfter); err != nil {
		return fmt.Errorf("%s: wait for rate limit reset: %w", operation, err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) fetchChannel(ctx context.Context, id string) (*channel, *secondary.RateLimitInfo, error) {
	var ch channel
	rl, err := c.do(ctx, http.MethodGet, "/channels/"+id, "get channel", nil, &ch)
	if err != nil {
		return nil, rl, err
	}
	return &ch, rl, nil
}

// do executes an HTTP request and decodes the JSON response into dst.
// The rate-limit descriptor is returned whenever the response carried one.
// 429 responses become *secondary.RateLimitedError, 400 responses
// *secondary.ValidationError, and other failures *APIError.
func (c *Client) do(ctx context.Context, method, path, operation string, body, dst any) (*secondary.RateLimitInfo, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", operation, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.DebugContext(ctx, "API request", "operation", operation, "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	rl := RateLimitFromHeaders(resp.Header)
	c.logger.DebugContext(ctx, "API response", "operation", operation, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return rl, c.responseError(operation, resp)
	}

	if dst != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return rl, fmt.Errorf("%s: decode response: %w", operation, err)
		}
	}
	return rl, nil
}

func (c *Client) responseError(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	var errRS errorRS
	_ = json.Unmarshal(raw, &errRS)

	msg := errRS.Message
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		retryAfter := secondsToDuration(errRS.RetryAfter)
		if errRS.RetryAfter <= 0 {
			retryAfter, _ = parseSeconds(resp.Header.Get(headerRetryAfter))
		}
		global := errRS.Global || resp.Header.Get("X-RateLimit-Global") == "true"
		return &secondary.RateLimitedError{RetryAfter: retryAfter, Global: global, Message: msg}
	case http.StatusBadRequest:
		return &secondary.ValidationError{Reason: fmt.Sprintf("%s: %s", operation, msg)}
	default:
		return newAPIError(operation, resp.StatusCode, errRS.Code, msg)
	}
}

func validateLength(field, value string, max int) error {
	n := utf8.RuneCountInString(value)
	if strings.TrimSpace(value) == "" {
		return &secondary.ValidationError{Reason: field + " must not be empty"}
	}
	if n > max {
		return &secondary.ValidationError{Reason: fmt.Sprintf("%s is %d characters, limit is %d", field, n, max)}
	}
	return nil
}

// Ensure Client implements the interface
var _ secondary.NotificationGateway = (*Client)(nil)
