package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"codeberg.org/snonux/wordhoard/internal"
	"codeberg.org/snonux/wordhoard/internal/metrics"
	"codeberg.org/snonux/wordhoard/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultDictionaryURL = "https://www.dictionaryapi.com/api/v3/references/collegiate/json/"
	DefaultThesaurusURL  = "https://www.dictionaryapi.com/api/v3/references/thesaurus/json/"
	DefaultTimeout       = 10 * time.Second
	DefaultMaxRetries    = 3
	DefaultBackoffFactor = 1.5
	DefaultCallLimit     = 100000
)

// Config holds the client settings
type Config struct {
	DictionaryKey string
	ThesaurusKey  string
	DictionaryURL string
	ThesaurusURL  string
	Timeout       time.Duration
	MaxRetries    int
	BackoffFactor float64
	CallLimit     int64
}

// DefaultConfig returns the production endpoints and retry policy without keys
func DefaultConfig() Config {
	return Config{
		DictionaryURL: DefaultDictionaryURL,
		ThesaurusURL:  DefaultThesaurusURL,
		Timeout:       DefaultTimeout,
		MaxRetries:    DefaultMaxRetries,
		BackoffFactor: DefaultBackoffFactor,
		CallLimit:     DefaultCallLimit,
	}
}

// Stats is a snapshot of the session call counter
type Stats struct {
	CallCount      int64
	Elapsed        time.Duration
	RemainingCalls int64
	CallsPerMinute float64
}

// Client performs dictionary and thesaurus lookups
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	recorder   *metrics.Recorder
	sleep      func(time.Duration)
	now        func() time.Time

	mu        sync.Mutex
	callCount int64
	startTime time.Time
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithRecorder attaches a metrics recorder
func WithRecorder(r *metrics.Recorder) ClientOption {
	return func(c *Client) { c.recorder = r }
}

// WithSleep replaces time.Sleep for backoff waits
func WithSleep(sleep func(time.Duration)) ClientOption {
	return func(c *Client) { c.sleep = sleep }
}

// WithClock replaces time.Now for session statistics
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// NewClient validates the configuration and creates a Client. Both API
// keys are required.
func NewClient(config Config, opts ...ClientOption) (*Client, error) {
	var missing []string
	if strings.TrimSpace(config.DictionaryKey) == "" {
		missing = append(missing, "dictionary API key")
	}
	if strings.TrimSpace(config.ThesaurusKey) == "" {
		missing = append(missing, "thesaurus API key")
	}
	if len(missing) > 0 {
		return nil, &ConfigurationError{Missing: missing}
	}

	defaults := DefaultConfig()
	if config.DictionaryURL == "" {
		config.DictionaryURL = defaults.DictionaryURL
	}
	if config.ThesaurusURL == "" {
		config.ThesaurusURL = defaults.ThesaurusURL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.BackoffFactor <= 0 {
		config.BackoffFactor = defaults.BackoffFactor
	}
	if config.CallLimit <= 0 {
		config.CallLimit = defaults.CallLimit
	}

	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     slog.Default(),
		sleep:      time.Sleep,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "lookup")
	c.startTime = c.now()

	return c, nil
}

// Lookup fetches word from the service selected by kind. It always
// returns a Result; transport and protocol failures are folded into the
// error variants. Cancelling ctx does not interrupt a lookup that has
// already started.
func (c *Client) Lookup(ctx context.Context, word string, kind Kind) Result {
	ctx = context.WithoutCancel(ctx)
	ctx, span := tracing.StartSpan(ctx, "lookup."+kind.String())
	defer span.End()
	tracing.AddLookupAttributes(span, word, kind.String())

	start := time.Now()
	c.logger.Info("Looking up word", "word", word, "kind", kind.String())

	result := c.fetch(ctx, word, kind)

	span.SetAttributes(attribute.String("wordhoard.lookup.outcome", result.Status.String()))
	if result.IsError() {
		tracing.RecordError(span, errors.New(result.Message))
	}
	c.recorder.RecordLookup(kind.String(), result.Status.String(), time.Since(start))

	return result
}

// Stats returns a snapshot of the session call counter
func (c *Client) Stats() Stats {
	c.mu.Lock()
	count := c.callCount
	elapsed := c.now().Sub(c.startTime)
	c.mu.Unlock()

	var perMinute float64
	if minutes := elapsed.Minutes(); minutes > 0 {
		perMinute = float64(count) / minutes
	}

	return Stats{
		CallCount:      count,
		Elapsed:        elapsed,
		RemainingCalls: c.config.CallLimit - count,
		CallsPerMinute: perMinute,
	}
}

func (c *Client) fetch(ctx context.Context, word string, kind Kind) Result {
	reqURL := c.endpoint(word, kind)

	var lastNetErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(c.config.BackoffFactor, attempt)
			c.logger.Info("Retrying request",
				"word", word,
				"kind", kind.String(),
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"delay", delay)
			c.recorder.RecordRetry(kind.String())
			c.sleep(delay)
		}

		status, body, err := c.do(ctx, reqURL)
		c.countCall()
		c.recorder.RecordAPICall(kind.String())

		if err != nil {
			lastNetErr = err
			c.logger.Error("Request error", "word", word, "kind", kind.String(), "error", err)
			continue
		}
		lastNetErr = nil

		switch status {
		case http.StatusOK:
			return parseOK(body)
		case http.StatusNotFound:
			c.logger.Warn("Word not found", "word", word, "kind", kind.String())
			suggestions, _ := stringList(body)
			return NotFound(suggestions)
		case http.StatusTooManyRequests:
			c.logger.Error("Rate limit exceeded", "word", word, "kind", kind.String())
			return RateLimited()
		default:
			c.logger.Warn("Unexpected status", "word", word, "kind", kind.String(), "status", status)
		}
	}

	if lastNetErr != nil {
		return FatalError(lastNetErr.Error())
	}
	return TransientError(MsgMaxRetries, CodeExhausted)
}

// parseOK turns a 200 body into Success, or NotFound when the API
// answered with a bare list of spelling suggestions.
func parseOK(body []byte) Result {
	trimmed := strings.TrimSpace(string(body))
	if !json.Valid([]byte(trimmed)) {
		return TransientError(MsgJSONParse, CodeParseError)
	}
	if suggestions, ok := stringList([]byte(trimmed)); ok && len(suggestions) > 0 {
		return NotFound(suggestions)
	}
	return Success([]byte(trimmed))
}

func (c *Client) do(ctx context.Context, reqURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "wordhoard/"+internal.Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, redact(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) endpoint(word string, kind Kind) string {
	base, key := c.config.DictionaryURL, c.config.DictionaryKey
	if kind == Thesaurus {
		base, key = c.config.ThesaurusURL, c.config.ThesaurusKey
	}
	return base + url.PathEscape(strings.ToLower(word)) + "?key=" + url.QueryEscape(key)
}

func (c *Client) countCall() {
	c.mu.Lock()
	c.callCount++
	c.mu.Unlock()
}

// backoffDelay returns factor^attempt seconds
func backoffDelay(factor float64, attempt int) time.Duration {
	return time.Duration(math.Pow(factor, float64(attempt)) * float64(time.Second))
}

// redact strips the request URL, which carries the API key, from
// transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request failed: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
