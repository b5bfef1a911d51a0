package sportmonks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/logging"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL = "https://api.sportmonks.com/v3/football"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 6 << 20
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		logger:     logger.Named("sportmonks"),
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}
}

// Envelope is the top level of every provider answer. Pagination shows up
// under meta on v3 and at the top level on older plans.
type Envelope struct {
	Data       json.RawMessage `json:"data"`
	Meta       envelopeMeta    `json:"meta"`
	Pagination *Pagination     `json:"pagination"`
}

type envelopeMeta struct {
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Count       int   `json:"count"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	LastPage    *int  `json:"last_page"`
	HasMore     *bool `json:"has_more"`
}

// PageInfo returns the pagination block wherever the provider put it.
func (e Envelope) PageInfo() *Pagination {
	if e.Meta.Pagination != nil {
		return e.Meta.Pagination
	}
	return e.Pagination
}

// HasData is false for a missing, null or empty data field.
func (e Envelope) HasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	switch {
	case len(trimmed) == 0,
		bytes.Equal(trimmed, []byte("null")),
		bytes.Equal(trimmed, []byte("[]")),
		bytes.Equal(trimmed, []byte("{}")):
		return false
	}
	return true
}

func (e Envelope) DecodeData(target any) error {
	if err := sonic.Unmarshal(e.Data, target); err != nil {
		return crerr.Wrapf(ErrMalformedResponse, "decode data: %v", err)
	}
	return nil
}

// Request issues one authenticated GET. There is no retry; a failed call is
// logged here and returned to the caller as is.
func (c *Client) Request(ctx context.Context, endpoint string, params map[string]string) (Envelope, error) {
	if c.token == "" {
		return Envelope{}, ErrMissingCredentials
	}

	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}
	values.Set("api_token", c.token)
	fullURL := c.baseURL + "/" + strings.TrimLeft(strings.TrimSpace(endpoint), "/") + "?" + values.Encode()

	var raw []byte
	err := c.breaker.Execute(func() error {
		var reqErr error
		raw, reqErr = c.executeRequest(ctx, fullURL)
		return reqErr
	}, IsTransport)
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "sportmonks circuit breaker rejected request", "state", c.breaker.State(), "endpoint", endpoint)
		return Envelope{}, crerr.Wrapf(ErrConnection, "%s: provider is temporarily unavailable", resilience.ErrCircuitOpen.Error())
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Envelope{}, fmt.Errorf("request %s: %w", endpoint, ctxErr)
		}
		c.logger.WarnContext(ctx, "sportmonks request failed", "url", redactAPIURL(fullURL), "error", err)
		return Envelope{}, err
	}

	var envelope Envelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		wrapped := crerr.Wrapf(ErrMalformedResponse, "decode envelope: %v", err)
		c.logger.WarnContext(ctx, "sportmonks response is not valid json", "url", redactAPIURL(fullURL), "body", abbreviateBody(raw))
		return Envelope{}, wrapped
	}
	return envelope, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %s", sanitizeSensitiveText(err.Error(), c.token))
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A caller cancelling the run is not a provider failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("send request: %w", ctxErr)
		}
		return nil, classifySendError(err, c.token)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classifySendError(fmt.Errorf("read response body: %w", err), c.token)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       sanitizeSensitiveText(abbreviateBody(raw), c.token),
		}
	}
	return raw, nil
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	value = apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
	return value
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return apiTokenParamRegex.ReplaceAllString(rawURL, "api_token=REDACTED")
	}
	query := parsed.Query()
	if query.Has("api_token") {
		query.Set("api_token", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

// relation accepts both {"data": {...}} and the bare object, which the
// provider mixes depending on the include syntax.
type relation[T any] struct {
	Data T
	Set  bool
}

func (r *relation[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.Set = false
		return nil
	}

	var wrapped struct {
		Data *T `json:"data"`
	}
	if err := sonic.Unmarshal(trimmed, &wrapped); err == nil && wrapped.Data != nil {
		r.Data = *wrapped.Data
		r.Set = true
		return nil
	}

	var direct T
	if err := sonic.Unmarshal(trimmed, &direct); err != nil {
		return err
	}
	r.Data = direct
	r.Set = true
	return nil
}
