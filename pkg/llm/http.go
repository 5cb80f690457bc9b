package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	connectTimeout = 30 * time.Second
	readTimeout    = 60 * time.Second
	// requestTimeout bounds one whole exchange, body included.
	requestTimeout = connectTimeout + readTimeout
)

// Option configures a provider.
type Option func(*options)

type options struct {
	baseURL           string
	defaultModel      string
	httpClient        *http.Client
	logger            *slog.Logger
	requestsPerMinute int
	modelPolicy       ModelPolicy
	oauth2            *clientcredentials.Config
	keyless           bool
	timeout           time.Duration
}

// WithBaseURL points the provider at a different endpoint, such as an
// OpenAI-compatible gateway or a local Ollama server.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(url, "/") }
}

// WithDefaultModel overrides the model used when a request names none or
// names a model from another provider family.
func WithDefaultModel(model string) Option {
	return func(o *options) { o.defaultModel = model }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRateLimit caps outgoing requests per minute. Zero disables the limit.
func WithRateLimit(perMinute int) Option {
	return func(o *options) { o.requestsPerMinute = perMinute }
}

// WithModelPolicy selects how a model from another provider family is handled.
func WithModelPolicy(p ModelPolicy) Option {
	return func(o *options) { o.modelPolicy = p }
}

// WithOAuth2 authenticates requests with a client-credentials token instead
// of (or in addition to) a static API key.
func WithOAuth2(cfg *clientcredentials.Config) Option {
	return func(o *options) { o.oauth2 = cfg }
}

// WithTimeout bounds each request from dial to the last body byte.
// Zero or less keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithKeyless marks the provider as usable without an API key. Only
// meaningful for self-hosted backends.
func WithKeyless() Option {
	return func(o *options) { o.keyless = true }
}

func buildOptions(baseURL, defaultModel string, opts []Option) options {
	o := options{
		baseURL:      baseURL,
		defaultModel: defaultModel,
		logger:       slog.Default(),
		timeout:      requestTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = newHTTPClient()
	}
	if o.oauth2 != nil {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, o.httpClient)
		o.httpClient = o.oauth2.Client(ctx)
	}
	return o
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: connectTimeout}).DialContext,
			TLSHandshakeTimeout:   connectTimeout,
			ResponseHeaderTimeout: readTimeout,
		},
	}
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// transport performs the single JSON POST every HTTP provider needs.
type transport struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	timeout time.Duration
}

func newTransport(o options) *transport {
	return &transport{
		client:  o.httpClient,
		limiter: newLimiter(o.requestsPerMinute),
		logger:  o.logger,
		timeout: o.timeout,
	}
}

// cancelOnClose releases the request deadline once the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// open sends body as JSON and returns the live response. The caller closes
// it. The whole exchange, reading the body included, is bounded by the
// transport timeout; time spent waiting on the rate limiter does not count.
func (t *transport) open(ctx context.Context, url string, headers map[string]string, body any) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	resp, err := t.do(ctx, url, headers, body)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (t *transport) do(ctx context.Context, url string, headers map[string]string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		t.logger.Warn("llm request failed", "url", url, "err", err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	t.logger.Debug("llm request", "url", url, "status", resp.StatusCode, "elapsed", time.Since(start))
	return resp, nil
}

// post sends body as JSON and returns the status code and full response body.
func (t *transport) post(ctx context.Context, url string, headers map[string]string, body any) (int, []byte, error) {
	resp, err := t.open(ctx, url, headers, body)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// errorField is embedded by wire responses to capture a backend error object.
type errorField struct {
	Error json.RawMessage `json:"error"`
}

func (e errorField) apiError() errorField { return e }

func (e errorField) present() bool {
	raw := bytes.TrimSpace(e.Error)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// apiErrorMessage extracts a readable message from a backend error value.
// Objects yield their "message" field, bare strings yield themselves, and
// anything else is returned as raw JSON text.
func apiErrorMessage(raw json.RawMessage) string {
	var obj struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != nil {
		return *obj.Message
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

type wireReply interface {
	apiError() errorField
}

// decodeReply parses a completed response body into out and reports any
// failure in the form providers return to the agent. The second result is
// false when the returned Response should be handed back as is.
func decodeReply(status int, body []byte, out wireReply) (Response, bool) {
	if err := json.Unmarshal(body, out); err != nil {
		if status != http.StatusOK {
			return failure("HTTP %d: %s", status, truncate(string(body), 500)), false
		}
		return failure("Parse error: %v", err), false
	}
	if ef := out.apiError(); ef.present() {
		return failure("%s", apiErrorMessage(ef.Error)), false
	}
	if status != http.StatusOK {
		return failure("HTTP %d: %s", status, truncate(string(body), 500)), false
	}
	return Response{}, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
