// Package tgchecker looks up the Telegram account status of phone numbers
// through the irbots checker API.
package tgchecker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/weiwei-tsao/tgchecker/pkg/model"
)

const (
	// DefaultBaseURL is the public checker endpoint.
	DefaultBaseURL = "http://api.irbots.com"
	// DefaultTimeout bounds one round trip when no HTTP client is supplied.
	DefaultTimeout = 10 * time.Second

	userAgent    = "tgchecker-go/1.0"
	maxErrorBody = 512
)

// HTTPClient matches net/http.Client Do signature for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config defines settings for the checker client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client queries the phone-number status service. A Client holds no state
// besides its configuration and is safe for concurrent Check calls as long as
// SetAPIKey is not called while requests are in flight.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPClient
}

// Outcome is delivered by CheckAsync.
type Outcome struct {
	Result model.CheckResult
	Err    error
}

// New creates a checker client. A nil httpClient gets a net/http client with cfg.Timeout.
func New(httpClient HTTPClient, cfg Config) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    base,
		httpClient: httpClient,
	}
}

// SetAPIKey replaces the stored key. The service decides whether it is valid.
func (c *Client) SetAPIKey(key string) {
	c.apiKey = strings.TrimSpace(key)
}

// APIKey returns the configured key.
func (c *Client) APIKey() string { return c.apiKey }

// IsConfigured reports whether an API key is present.
func (c *Client) IsConfigured() bool { return c.apiKey != "" }

func (c *Client) String() string {
	if c.IsConfigured() {
		return "tgchecker.Client(configured)"
	}
	return "tgchecker.Client(not configured)"
}

// Check sends numbers in one request and waits for the parsed result.
func (c *Client) Check(ctx context.Context, numbers []string) (model.CheckResult, error) {
	req, err := c.prepare(ctx, numbers)
	if err != nil {
		return model.CheckResult{}, err
	}
	return c.execute(req)
}

// CheckAsync validates numbers on the calling goroutine and performs the
// round trip on a single new goroutine. The returned channel yields exactly
// one Outcome and is then closed.
func (c *Client) CheckAsync(ctx context.Context, numbers []string) <-chan Outcome {
	out := make(chan Outcome, 1)
	req, err := c.prepare(ctx, numbers)
	if err != nil {
		out <- Outcome{Err: err}
		close(out)
		return out
	}
	go func() {
		defer close(out)
		res, err := c.execute(req)
		out <- Outcome{Result: res, Err: err}
	}()
	return out
}

// CheckNumber checks a single number and returns its tag.
func (c *Client) CheckNumber(ctx context.Context, number string) (model.Status, error) {
	res, err := c.Check(ctx, []string{number})
	if err != nil {
		return "", err
	}
	n, err := Clean(number)
	if err != nil {
		return "", err
	}
	s, ok := res.Lookup(n)
	if !ok {
		return "", &NotFoundError{Number: string(n)}
	}
	return s, nil
}

// CheckNumber is a one-shot helper that builds a client for apiKey and checks number.
func CheckNumber(ctx context.Context, number, apiKey string) (model.Status, error) {
	return New(nil, Config{APIKey: apiKey}).CheckNumber(ctx, number)
}

// prepare holds every step shared by both call paths that needs no I/O.
func (c *Client) prepare(ctx context.Context, numbers []string) (*http.Request, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}
	batch, err := BuildBatch(numbers)
	if err != nil {
		return nil, err
	}
	return c.buildRequest(ctx, batch)
}

func (c *Client) buildRequest(ctx context.Context, batch model.NumberBatch) (*http.Request, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("parse base url: %w", err)}
	}
	params := endpoint.Query()
	params.Set("key", c.apiKey)
	params.Set("target", "checker")
	params.Set("numbers", batch.Join())
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

func (c *Client) execute(req *http.Request) (model.CheckResult, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.CheckResult{}, &RequestError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.CheckResult{}, &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.CheckResult{}, &RequestError{StatusCode: resp.StatusCode, Body: truncate(string(body), maxErrorBody)}
	}

	result, err := decodeCheckResponse(body)
	if err != nil {
		return model.CheckResult{}, &RequestError{StatusCode: resp.StatusCode, Body: truncate(string(body), maxErrorBody), Err: err}
	}
	return result, nil
}

type checkResponse struct {
	Data      json.RawMessage `json:"data"`
	Errors    model.Errors    `json:"errors"`
	Status    json.RawMessage `json:"status"`
	TimeTaken json.RawMessage `json:"Time taken"`
	// Some deployments spell it this way.
	TimeTakenAlt json.RawMessage `json:"time_taken"`
}

func decodeCheckResponse(body []byte) (model.CheckResult, error) {
	var raw checkResponse
	if err := json.Unmarshal(bytes.TrimSpace(body), &raw); err != nil {
		return model.CheckResult{}, fmt.Errorf("decode response: %w", err)
	}
	data, err := decodeData(raw.Data)
	if err != nil {
		return model.CheckResult{}, err
	}

	timeTaken := raw.TimeTaken
	if len(timeTaken) == 0 {
		timeTaken = raw.TimeTakenAlt
	}
	return model.CheckResult{
		Data:      data,
		Errors:    raw.Errors,
		Status:    decodeText(raw.Status, "unknown"),
		TimeTaken: decodeNumber(timeTaken),
	}, nil
}

func decodeData(raw json.RawMessage) (map[model.PhoneNumber]model.Status, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errors.New("malformed response: missing data field")
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("malformed response: data is not an object: %w", err)
	}
	data := make(map[model.PhoneNumber]model.Status, len(entries))
	for number, tag := range entries {
		data[model.PhoneNumber(number)] = model.Status(decodeText(tag, ""))
	}
	return data, nil
}

// decodeText returns a JSON string's value, any other JSON value as its text, or def when absent.
func decodeText(raw json.RawMessage, def string) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// decodeNumber accepts a JSON number or a numeric string; anything else is 0.
func decodeNumber(raw json.RawMessage) float64 {
	text := decodeText(raw, "")
	if text == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(text, "seconds")), 64)
	if err != nil {
		return 0
	}
	return f
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
