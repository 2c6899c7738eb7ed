// Package postgrest talks to a Supabase project over HTTP: table reads and
// writes through PostgREST and password sessions through GoTrue.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"relief-portal-go/internal/remote"
	"relief-portal-go/pkg/logger"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 * 1024
)

// TokenSource supplies the signed-in user's access token. Requests fall
// back to the publishable key when it returns "".
type TokenSource interface {
	AccessToken() string
}

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RateLimit  float64
	RateBurst  int
	Tokens     TokenSource
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	tokens  TokenSource
	log     logger.Logger
}

func NewClient(opts Options, log logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		client:  httpClient(opts),
		limiter: newLimiter(opts.RateLimit, opts.RateBurst),
		tokens:  opts.Tokens,
		log:     log.With("component", "postgrest"),
	}
}

func httpClient(opts Options) *http.Client {
	if opts.HTTPClient != nil {
		return opts.HTTPClient
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// newLimiter returns nil (unlimited) for a non-positive limit.
func newLimiter(limit float64, burst int) *rate.Limiter {
	if limit <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(limit), burst)
}

func (c *Client) Select(ctx context.Context, query remote.Query, dest any) error {
	endpoint := c.baseURL + "/rest/v1/" + url.PathEscape(query.Table) + "?" + EncodeQuery(query)

	resp, err := c.do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return &remote.ReadError{Table: query.Table, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		status, code, message := decodeError(resp)
		c.log.Warn("postgrest: read failed", "table", query.Table, "status", status, "code", code)
		return &remote.ReadError{Table: query.Table, Status: status, Code: code, Message: message}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &remote.ReadError{Table: query.Table, Status: resp.StatusCode, Message: "decode response: " + err.Error(), Err: err}
	}
	return nil
}

func (c *Client) Insert(ctx context.Context, table string, row any) error {
	return c.write(ctx, table, "", row)
}

// Upsert merges row into table, resolving conflicts on conflictColumn.
func (c *Client) Upsert(ctx context.Context, table string, conflictColumn string, row any) error {
	return c.write(ctx, table, conflictColumn, row)
}

func (c *Client) write(ctx context.Context, table, conflictColumn string, row any) error {
	body, err := json.Marshal(row)
	if err != nil {
		return &remote.WriteError{Table: table, Message: "encode row: " + err.Error(), Err: err}
	}

	endpoint := c.baseURL + "/rest/v1/" + url.PathEscape(table)
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	prefer := []string{"return=minimal"}
	if conflictColumn != "" {
		endpoint += "?on_conflict=" + url.QueryEscape(conflictColumn)
		prefer = append(prefer, "resolution=merge-duplicates")
	}
	headers.Set("Prefer", strings.Join(prefer, ","))

	resp, err := c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(body), headers)
	if err != nil {
		return &remote.WriteError{Table: table, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		status, code, message := decodeError(resp)
		c.log.Warn("postgrest: write failed", "table", table, "status", status, "code", code)
		return &remote.WriteError{Table: table, Status: status, Code: code, Message: message}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, headers http.Header) (*http.Response, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())

	return c.client.Do(req)
}

func (c *Client) bearer() string {
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			return token
		}
	}
	return c.apiKey
}

// EncodeQuery renders a query in PostgREST's URL grammar.
func EncodeQuery(query remote.Query) string {
	params := make([]string, 0, len(query.Filters)+2)
	params = append(params, "select="+url.QueryEscape(strings.Join(query.SelectExpr(), ",")))

	for _, filter := range query.Filters {
		var value string
		switch filter.Op {
		case remote.OpIn:
			quoted := make([]string, 0, len(filter.Values))
			for _, v := range filter.Values {
				quoted = append(quoted, quoteValue(v))
			}
			value = "in.(" + strings.Join(quoted, ",") + ")"
		default:
			first := ""
			if len(filter.Values) > 0 {
				first = filter.Values[0]
			}
			value = "eq." + first
		}
		params = append(params, url.QueryEscape(filter.Column)+"="+url.QueryEscape(value))
	}

	if len(query.Orders) > 0 {
		orders := make([]string, 0, len(query.Orders))
		for _, order := range query.Orders {
			direction := "asc"
			if order.Descending {
				direction = "desc"
			}
			orders = append(orders, order.Column+"."+direction)
		}
		params = append(params, "order="+url.QueryEscape(strings.Join(orders, ",")))
	}

	return strings.Join(params, "&")
}

// quoteValue wraps list members so commas and parentheses inside ids survive.
func quoteValue(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return `"` + value + `"`
}

type errorResponse struct {
	Message          string          `json:"message"`
	Code             json.RawMessage `json:"code"`
	Details          string          `json:"details"`
	Hint             string          `json:"hint"`
	Error            string          `json:"error"`
	ErrorCode        string          `json:"error_code"`
	ErrorDescription string          `json:"error_description"`
	Msg              string          `json:"msg"`
}

// decodeError extracts the service's own message; the raw body or the
// status text is used when the body is not the usual JSON envelope.
func decodeError(resp *http.Response) (int, string, string) {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload errorResponse
	if err := json.Unmarshal(raw, &payload); err == nil {
		message := firstNonEmpty(payload.Message, payload.ErrorDescription, payload.Msg, payload.Error)
		if message != "" {
			return resp.StatusCode, firstNonEmpty(payload.ErrorCode, codeString(payload.Code)), message
		}
	}

	if text := strings.TrimSpace(string(raw)); text != "" {
		return resp.StatusCode, "", text
	}
	return resp.StatusCode, "", http.StatusText(resp.StatusCode)
}

// codeString accepts both PostgREST's string codes and GoTrue's numeric ones.
func codeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
