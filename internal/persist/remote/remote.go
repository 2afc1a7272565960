// Package remote is a persistence backend that talks to the ppestock API
// server over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/persist"
	"github.com/erazemk/ppestock/internal/tracker"
	"github.com/erazemk/ppestock/internal/txlog"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Client is an HTTP client for the API server. It implements
// persist.Adapter over GET/PUT /api/state.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	mu    sync.Mutex
	token string
}

// New creates a client for baseURL. A zero timeout means DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Login exchanges the shared password for a token and keeps it.
func (c *Client) Login(ctx context.Context, role, password, name string) error {
	req := map[string]string{"role": role, "password": password, "name": name}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, req, &resp); err != nil {
		return err
	}
	c.SetToken(resp.Token)
	return nil
}

// Load fetches the server's whole state.
func (c *Client) Load(ctx context.Context) (*persist.State, error) {
	var st persist.State
	if err := c.do(ctx, http.MethodGet, "/api/state", nil, nil, &st); err != nil {
		return nil, err
	}
	if st.Items == nil {
		st.Items = []model.Item{}
	}
	if st.Transactions == nil {
		st.Transactions = []model.Transaction{}
	}
	return &st, nil
}

// Save replaces the server's state if it is still at st.Version.
func (c *Client) Save(ctx context.Context, st *persist.State) error {
	header := http.Header{}
	header.Set("If-Match", strconv.Quote(strconv.FormatInt(st.Version, 10)))
	var resp struct {
		Version int64 `json:"version"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/state", header, st, &resp); err != nil {
		return err
	}
	st.Version = resp.Version
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.HTTP.CloseIdleConnections()
	return nil
}

// Transactions lists transactions matching q.
func (c *Client) Transactions(ctx context.Context, q txlog.Query) ([]model.Transaction, error) {
	v := url.Values{}
	for key, val := range map[string]string{"from": q.From, "to": q.To, "actor": q.Actor, "item": q.Item} {
		if val != "" {
			v.Set(key, val)
		}
	}
	if q.OpenOnly {
		v.Set("open", "true")
	}
	path := "/api/transactions"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var txs []model.Transaction
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// CreateTransaction issues (model.TxOut) or returns (model.TxIn) stock.
// The server checks and applies the movement atomically.
func (c *Client) CreateTransaction(ctx context.Context, typ model.TxType, req tracker.MovementRequest) (tracker.Receipt, error) {
	body := struct {
		Type model.TxType `json:"type"`
		tracker.MovementRequest
	}{typ, req}

	var rec tracker.Receipt
	err := c.do(ctx, http.MethodPost, "/api/transactions", nil, body, &rec)
	return rec, err
}

// ReturnPartial returns part of an earlier issue.
func (c *Client) ReturnPartial(ctx context.Context, txID string, quantity int) (tracker.ReturnReceipt, error) {
	var rec tracker.ReturnReceipt
	err := c.do(ctx, http.MethodPost, "/api/transactions/"+url.PathEscape(txID)+"/returns", nil,
		map[string]int{"quantity": quantity}, &rec)
	return rec, err
}

// DeleteTransactions clears the server's transaction log.
func (c *Client) DeleteTransactions(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/transactions?confirm=true", nil, nil, nil)
}

// Employees lists the authorized employees.
func (c *Client) Employees(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee
	if err := c.do(ctx, http.MethodGet, "/api/employees", nil, nil, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

// AddEmployee authorizes a new employee.
func (c *Client) AddEmployee(ctx context.Context, e model.Employee) error {
	return c.do(ctx, http.MethodPost, "/api/employees", nil, e, nil)
}

// DeleteEmployee withdraws an employee.
func (c *Client) DeleteEmployee(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/api/employees/"+url.PathEscape(name), nil, nil, nil)
}

// Export writes the server's workbook for date (YYYY-MM-DD) to w. Proof
// image names are resolved on the server. A day without transactions fails
// with kind "no_transactions".
func (c *Client) Export(ctx context.Context, date string, w io.Writer) error {
	return c.do(ctx, http.MethodGet, "/api/export?date="+url.QueryEscape(date), nil, nil, w)
}

// do sends a JSON request and decodes a JSON response into out, or copies
// the body when out is an io.Writer. Every failure is a *persist.NetworkError.
func (c *Client) do(ctx context.Context, method, path string, header http.Header, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &persist.NetworkError{Message: "encode request", Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return &persist.NetworkError{Message: "build request", Err: err}
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.Lock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.Unlock()

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &persist.NetworkError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if w, ok := out.(io.Writer); ok {
		if _, err := io.Copy(w, resp.Body); err != nil {
			return &persist.NetworkError{StatusCode: resp.StatusCode, Message: "read response", Err: err}
		}
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &persist.NetworkError{StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}

// APIError is the server's error body.
type APIError struct {
	Message string `json:"error"`
	Kind    string `json:"kind"`
}

func (e *APIError) Error() string { return e.Message }

func statusError(resp *http.Response) error {
	apiErr := &APIError{}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return &persist.NetworkError{StatusCode: resp.StatusCode, Message: apiErr.Message, Err: apiErr}
}

// KindOf returns the server's error kind, or "" if err did not come from
// an API response.
func KindOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// RetryPolicy retries transient failures with exponential backoff. The
// adapter never retries on its own.
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

// DefaultRetry is three attempts starting at 200ms.
var DefaultRetry = RetryPolicy{Attempts: 3, Base: 200 * time.Millisecond, Max: 2 * time.Second}

// Retryable reports whether err is worth retrying: transport failures and
// 5xx responses, but never conflicts or rejected requests.
func Retryable(err error) bool {
	var netErr *persist.NetworkError
	if !errors.As(err, &netErr) {
		return false
	}
	return netErr.StatusCode == 0 || netErr.StatusCode >= 500
}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempts run out.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	maxInterval := p.Max
	if maxInterval <= 0 {
		maxInterval = backoff.DefaultMaxInterval
	}
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.Base),
		backoff.WithMaxInterval(maxInterval),
		backoff.WithMaxElapsedTime(0),
	)
	retries := uint64(max(p.Attempts, 1) - 1)

	op := func() error {
		err := fn(ctx)
		if err != nil && !Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		slog.Warn("remote call failed, retrying", "error", err, "wait", wait)
	}
	return backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx), notify)
}
