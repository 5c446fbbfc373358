// Package ledger talks to the ledger node over its ABCI-style RPC: queries,
// transaction commits and block height polling.
package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"asnode/pkg/platform/sentinel"
)

// ErrTxRejected is returned when the ledger does not commit a transaction.
var ErrTxRejected = errors.New("ledger transaction rejected")

// Client is a ledger RPC client.
type Client struct {
	baseURL string
	http    *http.Client
	nonce   atomic.Int64
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  slog.Default(),
	}
	c.nonce.Store(time.Now().UnixNano())
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func (e *rpcError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("ledger rpc error %d: %s: %s", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("ledger rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse[T any] struct {
	Result T         `json:"result"`
	Error  *rpcError `json:"error"`
}

type queryResult struct {
	Response struct {
		Log   string `json:"log"`
		Value string `json:"value"`
	} `json:"response"`
}

type txResult struct {
	CheckTx struct {
		Code int    `json:"code"`
		Log  string `json:"log"`
	} `json:"check_tx"`
	DeliverTx struct {
		Code int    `json:"code"`
		Log  string `json:"log"`
	} `json:"deliver_tx"`
	Height flexInt `json:"height"`
}

type statusResult struct {
	SyncInfo struct {
		LatestBlockHeight flexInt `json:"latest_block_height"`
	} `json:"sync_info"`
}

// flexInt accepts heights encoded as JSON strings or numbers.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse height %q: %w", s, err)
	}
	*f = flexInt(v)
	return nil
}

// Query calls a read-only ledger function and decodes its JSON result into
// out. Empty results return sentinel.ErrNotFound.
func (c *Client) Query(ctx context.Context, fn string, params any, out any) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal %s params: %w", fn, err)
	}
	data := base64.StdEncoding.EncodeToString([]byte(fn + "|" + string(payload)))

	resp, err := get[queryResult](ctx, c, "/abci_query", "data", data)
	if err != nil {
		return fmt.Errorf("query %s: %w", fn, err)
	}
	raw, err := base64.StdEncoding.DecodeString(resp.Response.Value)
	if err != nil {
		return fmt.Errorf("decode %s result: %w", fn, err)
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		return sentinel.ErrNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal %s result: %w", fn, err)
	}
	return nil
}

// Transact commits a transaction and returns the height it was committed at.
func (c *Client) Transact(ctx context.Context, fn string, params any) (int64, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("marshal %s params: %w", fn, err)
	}
	nonce := strconv.FormatInt(c.nonce.Add(1), 10)
	tx := base64.StdEncoding.EncodeToString([]byte(fn + "|" + string(payload) + "|" + nonce))

	resp, err := get[txResult](ctx, c, "/broadcast_tx_commit", "tx", tx)
	if err != nil {
		return 0, fmt.Errorf("transact %s: %w", fn, err)
	}
	if resp.CheckTx.Code != 0 {
		return 0, fmt.Errorf("%w: %s check_tx: %s", ErrTxRejected, fn, resp.CheckTx.Log)
	}
	if resp.DeliverTx.Log != "success" {
		return 0, fmt.Errorf("%w: %s: %s", ErrTxRejected, fn, resp.DeliverTx.Log)
	}
	c.logger.DebugContext(ctx, "ledger transaction committed", "fn", fn, "height", int64(resp.Height))
	return int64(resp.Height), nil
}

// LatestHeight returns the latest committed block height.
func (c *Client) LatestHeight(ctx context.Context) (int64, error) {
	resp, err := get[statusResult](ctx, c, "/status", "", "")
	if err != nil {
		return 0, fmt.Errorf("ledger status: %w", err)
	}
	return int64(resp.SyncInfo.LatestBlockHeight), nil
}

func get[T any](ctx context.Context, c *Client, path, param, value string) (*T, error) {
	u := c.baseURL + path
	if param != "" {
		q := url.Values{}
		q.Set(param, `"`+value+`"`)
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var decoded rpcResponse[T]
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if decoded.Error != nil {
		return nil, decoded.Error
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("ledger returned status %d", resp.StatusCode)
	}
	return &decoded.Result, nil
}
