// Package wsclient implements the ledger boundary over the XRPL websocket
// API using gorilla/websocket.
package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/logger"
)

// ErrClosed is returned by requests on a closed client.
var ErrClosed = errors.New("ledger connection closed")

// Config configures the client.
type Config struct {
	// PageSize bounds account_lines and account_tx pages.
	PageSize int
	// SubmitTimeout bounds one submit-and-wait.
	SubmitTimeout time.Duration
	// PollInterval is the delay between tx lookups while waiting for validation.
	PollInterval time.Duration
	// LastLedgerOffset is added to the current ledger index for LastLedgerSequence.
	LastLedgerOffset uint32
	// MaxFeeDrops caps the autofilled fee.
	MaxFeeDrops int64
	// HandshakeTimeout bounds the websocket handshake.
	HandshakeTimeout time.Duration
	// WriteTimeout bounds one frame write.
	WriteTimeout time.Duration
	// RetryElapsed bounds retries of transient server errors.
	RetryElapsed time.Duration
}

// DefaultConfig returns default client configuration.
func DefaultConfig() Config {
	return Config{
		PageSize:         200,
		SubmitTimeout:    60 * time.Second,
		PollInterval:     time.Second,
		LastLedgerOffset: 20,
		MaxFeeDrops:      100_000,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		RetryElapsed:     10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.PageSize <= 0 {
		c.PageSize = def.PageSize
	}
	if c.PageSize > ledger.MaxPageSize {
		c.PageSize = ledger.MaxPageSize
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = def.SubmitTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.LastLedgerOffset == 0 {
		c.LastLedgerOffset = def.LastLedgerOffset
	}
	if c.MaxFeeDrops <= 0 {
		c.MaxFeeDrops = def.MaxFeeDrops
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.RetryElapsed <= 0 {
		c.RetryElapsed = def.RetryElapsed
	}
	return c
}

// RPCError is an error response from the server.
type RPCError struct {
	Command string
	Code    string
	Message string
}

func (e *RPCError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Command, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Code)
}

// transient server conditions worth retrying.
var transientCodes = map[string]bool{
	"tooBusy":   true,
	"slowDown":  true,
	"noNetwork": true,
	"noCurrent": true,
	"noClosed":  true,
}

func isRPCCode(err error, code string) bool {
	var rpcErr *RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == code
}

// Client is one websocket connection. It is safe for concurrent use.
type Client struct {
	endpoint string
	cfg      Config

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// pending maps request ID to the channel waiting for its response
	pending   map[uint64]chan *response
	pendingMu sync.Mutex
	readErr   error

	done chan struct{}
	wg   sync.WaitGroup
}

var _ ledger.Ledger = (*Client)(nil)

// Dial connects to endpoint.
func Dial(ctx context.Context, endpoint string, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}

	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", endpoint, err)
	}

	c := &Client{
		endpoint: endpoint,
		cfg:      cfg,
		conn:     conn,
		pending:  make(map[uint64]chan *response),
		done:     make(chan struct{}),
	}
	c.wg.Add(1)
	go c.readLoop()

	logger.DebugCtx(ctx, "ledger connection opened", zap.String("endpoint", endpoint))
	return c, nil
}

// Close closes the connection and fails outstanding requests.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.done)

	c.connMu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := c.conn.Close()
	c.connMu.Unlock()

	c.wg.Wait()
	logger.Debug("ledger connection closed", zap.String("endpoint", c.endpoint))
	return err
}

// readLoop reads responses and hands each to the request waiting on its id.
func (c *Client) readLoop() {
	defer c.wg.Done()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			c.failPending(err)
			return
		}

		var resp response
		if err := json.Unmarshal(message, &resp); err != nil || resp.ID == 0 {
			// stream messages and malformed frames have no waiter
			continue
		}

		c.pendingMu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.pendingMu.Unlock()

		if ok {
			ch <- &resp
		}
	}
}

func (c *Client) failPending(err error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	if c.closed.Load() {
		err = ErrClosed
	}
	c.readErr = err
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

// request sends one command and decodes its result into out.
func (c *Client) request(ctx context.Context, command string, params map[string]any, out any) error {
	if c.closed.Load() {
		return ErrClosed
	}

	id := c.requestID.Add(1)
	msg := make(map[string]any, len(params)+2)
	for k, v := range params {
		msg[k] = v
	}
	msg["id"] = id
	msg["command"] = command

	ch := make(chan *response, 1)
	c.pendingMu.Lock()
	if c.readErr != nil {
		err := c.readErr
		c.pendingMu.Unlock()
		return fmt.Errorf("%s: %w", command, err)
	}
	c.pending[id] = ch
	c.pendingMu.Unlock()

	c.connMu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	err := c.conn.WriteJSON(msg)
	c.connMu.Unlock()
	if err != nil {
		c.forget(id)
		return fmt.Errorf("write %s: %w", command, err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			c.pendingMu.Lock()
			err := c.readErr
			c.pendingMu.Unlock()
			return fmt.Errorf("%s: %w", command, err)
		}
		return resp.decode(command, out)
	case <-ctx.Done():
		c.forget(id)
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	}
}

func (c *Client) forget(id uint64) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

// call is request with retries on transient server conditions.
func (c *Client) call(ctx context.Context, command string, params map[string]any, out any) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = c.cfg.RetryElapsed

	operation := func() error {
		err := c.request(ctx, command, params, out)
		if err == nil {
			return nil
		}
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) && transientCodes[rpcErr.Code] {
			logger.WarnCtx(ctx, "ledger busy, retrying",
				zap.String("command", command),
				zap.String("code", rpcErr.Code),
			)
			return err
		}
		return backoff.Permanent(err)
	}
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

type response struct {
	ID           uint64          `json:"id"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result"`
	Error        string          `json:"error"`
	ErrorMessage string          `json:"error_message"`
}

func (r *response) decode(command string, out any) error {
	if r.Status == "error" || r.Error != "" {
		return &RPCError{Command: command, Code: r.Error, Message: r.ErrorMessage}
	}
	// some servers report errors inside the result object
	var inner struct {
		Error        string `json:"error"`
		ErrorMessage string `json:"error_message"`
	}
	if len(r.Result) > 0 && json.Unmarshal(r.Result, &inner) == nil && inner.Error != "" {
		return &RPCError{Command: command, Code: inner.Error, Message: inner.ErrorMessage}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(r.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", command, err)
	}
	return nil
}
