// ABOUTME: Transport session for the monitoring server's event-based API
// ABOUTME: Owns the websocket connection, issues calls, routes pushes to the event cache

package kuma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultTimeout bounds every blocking wait: call acknowledgements,
// list-refresh waits, and the connection handshake.
const DefaultTimeout = 30 * time.Second

// socketPath is the server's event channel endpoint.
const socketPath = "/api/socket"

// frame is the wire shape of every message on the connection. Calls carry
// an id and an event name; acknowledgements echo the id without an event;
// unsolicited pushes carry an event name without an id.
type frame struct {
	ID    uint64          `json:"id,omitempty"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Identity is the minimal session token structure returned by login.
// It is used for reporting only; the connection itself carries the
// authenticated state.
type Identity struct {
	Token string `json:"token"`
}

// Client is one live session against the monitoring server. At most one
// active session exists per process run.
type Client struct {
	baseURL    string
	conn       *websocket.Conn
	cache      *eventCache
	timeout    time.Duration
	httpClient *http.Client

	writeMu sync.Mutex

	pendingMu sync.Mutex
	seq       uint64
	pending   map[uint64]chan json.RawMessage

	closeOnce sync.Once
	done      chan struct{}
}

// Option configures a Client at connect time.
type Option func(*Client)

// WithTimeout overrides the wait bound for calls, refresh waits, and the
// connection handshake.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// Connect opens a session to the server at rawURL, carrying any extra
// headers. The push-delivery pump is started immediately so early
// broadcasts are not missed.
func Connect(ctx context.Context, rawURL string, headers http.Header, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: rawURL,
		cache:   newEventCache(),
		timeout: DefaultTimeout,
		pending: make(map[uint64]chan json.RawMessage),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{Timeout: c.timeout}

	endpoint, err := socketURL(rawURL)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.timeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, headers)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to server at %s: %w", rawURL, err)
	}
	c.conn = conn
	c.cache.put(EventConnect, nil)

	go c.readPump()

	return c, nil
}

// socketURL converts the server's base URL to the websocket endpoint.
func socketURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server URL %q: unsupported scheme %q", rawURL, u.Scheme)
	}
	u.Path = socketPath
	return u.String(), nil
}

// readPump routes incoming frames: acknowledgements to their pending call,
// pushes to the event cache. It is the cache's only writer.
func (c *Client) readPump() {
	defer c.failPending()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var f frame
		if err := json.Unmarshal(message, &f); err != nil {
			continue
		}
		switch {
		case f.ID != 0:
			c.pendingMu.Lock()
			ch, ok := c.pending[f.ID]
			delete(c.pending, f.ID)
			c.pendingMu.Unlock()
			if ok {
				ch <- f.Data
			}
		case f.Event != "":
			c.cache.put(EventKind(f.Event), f.Data)
		}
	}
}

// failPending closes the session's done channel so in-flight and future
// calls fail with ErrNotConnected instead of running out their timeout.
func (c *Client) failPending() {
	c.cache.put(EventDisconnect, nil)
	c.pendingMu.Lock()
	for id := range c.pending {
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()
	close(c.done)
}

// Call issues a named remote call and blocks until the matching
// acknowledgement arrives, the wait bound elapses, or ctx is canceled.
func (c *Client) Call(ctx context.Context, event string, payload any) (Response, error) {
	if c.conn == nil {
		return Response{}, ErrNotConnected
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("encoding '%s' payload: %w", event, err)
	}

	ch := make(chan json.RawMessage, 1)
	c.pendingMu.Lock()
	c.seq++
	id := c.seq
	c.pending[id] = ch
	c.pendingMu.Unlock()

	out, err := json.Marshal(frame{ID: id, Event: event, Data: data})
	if err != nil {
		return Response{}, fmt.Errorf("encoding '%s' frame: %w", event, err)
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, out)
	c.writeMu.Unlock()
	if err != nil {
		c.dropPending(id)
		return Response{}, fmt.Errorf("sending '%s' call: %w", event, err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case raw := <-ch:
		return Response{raw: raw}, nil
	case <-timer.C:
		c.dropPending(id)
		return Response{}, fmt.Errorf("waiting for '%s' acknowledgement: %w", event, ErrTimeout)
	case <-c.done:
		return Response{}, ErrNotConnected
	case <-ctx.Done():
		c.dropPending(id)
		return Response{}, ctx.Err()
	}
}

func (c *Client) dropPending(id uint64) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

// Login authenticates the open connection. The returned identity is
// informational; a rejected login surfaces ErrAuthentication.
func (c *Client) Login(ctx context.Context, username, password string) (Identity, error) {
	resp, err := c.Call(ctx, "login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return Identity{}, err
	}

	ack, ok := resp.Ack()
	if !ok {
		return Identity{}, fmt.Errorf("unexpected login response: %w", ErrAuthentication)
	}
	if !ack.OK {
		if ack.Msg != "" {
			return Identity{}, fmt.Errorf("%s: %w", ack.Msg, ErrAuthentication)
		}
		return Identity{}, ErrAuthentication
	}

	var identity Identity
	if err := json.Unmarshal(resp.Raw(), &identity); err != nil {
		return Identity{}, fmt.Errorf("decoding login response: %w", err)
	}
	return identity, nil
}

// Disconnect closes the session. It is idempotent and never fails on an
// already-closed connection.
func (c *Client) Disconnect() {
	if c.conn == nil {
		return
	}
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = c.conn.Close()
	})
}

// BaseURL returns the server URL this session was opened against.
func (c *Client) BaseURL() string {
	return c.baseURL
}
