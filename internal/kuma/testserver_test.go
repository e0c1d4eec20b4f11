// ABOUTME: Fake monitoring server for client tests
// ABOUTME: Speaks the event-framed websocket protocol over httptest

package kuma

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// testTimeout keeps failing waits short instead of running out the
// client's production default.
const testTimeout = 2 * time.Second

// fakeServer speaks the server side of the event protocol. Handlers are
// registered per call event and return the acknowledgement payload; a nil
// return suppresses the acknowledgement entirely.
type fakeServer struct {
	t   *testing.T
	srv *httptest.Server

	onConnect func(s *fakeServer)

	mu          sync.Mutex
	conn        *websocket.Conn
	handlers    map[string]func(data json.RawMessage) any
	calls       map[string]int
	publicPages map[string]any

	writeMu sync.Mutex
}

var testUpgrader = websocket.Upgrader{}

func newFakeServer(t *testing.T) *fakeServer {
	s := &fakeServer{
		t:           t,
		handlers:    make(map[string]func(json.RawMessage) any),
		calls:       make(map[string]int),
		publicPages: make(map[string]any),
	}
	s.handle("login", func(json.RawMessage) any {
		return map[string]any{"ok": true, "token": "session-token"}
	})
	s.srv = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *fakeServer) URL() string { return s.srv.URL }

func (s *fakeServer) handle(event string, fn func(json.RawMessage) any) {
	s.mu.Lock()
	s.handlers[event] = fn
	s.mu.Unlock()
}

func (s *fakeServer) servePublicPage(slug string, doc any) {
	s.mu.Lock()
	s.publicPages[slug] = doc
	s.mu.Unlock()
}

// dropClient severs the websocket from the server side. httptest stops
// tracking connections once they are hijacked by the upgrade, so the
// conn has to be closed directly.
func (s *fakeServer) dropClient() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		s.t.Errorf("no client connected")
		return
	}
	_ = conn.Close()
}

func (s *fakeServer) callCount(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[event]
}

func (s *fakeServer) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if slug, ok := strings.CutPrefix(r.URL.Path, "/api/status-page/"); ok {
		s.mu.Lock()
		doc, found := s.publicPages[slug]
		s.mu.Unlock()
		if !found {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
		return
	}
	if r.URL.Path != socketPath {
		http.NotFound(w, r)
		return
	}

	conn, err := testUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	if s.onConnect != nil {
		s.onConnect(s)
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var f frame
		if err := json.Unmarshal(message, &f); err != nil {
			continue
		}

		s.mu.Lock()
		s.calls[f.Event]++
		fn := s.handlers[f.Event]
		s.mu.Unlock()

		if fn == nil {
			s.reply(f.ID, map[string]any{"ok": false, "msg": "unknown event " + f.Event})
			continue
		}
		if payload := fn(f.Data); payload != nil {
			s.reply(f.ID, payload)
		}
	}
}

func (s *fakeServer) reply(id uint64, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.t.Errorf("encoding reply: %v", err)
		return
	}
	s.write(frame{ID: id, Data: data})
}

// push sends an unsolicited broadcast frame.
func (s *fakeServer) push(kind EventKind, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.t.Errorf("encoding push: %v", err)
		return
	}
	s.write(frame{Event: string(kind), Data: data})
}

func (s *fakeServer) write(f frame) {
	data, err := json.Marshal(f)
	if err != nil {
		s.t.Errorf("encoding frame: %v", err)
		return
	}
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		s.t.Errorf("no client connected")
		return
	}
	s.writeMu.Lock()
	_ = conn.WriteMessage(websocket.TextMessage, data)
	s.writeMu.Unlock()
}

// connectClient opens a logged-in session against the fake server.
func connectClient(t *testing.T, s *fakeServer) *Client {
	t.Helper()
	client, err := Connect(context.Background(), s.URL(), nil, WithTimeout(testTimeout))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(client.Disconnect)
	if _, err := client.Login(context.Background(), "admin", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return client
}
