// ABOUTME: Shared test support for command tests
// ABOUTME: Minimal fake monitoring server and config file helpers

package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/kumactl/kumactl/internal/kuma"
)

type wsFrame struct {
	ID    uint64          `json:"id,omitempty"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// kumaStub is a minimal in-memory monitoring server good enough for the
// command flows: login, monitor add/delete, and list broadcasts.
type kumaStub struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	conn     *websocket.Conn
	writeMu  sync.Mutex
	monitors map[int64]kuma.Monitor
	nextID   int64
}

var stubUpgrader = websocket.Upgrader{}

func startKumaStub(t *testing.T, seed ...kuma.Monitor) *kumaStub {
	s := &kumaStub{t: t, monitors: make(map[int64]kuma.Monitor)}
	for _, m := range seed {
		s.monitors[m.ID] = m
		if m.ID > s.nextID {
			s.nextID = m.ID
		}
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *kumaStub) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/socket" {
		http.NotFound(w, r)
		return
	}
	conn, err := stubUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.pushMonitorList()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var f wsFrame
		if err := json.Unmarshal(message, &f); err != nil {
			continue
		}
		switch f.Event {
		case "login":
			s.reply(f.ID, map[string]any{"ok": true, "token": "tok"})
		case "add":
			var payload struct {
				Name   string           `json:"name"`
				Type   kuma.MonitorType `json:"type"`
				Parent *int64           `json:"parent"`
			}
			_ = json.Unmarshal(f.Data, &payload)
			s.mu.Lock()
			s.nextID++
			id := s.nextID
			s.monitors[id] = kuma.Monitor{ID: id, Name: payload.Name, Type: payload.Type, Parent: payload.Parent, Active: true}
			s.mu.Unlock()
			s.pushMonitorList()
			s.reply(f.ID, map[string]any{"ok": true, "monitorID": id})
		case "deleteMonitor":
			var id int64
			_ = json.Unmarshal(f.Data, &id)
			s.mu.Lock()
			delete(s.monitors, id)
			s.mu.Unlock()
			s.pushMonitorList()
			s.reply(f.ID, map[string]any{"ok": true})
		default:
			s.reply(f.ID, map[string]any{"ok": false, "msg": "unsupported in stub: " + f.Event})
		}
	}
}

func (s *kumaStub) pushMonitorList() {
	s.mu.Lock()
	snapshot := make(map[string]kuma.Monitor, len(s.monitors))
	for id, m := range s.monitors {
		snapshot[strconv.FormatInt(id, 10)] = m
	}
	s.mu.Unlock()
	s.write(wsFrame{Event: "monitorList", Data: mustJSON(s.t, snapshot)})
}

func (s *kumaStub) reply(id uint64, payload any) {
	s.write(wsFrame{ID: id, Data: mustJSON(s.t, payload)})
}

func (s *kumaStub) write(f wsFrame) {
	data := mustJSON(s.t, f)
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	s.writeMu.Lock()
	_ = conn.WriteMessage(websocket.TextMessage, data)
	s.writeMu.Unlock()
}

func (s *kumaStub) has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.monitors {
		if m.Name == name {
			return true
		}
	}
	return false
}

func mustJSON(t *testing.T, v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		t.Errorf("encoding: %v", err)
	}
	return data
}

// useStubConfig writes a config file pointing at the stub and routes the
// global --config flag to it for the duration of the test.
func useStubConfig(t *testing.T, s *kumaStub) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kuma.yaml")
	content := "url: " + s.srv.URL + "\nuser: admin\npassword: secret\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	configPath = path
	t.Cleanup(func() { configPath = "" })
}

func writeDataFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
