// ABOUTME: Tests for notification provider orchestration
// ABOUTME: Pre-call validation, get-or-create, and refresh-gated deletion

package kuma

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

// notificationBackend mirrors the server's notification table. Creation
// and deletion both broadcast the refreshed list.
type notificationBackend struct {
	mu     sync.Mutex
	nextID int64
	list   []Notification
}

func newNotificationBackend(t *testing.T, seed ...Notification) (*fakeServer, *notificationBackend) {
	s := newFakeServer(t)
	b := &notificationBackend{}
	for _, n := range seed {
		b.list = append(b.list, n)
		if n.ID > b.nextID {
			b.nextID = n.ID
		}
	}

	s.onConnect = func(s *fakeServer) {
		s.push(EventNotificationList, b.snapshot())
	}
	s.handle("addNotification", func(data json.RawMessage) any {
		var args []json.RawMessage
		if err := json.Unmarshal(data, &args); err != nil || len(args) != 2 {
			return map[string]any{"ok": false, "msg": "bad arguments"}
		}
		if string(args[1]) != "null" {
			return map[string]any{"ok": false, "msg": "expected nil id for create"}
		}
		var payload map[string]any
		if err := json.Unmarshal(args[0], &payload); err != nil {
			return map[string]any{"ok": false, "msg": err.Error()}
		}
		name, _ := payload["name"].(string)
		config, _ := json.Marshal(payload)

		b.mu.Lock()
		b.nextID++
		b.list = append(b.list, Notification{ID: b.nextID, Name: name, Active: true, Config: string(config)})
		id := b.nextID
		b.mu.Unlock()
		s.push(EventNotificationList, b.snapshot())
		return map[string]any{"ok": true, "msg": "Saved.", "id": id}
	})
	s.handle("deleteNotification", func(data json.RawMessage) any {
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return map[string]any{"ok": false, "msg": err.Error()}
		}
		b.mu.Lock()
		kept := b.list[:0]
		for _, n := range b.list {
			if n.ID != id {
				kept = append(kept, n)
			}
		}
		b.list = kept
		b.mu.Unlock()
		s.push(EventNotificationList, b.snapshot())
		return map[string]any{"ok": true, "msg": "Deleted."}
	})
	return s, b
}

func (b *notificationBackend) snapshot() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notification, len(b.list))
	copy(out, b.list)
	return out
}

func TestEnsureNotification_ValidationBeforeAnyCall(t *testing.T) {
	s, _ := newNotificationBackend(t)
	client := connectClient(t, s)

	spec := NotificationSpec{
		Provider: "webhook",
		Fields:   map[string]any{"name": "hook"},
	}
	_, _, err := client.EnsureNotification(context.Background(), spec)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"applyExisting", "isDefault", "webhookContentType", "webhookURL"}
	if !reflect.DeepEqual(verr.Missing, want) {
		t.Errorf("expected missing fields %v, got %v", want, verr.Missing)
	}
	if got := s.callCount("addNotification"); got != 0 {
		t.Errorf("expected no remote call on validation failure, got %d", got)
	}
}

func TestEnsureNotification_UnknownProvider(t *testing.T) {
	s, _ := newNotificationBackend(t)
	client := connectClient(t, s)

	spec := NotificationSpec{
		Provider: "carrier-pigeon",
		Fields:   map[string]any{"name": "birds", "isDefault": false, "applyExisting": false},
	}
	_, _, err := client.EnsureNotification(context.Background(), spec)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !reflect.DeepEqual(verr.Missing, []string{"type"}) {
		t.Errorf("unknown provider should report 'type' missing, got %v", verr.Missing)
	}
}

func TestEnsureNotification_CreatesWithWireType(t *testing.T) {
	s, b := newNotificationBackend(t)
	client := connectClient(t, s)

	spec := NotificationSpec{
		Provider: "opsgenie",
		Fields: map[string]any{
			"name":           "oncall",
			"isDefault":      true,
			"applyExisting":  true,
			"opsgenieRegion": "eu",
			"opsgenieApiKey": "key-123",
		},
	}
	info, created, err := client.EnsureNotification(context.Background(), spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created || info.ID != 1 {
		t.Errorf("expected creation with id 1, got created=%v id=%d", created, info.ID)
	}

	stored := b.snapshot()[0]
	flat, err := stored.Flatten()
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	// Provider keys map to a canonical wire type, not the input key.
	if flat["type"] != "Opsgenie" {
		t.Errorf("expected wire type Opsgenie, got %v", flat["type"])
	}
}

func TestEnsureNotification_ExistingSkips(t *testing.T) {
	s, _ := newNotificationBackend(t, Notification{ID: 4, Name: "oncall", Config: `{"type":"slack"}`})
	client := connectClient(t, s)

	spec := NotificationSpec{
		Provider: "slack",
		Fields: map[string]any{
			"name":           "oncall",
			"isDefault":      false,
			"applyExisting":  false,
			"slackwebhookURL": "https://hooks.slack.com/x",
		},
	}
	info, created, err := client.EnsureNotification(context.Background(), spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created || info.ID != 4 {
		t.Errorf("expected existing id 4 without creation, got created=%v id=%d", created, info.ID)
	}
	if got := s.callCount("addNotification"); got != 0 {
		t.Errorf("expected no add call, got %d", got)
	}
}

func TestDeleteNotificationByName_AbsentSkipsWithoutCall(t *testing.T) {
	s, _ := newNotificationBackend(t)
	client := connectClient(t, s)

	skipped, err := client.DeleteNotificationByName(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !skipped {
		t.Error("expected skip for absent provider")
	}
	if got := s.callCount("deleteNotification"); got != 0 {
		t.Errorf("expected no delete call, got %d", got)
	}
}

func TestDeleteNotificationByName_WaitsForRefresh(t *testing.T) {
	s, _ := newNotificationBackend(t, Notification{ID: 4, Name: "oncall", Config: `{"type":"slack"}`})
	// Acknowledge but never broadcast the refreshed list.
	s.handle("deleteNotification", func(json.RawMessage) any {
		return map[string]any{"ok": true}
	})

	client, err := Connect(context.Background(), s.URL(), nil, WithTimeout(200*time.Millisecond))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Disconnect()
	if _, err := client.Login(context.Background(), "admin", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = client.DeleteNotificationByName(context.Background(), "oncall")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout when the list broadcast never arrives, got %v", err)
	}
}

func TestNotificationFlatten(t *testing.T) {
	n := Notification{
		ID:     7,
		Name:   "ops",
		Active: true,
		Config: `{"type":"smtp","smtpHost":"mail.example.com","smtpPort":587}`,
	}
	flat, err := n.Flatten()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flat["smtpHost"] != "mail.example.com" {
		t.Errorf("expected embedded config merged, got %v", flat["smtpHost"])
	}
	if flat["name"] != "ops" {
		t.Errorf("expected common fields kept, got %v", flat["name"])
	}
	if n.Type() != "smtp" {
		t.Errorf("expected provider type smtp, got %q", n.Type())
	}

	bare := Notification{ID: 1, Name: "empty"}
	flat, err = bare.Flatten()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flat) != 5 {
		t.Errorf("expected only common fields for empty config, got %v", flat)
	}
}
