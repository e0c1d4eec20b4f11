// ABOUTME: Tests for status page orchestration
// ABOUTME: Slug probing, two-phase create, configuration save, and delete skip

package kuma

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

// statusPageBackend mirrors the server's status page table plus the
// public HTTP document served per slug.
type statusPageBackend struct {
	s *fakeServer

	mu       sync.Mutex
	nextID   int64
	bySlug   map[string]StatusPage
	lastSave []json.RawMessage
}

func newStatusPageBackend(t *testing.T, seed ...StatusPage) (*fakeServer, *statusPageBackend) {
	s := newFakeServer(t)
	b := &statusPageBackend{s: s, bySlug: make(map[string]StatusPage)}
	for _, p := range seed {
		b.bySlug[p.Slug] = p
		if p.ID > b.nextID {
			b.nextID = p.ID
		}
	}

	s.onConnect = func(s *fakeServer) {
		s.push(EventStatusPageList, b.snapshot())
		s.push(EventMonitorList, map[string]Monitor{})
	}
	s.handle("getStatusPage", func(data json.RawMessage) any {
		var slug string
		if err := json.Unmarshal(data, &slug); err != nil {
			return map[string]any{"ok": false, "msg": err.Error()}
		}
		b.mu.Lock()
		page, exists := b.bySlug[slug]
		b.mu.Unlock()
		if !exists {
			return map[string]any{"ok": false, "msg": "not found"}
		}
		return map[string]any{"ok": true, "config": page}
	})
	s.handle("addStatusPage", func(data json.RawMessage) any {
		var args []string
		if err := json.Unmarshal(data, &args); err != nil || len(args) != 2 {
			return map[string]any{"ok": false, "msg": "bad arguments"}
		}
		title, slug := args[0], args[1]
		b.mu.Lock()
		b.nextID++
		b.bySlug[slug] = StatusPage{ID: b.nextID, Slug: slug, Title: title, Theme: "auto", Published: true}
		b.mu.Unlock()
		s.push(EventStatusPageList, b.snapshot())
		return map[string]any{"ok": true, "msg": "OK!"}
	})
	s.handle("saveStatusPage", func(data json.RawMessage) any {
		var args []json.RawMessage
		if err := json.Unmarshal(data, &args); err != nil || len(args) != 4 {
			return map[string]any{"ok": false, "msg": "bad arguments"}
		}
		b.mu.Lock()
		b.lastSave = args
		b.mu.Unlock()
		// No list broadcast for saves.
		return map[string]any{"ok": true}
	})
	s.handle("deleteStatusPage", func(data json.RawMessage) any {
		var slug string
		if err := json.Unmarshal(data, &slug); err != nil {
			return map[string]any{"ok": false, "msg": err.Error()}
		}
		b.mu.Lock()
		delete(b.bySlug, slug)
		b.mu.Unlock()
		return map[string]any{"ok": true}
	})
	return s, b
}

func (b *statusPageBackend) snapshot() map[string]StatusPage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]StatusPage, len(b.bySlug))
	for slug, p := range b.bySlug {
		out[slug] = p
	}
	return out
}

func (b *statusPageBackend) savedArgs() []json.RawMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSave
}

func TestGetStatusPage_FreeSlugIsFindingNotError(t *testing.T) {
	s, _ := newStatusPageBackend(t)
	client := connectClient(t, s)

	page, exists, err := client.GetStatusPage(context.Background(), "unused")
	if err != nil {
		t.Fatalf("a free slug must not be an error, got %v", err)
	}
	if exists || page != nil {
		t.Errorf("expected no page, got exists=%v page=%+v", exists, page)
	}
}

func TestEnsureStatusPage_CreatesAndResolvesID(t *testing.T) {
	s, _ := newStatusPageBackend(t)
	client := connectClient(t, s)

	info, created, err := client.EnsureStatusPage(context.Background(), "Public Status", "public")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created=true")
	}
	if !info.Exists || info.ID != 1 {
		t.Errorf("expected resolved id 1, got %+v", info)
	}
}

func TestEnsureStatusPage_ExistingSlugSkips(t *testing.T) {
	s, _ := newStatusPageBackend(t, StatusPage{ID: 3, Slug: "public", Title: "Existing"})
	client := connectClient(t, s)

	info, created, err := client.EnsureStatusPage(context.Background(), "Public Status", "public")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected created=false for taken slug")
	}
	if info.ID != 3 {
		t.Errorf("expected existing id 3, got %d", info.ID)
	}
	if got := s.callCount("addStatusPage"); got != 0 {
		t.Errorf("expected no add call, got %d", got)
	}
}

func TestEnsureStatusPage_MissingTitleOrSlug(t *testing.T) {
	s, _ := newStatusPageBackend(t)
	client := connectClient(t, s)

	_, _, err := client.EnsureStatusPage(context.Background(), "", "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Missing) != 2 {
		t.Errorf("expected both slug and title reported, got %v", verr.Missing)
	}
	if got := s.callCount("getStatusPage"); got != 0 {
		t.Errorf("expected no remote call on validation failure, got %d", got)
	}
}

func TestSaveStatusPage_ResolvesMonitorNamesAndDefaults(t *testing.T) {
	s, b := newStatusPageBackend(t, StatusPage{ID: 3, Slug: "public", Title: "Public"})
	s.onConnect = func(s *fakeServer) {
		s.push(EventStatusPageList, b.snapshot())
		s.push(EventMonitorList, map[string]Monitor{
			"11": {ID: 11, Name: "web", Type: TypeHTTP},
		})
	}
	client := connectClient(t, s)

	spec := StatusPageSpec{
		Title: "Public",
		Slug:  "public",
		PublicGroups: []PublicGroupSpec{
			{Name: "Services", Monitors: []string{"web", "does-not-exist"}},
		},
	}
	if err := client.SaveStatusPage(context.Background(), 3, &spec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	args := b.savedArgs()
	if args == nil {
		t.Fatal("expected save call captured")
	}

	var config map[string]any
	if err := json.Unmarshal(args[1], &config); err != nil {
		t.Fatalf("decoding saved config: %v", err)
	}
	if config["theme"] != "auto" || config["published"] != true || config["icon"] != "/icon.svg" {
		t.Errorf("expected defaulted config, got theme=%v published=%v icon=%v",
			config["theme"], config["published"], config["icon"])
	}

	var groups []PublicGroup
	if err := json.Unmarshal(args[3], &groups); err != nil {
		t.Fatalf("decoding saved groups: %v", err)
	}
	if len(groups) != 1 || groups[0].Weight != 1 {
		t.Fatalf("expected one group with weight 1, got %+v", groups)
	}
	// Unknown monitor names are left out, not fatal.
	if len(groups[0].Monitors) != 1 || groups[0].Monitors[0].ID != 11 {
		t.Errorf("expected only the resolved monitor id, got %+v", groups[0].Monitors)
	}
}

func TestSaveStatusPage_DoesNotWaitForBroadcast(t *testing.T) {
	s, _ := newStatusPageBackend(t, StatusPage{ID: 3, Slug: "public", Title: "Public"})

	client, err := Connect(context.Background(), s.URL(), nil, WithTimeout(300*time.Millisecond))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Disconnect()
	if _, err := client.Login(context.Background(), "admin", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// The fake never broadcasts after a save; the call must still finish
	// well inside the wait bound.
	spec := StatusPageSpec{Title: "Public", Slug: "public"}
	if err := client.SaveStatusPage(context.Background(), 3, &spec); err != nil {
		t.Fatalf("save must not wait for a list broadcast: %v", err)
	}
}

func TestApplyStatusPages_SaveFailureLeavesReservation(t *testing.T) {
	s, b := newStatusPageBackend(t)
	s.handle("saveStatusPage", func(json.RawMessage) any {
		return map[string]any{"ok": false, "msg": "invalid config"}
	})
	client := connectClient(t, s)

	results := client.ApplyStatusPages(context.Background(), []StatusPageSpec{
		{Title: "Public", Slug: "public"},
	}, true)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Err == nil {
		t.Error("expected save failure reported")
	}
	if !results[0].Created {
		t.Error("expected phase-one creation recorded despite save failure")
	}
	b.mu.Lock()
	_, stillThere := b.bySlug["public"]
	b.mu.Unlock()
	if !stillThere {
		t.Error("expected the reserved page left in place, not rolled back")
	}
	if got := s.callCount("deleteStatusPage"); got != 0 {
		t.Errorf("expected no compensating delete, got %d", got)
	}
}

func TestDeleteStatusPage_AbsentSkipsWithoutCall(t *testing.T) {
	s, _ := newStatusPageBackend(t)
	client := connectClient(t, s)

	skipped, err := client.DeleteStatusPage(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !skipped {
		t.Error("expected skip for unknown slug")
	}
	if got := s.callCount("deleteStatusPage"); got != 0 {
		t.Errorf("expected no delete call, got %d", got)
	}
}

func TestStatusPageDetails_MergesPublicDocument(t *testing.T) {
	s, _ := newStatusPageBackend(t, StatusPage{ID: 3, Slug: "public", Title: "Public", Theme: "dark", Published: true})
	s.servePublicPage("public", map[string]any{
		"config":          map[string]any{"footerText": "All systems go"},
		"incident":        map[string]any{"title": "Degraded"},
		"publicGroupList": []any{},
		"maintenanceList": []any{},
	})
	client := connectClient(t, s)

	details, found, err := client.StatusPageDetails(context.Background(), "public")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected page to be found")
	}
	if details["slug"] != "public" || details["theme"] != "dark" {
		t.Errorf("expected session view merged, got %v", details)
	}
	if details["footerText"] != "All systems go" {
		t.Errorf("expected public config merged, got %v", details["footerText"])
	}
	incident, _ := details["incident"].(map[string]any)
	if incident["title"] != "Degraded" {
		t.Errorf("expected incident carried over, got %v", details["incident"])
	}
}

func TestStatusPageDetails_UnknownSlugNotFound(t *testing.T) {
	s, _ := newStatusPageBackend(t)
	client := connectClient(t, s)

	details, found, err := client.StatusPageDetails(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected page to be reported as not found")
	}
	if details != nil {
		t.Errorf("expected nil details for unknown slug, got %v", details)
	}
}

func TestStatusPages_SortedSnapshot(t *testing.T) {
	s, _ := newStatusPageBackend(t,
		StatusPage{ID: 5, Slug: "beta", Title: "Beta"},
		StatusPage{ID: 2, Slug: "alpha", Title: "Alpha"},
	)
	client := connectClient(t, s)

	pages, err := client.StatusPages(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 2 || pages[0].ID != 2 || pages[1].ID != 5 {
		t.Errorf("expected id-sorted pages, got %+v", pages)
	}
}
