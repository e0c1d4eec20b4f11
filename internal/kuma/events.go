// ABOUTME: Event kinds, the per-kind push snapshot cache, and the wait protocol
// ABOUTME: Single writer (the connection read pump), many readers (orchestrators)

package kuma

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// EventKind names a server push event. The server broadcasts full
// replacement snapshots for the list kinds, never deltas.
type EventKind string

const (
	EventAPIKeyList             EventKind = "apiKeyList"
	EventAutoLogin              EventKind = "autoLogin"
	EventAvgPing                EventKind = "avgPing"
	EventCertInfo               EventKind = "certInfo"
	EventConnect                EventKind = "connect"
	EventDisconnect             EventKind = "disconnect"
	EventDockerHostList         EventKind = "dockerHostList"
	EventHeartbeat              EventKind = "heartbeat"
	EventHeartbeatList          EventKind = "heartbeatList"
	EventImportantHeartbeatList EventKind = "importantHeartbeatList"
	EventInfo                   EventKind = "info"
	EventInitServerTimezone     EventKind = "initServerTimezone"
	EventMaintenanceList        EventKind = "maintenanceList"
	EventMonitorList            EventKind = "monitorList"
	EventNotificationList       EventKind = "notificationList"
	EventProxyList              EventKind = "proxyList"
	EventStatusPageList         EventKind = "statusPageList"
	EventUptime                 EventKind = "uptime"
)

// cacheEntry holds the last payload pushed for one event kind. The
// generation counter distinguishes "a fresh push arrived" from "the old
// snapshot is still current" without clearing data readers may want.
type cacheEntry struct {
	payload    json.RawMessage
	generation uint64
}

// eventCache maps event kinds to their most recent pushed payload.
// Absence from the map is the "never received" sentinel; an empty pushed
// list is a present, legitimate value.
type eventCache struct {
	mu      sync.RWMutex
	entries map[EventKind]cacheEntry
	waiters map[EventKind][]chan struct{}
}

func newEventCache() *eventCache {
	return &eventCache{
		entries: make(map[EventKind]cacheEntry),
		waiters: make(map[EventKind][]chan struct{}),
	}
}

// put overwrites the entry for kind and wakes anyone waiting on it.
// Called only from the connection's delivery path. Last write wins.
func (c *eventCache) put(kind EventKind, payload json.RawMessage) {
	c.mu.Lock()
	entry := c.entries[kind]
	entry.payload = payload
	entry.generation++
	c.entries[kind] = entry
	woken := c.waiters[kind]
	delete(c.waiters, kind)
	c.mu.Unlock()

	for _, ch := range woken {
		close(ch)
	}
}

// read returns the current payload for kind and whether any push has
// arrived for it yet.
func (c *eventCache) read(kind EventKind) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[kind]
	return entry.payload, ok
}

func (c *eventCache) generation(kind EventKind) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[kind].generation
}

// wait registers for a notification that fires on the next put for kind.
// The returned channel is closed exactly once.
func (c *eventCache) wait(kind EventKind) <-chan struct{} {
	ch := make(chan struct{})
	c.mu.Lock()
	c.waiters[kind] = append(c.waiters[kind], ch)
	c.mu.Unlock()
	return ch
}

// awaitRefresh runs action and then blocks until the server pushes a
// snapshot for kind that is newer than the one cached before action began.
// The call acknowledgement and the broadcast can arrive in either order;
// both are required before post-mutation state can be trusted.
func (c *Client) awaitRefresh(ctx context.Context, kind EventKind, action func() (Response, error)) (Response, error) {
	before := c.cache.generation(kind)

	resp, err := action()
	if err != nil {
		return resp, err
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for {
		if c.cache.generation(kind) > before {
			return resp, nil
		}
		ch := c.cache.wait(kind)
		// A push may have landed between the check and the registration.
		if c.cache.generation(kind) > before {
			return resp, nil
		}
		select {
		case <-ch:
		case <-timer.C:
			return resp, fmt.Errorf("waiting for '%s' refresh: %w", kind, ErrTimeout)
		case <-ctx.Done():
			return resp, ctx.Err()
		}
	}
}

// getEventData blocks until at least one push for kind has been received
// and returns its payload. An empty-but-present snapshot returns
// immediately; only "never received" waits.
func (c *Client) getEventData(ctx context.Context, kind EventKind) (json.RawMessage, error) {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for {
		if payload, ok := c.cache.read(kind); ok {
			return payload, nil
		}
		ch := c.cache.wait(kind)
		if payload, ok := c.cache.read(kind); ok {
			return payload, nil
		}
		select {
		case <-ch:
		case <-timer.C:
			return nil, fmt.Errorf("waiting for '%s' data: %w", kind, ErrTimeout)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
