// ABOUTME: Entity resolver over the cached server-pushed lists
// ABOUTME: Maps human-supplied names or numeric ids to remote entity ids

package kuma

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// EntityInfo is the result of resolving a name or id against a cached
// list snapshot. Exists=false is a finding, not an error; the caller
// decides whether non-existence is fatal.
type EntityInfo struct {
	Name   string
	ID     int64
	Exists bool
}

// monitorSnapshot decodes the cached monitor list. The server pushes the
// monitor list as a map of id string to entity.
func (c *Client) monitorSnapshot(ctx context.Context) ([]Monitor, error) {
	raw, err := c.getEventData(ctx, EventMonitorList)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Monitor)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &byID); err != nil {
			return nil, fmt.Errorf("decoding monitor list: %w", err)
		}
	}
	monitors := make([]Monitor, 0, len(byID))
	for _, m := range byID {
		monitors = append(monitors, m)
	}
	sort.Slice(monitors, func(i, j int) bool { return monitors[i].ID < monitors[j].ID })
	return monitors, nil
}

// notificationSnapshot decodes the cached notification list, pushed as an
// array of entities.
func (c *Client) notificationSnapshot(ctx context.Context) ([]Notification, error) {
	raw, err := c.getEventData(ctx, EventNotificationList)
	if err != nil {
		return nil, err
	}
	var notifications []Notification
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &notifications); err != nil {
			return nil, fmt.Errorf("decoding notification list: %w", err)
		}
	}
	return notifications, nil
}

// statusPageSnapshot decodes the cached status page list, pushed as a map
// of slug to entity.
func (c *Client) statusPageSnapshot(ctx context.Context) ([]StatusPage, error) {
	raw, err := c.getEventData(ctx, EventStatusPageList)
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]StatusPage)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &bySlug); err != nil {
			return nil, fmt.Errorf("decoding status page list: %w", err)
		}
	}
	pages := make([]StatusPage, 0, len(bySlug))
	for _, p := range bySlug {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].ID < pages[j].ID })
	return pages, nil
}

// ResolveMonitorByName scans the current monitor snapshot for a name
// match. First match wins; names are assumed practically unique.
func (c *Client) ResolveMonitorByName(ctx context.Context, name string) (EntityInfo, error) {
	monitors, err := c.monitorSnapshot(ctx)
	if err != nil {
		return EntityInfo{}, err
	}
	for _, m := range monitors {
		if m.Name == name {
			return EntityInfo{Name: m.Name, ID: m.ID, Exists: true}, nil
		}
	}
	return EntityInfo{Name: name}, nil
}

// ResolveMonitorByID scans the current monitor snapshot for an id match.
func (c *Client) ResolveMonitorByID(ctx context.Context, id int64) (EntityInfo, error) {
	monitors, err := c.monitorSnapshot(ctx)
	if err != nil {
		return EntityInfo{}, err
	}
	for _, m := range monitors {
		if m.ID == id {
			return EntityInfo{Name: m.Name, ID: m.ID, Exists: true}, nil
		}
	}
	return EntityInfo{ID: id}, nil
}

// ResolveNotificationByName scans the current notification snapshot for a
// name match.
func (c *Client) ResolveNotificationByName(ctx context.Context, name string) (EntityInfo, error) {
	notifications, err := c.notificationSnapshot(ctx)
	if err != nil {
		return EntityInfo{}, err
	}
	for _, n := range notifications {
		if n.Name == name {
			return EntityInfo{Name: n.Name, ID: n.ID, Exists: true}, nil
		}
	}
	return EntityInfo{Name: name}, nil
}

// ResolveStatusPageBySlug scans the current status page snapshot for a
// slug match.
func (c *Client) ResolveStatusPageBySlug(ctx context.Context, slug string) (EntityInfo, error) {
	pages, err := c.statusPageSnapshot(ctx)
	if err != nil {
		return EntityInfo{}, err
	}
	for _, p := range pages {
		if p.Slug == slug {
			return EntityInfo{Name: p.Slug, ID: p.ID, Exists: true}, nil
		}
	}
	return EntityInfo{Name: slug}, nil
}
