// ABOUTME: Notification provider workflow orchestration
// ABOUTME: Validate, get-or-create, delete, and list outbound alert channels

package kuma

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// NotificationSpec describes one notification provider to create: the
// provider key (e.g. "slack") and its flat field set from the bulk-input
// document. The common fields name/isDefault/applyExisting live in Fields
// alongside the provider-specific ones.
type NotificationSpec struct {
	Provider string
	Fields   map[string]any
}

// Name returns the notification's display name from the field set.
func (s NotificationSpec) Name() string {
	name, _ := s.Fields["name"].(string)
	return name
}

// commonNotificationFields must be present for every provider.
var commonNotificationFields = []string{"name", "isDefault", "applyExisting"}

// missingNotificationFields validates the spec against the provider's
// field table. An unknown provider reports "type" as missing.
func missingNotificationFields(spec NotificationSpec) []string {
	entry, known := notificationProviders[strings.ToLower(spec.Provider)]
	if !known {
		return []string{"type"}
	}

	var missing []string
	for _, field := range commonNotificationFields {
		if _, present := spec.Fields[field]; !present {
			missing = append(missing, field)
		}
	}
	for _, field := range entry.fields {
		if !field.Required {
			continue
		}
		if value, present := spec.Fields[field.Name]; !present || value == nil || value == "" {
			missing = append(missing, field.Name)
		}
	}
	sort.Strings(missing)
	return missing
}

// EnsureNotification returns the id of the named notification provider,
// creating it if absent. Validation happens before any remote call.
func (c *Client) EnsureNotification(ctx context.Context, spec NotificationSpec) (EntityInfo, bool, error) {
	if missing := missingNotificationFields(spec); len(missing) > 0 {
		entity := spec.Name()
		if entity == "" {
			entity = spec.Provider
		}
		return EntityInfo{}, false, &ValidationError{Entity: entity, Missing: missing}
	}

	existing, err := c.ResolveNotificationByName(ctx, spec.Name())
	if err != nil {
		return EntityInfo{}, false, err
	}
	if existing.Exists {
		return existing, false, nil
	}

	payload := make(map[string]any, len(spec.Fields)+1)
	for key, value := range spec.Fields {
		payload[key] = value
	}
	payload["type"] = notificationProviders[strings.ToLower(spec.Provider)].wireType

	resp, err := c.awaitRefresh(ctx, EventNotificationList, func() (Response, error) {
		// The server's addNotification signature is (notification, id);
		// a nil id means create.
		return c.Call(ctx, "addNotification", []any{payload, nil})
	})
	if err != nil {
		return EntityInfo{}, false, err
	}

	ack, ok := resp.Ack()
	if !ok {
		return EntityInfo{}, false, fmt.Errorf("unexpected 'addNotification' response for '%s'", spec.Name())
	}
	if !ack.OK {
		return EntityInfo{}, false, remoteErr("addNotification", ack)
	}
	id, _ := ack.Int("id")
	return EntityInfo{Name: spec.Name(), ID: id, Exists: true}, true, nil
}

// DeleteNotificationByName deletes the named notification provider. An
// absent provider is a skip and issues no delete call. Deletion waits for
// the refreshed notification list broadcast.
func (c *Client) DeleteNotificationByName(ctx context.Context, name string) (bool, error) {
	existing, err := c.ResolveNotificationByName(ctx, name)
	if err != nil {
		return false, err
	}
	if !existing.Exists {
		return true, nil
	}

	resp, err := c.awaitRefresh(ctx, EventNotificationList, func() (Response, error) {
		return c.Call(ctx, "deleteNotification", existing.ID)
	})
	if err != nil {
		return false, err
	}
	ack, ok := resp.Ack()
	if !ok {
		return false, fmt.Errorf("unexpected 'deleteNotification' response for '%s'", name)
	}
	if !ack.OK {
		return false, remoteErr("deleteNotification", ack)
	}
	return false, nil
}

// Notifications returns the current notification snapshot.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	return c.notificationSnapshot(ctx)
}

// ApplyNotifications processes bulk-input notification specs sequentially
// and independently, recording per-entity outcomes.
func (c *Client) ApplyNotifications(ctx context.Context, specs []NotificationSpec) []ApplyResult {
	var results []ApplyResult
	for _, spec := range specs {
		info, created, err := c.EnsureNotification(ctx, spec)
		results = append(results, ApplyResult{
			Name:    spec.Name(),
			ID:      info.ID,
			Created: created,
			Err:     err,
		})
	}
	return results
}

// DeleteNotifications deletes every provider named in the bulk-input
// specs, recording per-entity outcomes.
func (c *Client) DeleteNotifications(ctx context.Context, specs []NotificationSpec) []ApplyResult {
	var results []ApplyResult
	for _, spec := range specs {
		skipped, err := c.DeleteNotificationByName(ctx, spec.Name())
		results = append(results, ApplyResult{
			Name:    spec.Name(),
			Skipped: skipped,
			Err:     err,
		})
	}
	return results
}
