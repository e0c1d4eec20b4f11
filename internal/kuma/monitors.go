// ABOUTME: Monitor workflow orchestration
// ABOUTME: Get-or-create, delete, list, and bulk apply against the remote server

package kuma

import (
	"context"
	"fmt"
)

// DefaultGroup is the reserved bulk-input group name for monitors that
// belong to no group.
const DefaultGroup = "default"

// MonitorInfo identifies a monitor after an ensure operation.
type MonitorInfo struct {
	Name string
	ID   int64
}

// MonitorGroup is one named group of monitor specs from a bulk-input
// document, in document order.
type MonitorGroup struct {
	Name     string
	Monitors []MonitorSpec
}

// ApplyResult records the outcome of one entity in a bulk apply. Failures
// are recorded, not propagated, so independent siblings still run.
type ApplyResult struct {
	Group   string
	Name    string
	ID      int64
	Created bool
	Skipped bool
	Err     error
}

// EnsureMonitorGroup returns the id of the named group monitor, creating
// it if it does not exist. Creation waits for the refreshed monitor list
// broadcast before returning.
func (c *Client) EnsureMonitorGroup(ctx context.Context, name string) (MonitorInfo, bool, error) {
	existing, err := c.ResolveMonitorByName(ctx, name)
	if err != nil {
		return MonitorInfo{}, false, err
	}
	if existing.Exists {
		return MonitorInfo{Name: name, ID: existing.ID}, false, nil
	}

	spec := MonitorSpec{Type: TypeGroup, Name: name}
	return c.addMonitor(ctx, &spec)
}

// EnsureMonitor returns the id of the named monitor process, creating it
// if it does not exist. Required fields are validated before any remote
// call is issued.
func (c *Client) EnsureMonitor(ctx context.Context, spec *MonitorSpec) (MonitorInfo, bool, error) {
	existing, err := c.ResolveMonitorByName(ctx, spec.Name)
	if err != nil {
		return MonitorInfo{}, false, err
	}
	if existing.Exists {
		return MonitorInfo{Name: spec.Name, ID: existing.ID}, false, nil
	}

	if missing := spec.MissingFields(); len(missing) > 0 {
		return MonitorInfo{}, false, &ValidationError{Entity: spec.Name, Missing: missing}
	}
	return c.addMonitor(ctx, spec)
}

func (c *Client) addMonitor(ctx context.Context, spec *MonitorSpec) (MonitorInfo, bool, error) {
	resp, err := c.awaitRefresh(ctx, EventMonitorList, func() (Response, error) {
		return c.Call(ctx, "add", spec.Payload())
	})
	if err != nil {
		return MonitorInfo{}, false, err
	}

	ack, ok := resp.Ack()
	if !ok {
		return MonitorInfo{}, false, fmt.Errorf("unexpected 'add' response for '%s'", spec.Name)
	}
	if !ack.OK {
		return MonitorInfo{}, false, remoteErr("add", ack)
	}
	id, _ := ack.Int("monitorID")
	return MonitorInfo{Name: spec.Name, ID: id}, true, nil
}

// DeleteMonitorByName deletes the named monitor. A monitor that does not
// exist is a skip, not an error, and issues no delete call.
func (c *Client) DeleteMonitorByName(ctx context.Context, name string) (bool, error) {
	existing, err := c.ResolveMonitorByName(ctx, name)
	if err != nil {
		return false, err
	}
	return c.deleteResolved(ctx, existing)
}

// DeleteMonitorByID deletes the monitor with the given id, with the same
// skip semantics as deletion by name.
func (c *Client) DeleteMonitorByID(ctx context.Context, id int64) (bool, error) {
	existing, err := c.ResolveMonitorByID(ctx, id)
	if err != nil {
		return false, err
	}
	return c.deleteResolved(ctx, existing)
}

func (c *Client) deleteResolved(ctx context.Context, info EntityInfo) (bool, error) {
	if !info.Exists {
		return true, nil
	}
	resp, err := c.Call(ctx, "deleteMonitor", info.ID)
	if err != nil {
		return false, err
	}
	ack, ok := resp.Ack()
	if !ok {
		return false, fmt.Errorf("unexpected 'deleteMonitor' response for '%s'", info.Name)
	}
	if !ack.OK {
		return false, remoteErr("deleteMonitor", ack)
	}
	return false, nil
}

// Monitors returns the current monitor snapshot, sorted by id.
func (c *Client) Monitors(ctx context.Context) ([]Monitor, error) {
	return c.monitorSnapshot(ctx)
}

// ApplyMonitors processes bulk-input groups sequentially. Each group's
// monitors get the group's id as parent, except the reserved default
// group whose monitors stay ungrouped. One entity's failure is recorded
// and does not stop independent siblings; a failed group creation fails
// the monitors that structurally depend on it.
func (c *Client) ApplyMonitors(ctx context.Context, groups []MonitorGroup) []ApplyResult {
	var results []ApplyResult

	for _, group := range groups {
		var parent *int64

		if group.Name != DefaultGroup {
			info, created, err := c.EnsureMonitorGroup(ctx, group.Name)
			results = append(results, ApplyResult{
				Group:   group.Name,
				Name:    group.Name,
				ID:      info.ID,
				Created: created,
				Err:     err,
			})
			if err != nil {
				// Members cannot be parented to a group that failed.
				for _, spec := range group.Monitors {
					results = append(results, ApplyResult{
						Group: group.Name,
						Name:  spec.Name,
						Err:   fmt.Errorf("group '%s' unavailable: %w", group.Name, err),
					})
				}
				continue
			}
			id := info.ID
			parent = &id
		}

		for _, spec := range group.Monitors {
			spec := spec
			spec.Parent = parent
			info, created, err := c.EnsureMonitor(ctx, &spec)
			results = append(results, ApplyResult{
				Group:   group.Name,
				Name:    spec.Name,
				ID:      info.ID,
				Created: created,
				Err:     err,
			})
		}
	}
	return results
}

// DeleteMonitors deletes every monitor named in the bulk-input groups,
// then the groups themselves. Failures are recorded per entity.
func (c *Client) DeleteMonitors(ctx context.Context, groups []MonitorGroup) []ApplyResult {
	var results []ApplyResult

	for _, group := range groups {
		for _, spec := range group.Monitors {
			skipped, err := c.DeleteMonitorByName(ctx, spec.Name)
			results = append(results, ApplyResult{
				Group:   group.Name,
				Name:    spec.Name,
				Skipped: skipped,
				Err:     err,
			})
		}
		if group.Name == DefaultGroup {
			continue
		}
		skipped, err := c.DeleteMonitorByName(ctx, group.Name)
		results = append(results, ApplyResult{
			Group:   group.Name,
			Name:    group.Name,
			Skipped: skipped,
			Err:     err,
		})
	}
	return results
}
