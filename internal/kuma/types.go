// ABOUTME: Remote entity types pushed by the monitoring server
// ABOUTME: Monitors, notification providers, and status pages as they appear on the wire

package kuma

import (
	"encoding/json"
	"fmt"
)

// Monitor is a server-side health check process or an organizational
// group of such processes. The server assigns the id; the name is treated
// as a practical lookup key even though uniqueness is not enforced.
type Monitor struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Type     MonitorType `json:"type"`
	Parent   *int64      `json:"parent"`
	Active   bool        `json:"active"`
	Interval int         `json:"interval"`
	URL      string      `json:"url,omitempty"`
	Hostname string      `json:"hostname,omitempty"`
	Port     int         `json:"port,omitempty"`
	Keyword  string      `json:"keyword,omitempty"`
}

// IsGroup reports whether the monitor is an organizational group rather
// than a health-check process.
func (m Monitor) IsGroup() bool {
	return m.Type == TypeGroup
}

// Notification is a configured outbound alert channel. Provider-specific
// settings arrive as an embedded JSON document in Config and need a
// secondary decode to flatten.
type Notification struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Active        bool   `json:"active"`
	IsDefault     bool   `json:"isDefault"`
	ApplyExisting bool   `json:"applyExisting"`
	Config        string `json:"config"`
}

// Flatten merges the embedded provider config into one flat field map.
// The provider type lives inside the embedded document.
func (n Notification) Flatten() (map[string]any, error) {
	flat := map[string]any{
		"id":            n.ID,
		"name":          n.Name,
		"active":        n.Active,
		"isDefault":     n.IsDefault,
		"applyExisting": n.ApplyExisting,
	}
	if n.Config == "" {
		return flat, nil
	}
	var config map[string]any
	if err := json.Unmarshal([]byte(n.Config), &config); err != nil {
		return nil, fmt.Errorf("decoding config for notification '%s': %w", n.Name, err)
	}
	for key, value := range config {
		flat[key] = value
	}
	return flat, nil
}

// Type returns the provider type from the embedded config document.
func (n Notification) Type() string {
	if n.Config == "" {
		return ""
	}
	var config struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(n.Config), &config); err != nil {
		return ""
	}
	return config.Type
}

// StatusPage is a public-facing page aggregating monitor states. The slug
// is the globally unique lookup key for most operations, not the id.
type StatusPage struct {
	ID          int64    `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Theme       string   `json:"theme,omitempty"`
	Published   bool     `json:"published"`
	Icon        string   `json:"icon,omitempty"`
	DomainNames []string `json:"domainNameList,omitempty"`
}

// MonitorRef references a monitor by id inside a status page public group.
type MonitorRef struct {
	ID int64 `json:"id"`
}

// PublicGroup is a named sub-grouping of monitors on a status page.
type PublicGroup struct {
	Name     string       `json:"name"`
	Weight   int          `json:"weight"`
	Monitors []MonitorRef `json:"monitorList,omitempty"`
}
