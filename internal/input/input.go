// ABOUTME: Bulk-input YAML documents for monitors, notifications, and status pages
// ABOUTME: Decodes documents into the entity-description shapes the orchestrators consume

package input

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kumactl/kumactl/internal/kuma"
)

// Document top-level keys.
const (
	KeyMonitors      = "monitors"
	KeyNotifications = "notifications"
	KeyStatusPages   = "status_pages"
)

// MonitorsDoc groups monitor specs under named groups, preserving the
// document order of the groups. The reserved group name "default" holds
// ungrouped monitors.
type MonitorsDoc struct {
	Groups []kuma.MonitorGroup
}

// UnmarshalYAML decodes the `monitors:` mapping keeping group order,
// which a plain map would lose.
func (d *MonitorsDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("'monitors' must be a mapping of group name to monitor list")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		var specs []kuma.MonitorSpec
		if err := valueNode.Decode(&specs); err != nil {
			return fmt.Errorf("group '%s': %w", keyNode.Value, err)
		}
		d.Groups = append(d.Groups, kuma.MonitorGroup{Name: keyNode.Value, Monitors: specs})
	}
	return nil
}

// LoadMonitors reads one bulk monitor document.
func LoadMonitors(path string) ([]kuma.MonitorGroup, error) {
	var doc struct {
		Monitors MonitorsDoc `yaml:"monitors"`
	}
	if err := loadYAML(path, &doc); err != nil {
		return nil, err
	}
	return doc.Monitors.Groups, nil
}

// LoadNotifications reads one bulk notification document. Each list item
// is a single-key mapping of provider name to its flat field set.
func LoadNotifications(path string) ([]kuma.NotificationSpec, error) {
	var doc struct {
		Notifications []map[string]map[string]any `yaml:"notifications"`
	}
	if err := loadYAML(path, &doc); err != nil {
		return nil, err
	}

	var specs []kuma.NotificationSpec
	for _, item := range doc.Notifications {
		for provider, fields := range item {
			specs = append(specs, kuma.NotificationSpec{
				Provider: strings.ToLower(provider),
				Fields:   fields,
			})
		}
	}
	return specs, nil
}

// LoadStatusPages reads one bulk status page document.
func LoadStatusPages(path string) ([]kuma.StatusPageSpec, error) {
	var doc struct {
		StatusPages []kuma.StatusPageSpec `yaml:"status_pages"`
	}
	if err := loadYAML(path, &doc); err != nil {
		return nil, err
	}
	return doc.StatusPages, nil
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// CollectFiles expands a data path into the sorted list of YAML files
// carrying the expected top-level key. A file path must carry the key; a
// directory is scanned one level deep, silently skipping files that do
// not parse as YAML or lack the key.
func CollectFiles(dataPath, key string) ([]string, error) {
	info, err := os.Stat(dataPath)
	if err != nil {
		return nil, fmt.Errorf("data path %s: %w", dataPath, err)
	}

	if !info.IsDir() {
		ok, err := hasTopLevelKey(dataPath, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%s is missing the '%s' key", dataPath, key)
		}
		return []string{dataPath}, nil
	}

	entries, err := os.ReadDir(dataPath)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dataPath, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dataPath, entry.Name())
		if ok, err := hasTopLevelKey(path, key); err == nil && ok {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

func hasTopLevelKey(path, key string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}
	_, ok := doc[key]
	return ok, nil
}
