// ABOUTME: Status page workflow orchestration
// ABOUTME: Two-phase create (reserve slug, then save full configuration), delete, list, show

package kuma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// StatusPageSpec describes one status page from a bulk-input document.
// PublicGroups reference monitors by name; they are resolved to ids at
// save time and must already exist on the server.
type StatusPageSpec struct {
	Title                 string            `yaml:"title" json:"title"`
	Slug                  string            `yaml:"slug" json:"slug"`
	Description           string            `yaml:"description,omitempty" json:"description,omitempty"`
	Theme                 string            `yaml:"theme,omitempty" json:"theme,omitempty"`
	Published             *bool             `yaml:"published,omitempty" json:"published,omitempty"`
	ShowTags              bool              `yaml:"showTags,omitempty" json:"showTags,omitempty"`
	DomainNames           []string          `yaml:"domainNameList,omitempty" json:"domainNameList,omitempty"`
	Icon                  string            `yaml:"icon,omitempty" json:"icon,omitempty"`
	FooterText            string            `yaml:"footerText,omitempty" json:"footerText,omitempty"`
	CustomCSS             string            `yaml:"customCSS,omitempty" json:"customCSS,omitempty"`
	GoogleAnalyticsID     string            `yaml:"googleAnalyticsId,omitempty" json:"googleAnalyticsId,omitempty"`
	ShowPoweredBy         bool              `yaml:"showPoweredBy,omitempty" json:"showPoweredBy,omitempty"`
	ShowCertificateExpiry bool              `yaml:"showCertificateExpiry,omitempty" json:"showCertificateExpiry,omitempty"`
	PublicGroups          []PublicGroupSpec `yaml:"publicGroupList,omitempty" json:"publicGroupList,omitempty"`
}

// PublicGroupSpec names the monitors of one public group on the page.
type PublicGroupSpec struct {
	Name     string   `yaml:"name" json:"name"`
	Monitors []string `yaml:"monitorList" json:"monitorList"`
}

// GetStatusPage asks the server for the page with the given slug. A
// negative acknowledgement means the slug is free; that is a finding,
// not an error.
func (c *Client) GetStatusPage(ctx context.Context, slug string) (*StatusPage, bool, error) {
	resp, err := c.Call(ctx, "getStatusPage", slug)
	if err != nil {
		return nil, false, err
	}
	ack, ok := resp.Ack()
	if !ok {
		return nil, false, fmt.Errorf("unexpected 'getStatusPage' response for '%s'", slug)
	}
	if !ack.OK {
		return nil, false, nil
	}

	configRaw, present := ack.Extra["config"]
	if !present {
		return nil, false, fmt.Errorf("'getStatusPage' response for '%s' carries no config", slug)
	}
	var page StatusPage
	if err := json.Unmarshal(configRaw, &page); err != nil {
		return nil, false, fmt.Errorf("decoding status page '%s': %w", slug, err)
	}
	return &page, true, nil
}

// EnsureStatusPage reserves the slug+title pair, creating the page if the
// slug is free. This is phase one of the two-phase create; saving the full
// configuration is a separate step.
func (c *Client) EnsureStatusPage(ctx context.Context, title, slug string) (EntityInfo, bool, error) {
	if title == "" || slug == "" {
		var missing []string
		if slug == "" {
			missing = append(missing, "slug")
		}
		if title == "" {
			missing = append(missing, "title")
		}
		return EntityInfo{}, false, &ValidationError{Entity: slug, Missing: missing}
	}

	page, exists, err := c.GetStatusPage(ctx, slug)
	if err != nil {
		return EntityInfo{}, false, err
	}
	if exists {
		return EntityInfo{Name: slug, ID: page.ID, Exists: true}, false, nil
	}

	resp, err := c.awaitRefresh(ctx, EventStatusPageList, func() (Response, error) {
		return c.Call(ctx, "addStatusPage", []any{title, slug})
	})
	if err != nil {
		return EntityInfo{}, false, err
	}
	ack, ok := resp.Ack()
	if !ok {
		return EntityInfo{}, false, fmt.Errorf("unexpected 'addStatusPage' response for '%s'", slug)
	}
	if !ack.OK {
		return EntityInfo{}, false, remoteErr("addStatusPage", ack)
	}

	created, err := c.ResolveStatusPageBySlug(ctx, slug)
	if err != nil {
		return EntityInfo{}, false, err
	}
	return created, true, nil
}

// SaveStatusPage issues phase two: the full configuration save, with each
// named monitor resolved to its id. The server does not broadcast a list
// event for this call, so there is nothing to wait for beyond the
// acknowledgement. A phase-two failure leaves the phase-one reservation in
// place; the caller is told, not compensated.
func (c *Client) SaveStatusPage(ctx context.Context, id int64, spec *StatusPageSpec) error {
	groups, err := c.resolvePublicGroups(ctx, spec.PublicGroups)
	if err != nil {
		return err
	}

	published := true
	if spec.Published != nil {
		published = *spec.Published
	}
	domainNames := spec.DomainNames
	if domainNames == nil {
		domainNames = []string{}
	}

	config := map[string]any{
		"id":                    id,
		"slug":                  spec.Slug,
		"title":                 spec.Title,
		"description":           strOrNil(spec.Description),
		"domainNameList":        domainNames,
		"icon":                  stringDefault(spec.Icon, "/icon.svg"),
		"theme":                 stringDefault(spec.Theme, "auto"),
		"published":             published,
		"showTags":              spec.ShowTags,
		"showPoweredBy":         spec.ShowPoweredBy,
		"googleAnalyticsId":     strOrNil(spec.GoogleAnalyticsID),
		"customCSS":             spec.CustomCSS,
		"footerText":            strOrNil(spec.FooterText),
		"showCertificateExpiry": spec.ShowCertificateExpiry,
	}

	// saveStatusPage signature: (slug, config, icon, publicGroupList).
	resp, err := c.Call(ctx, "saveStatusPage", []any{
		spec.Slug, config, stringDefault(spec.Icon, "/icon.svg"), groups,
	})
	if err != nil {
		return err
	}
	ack, ok := resp.Ack()
	if !ok {
		return fmt.Errorf("unexpected 'saveStatusPage' response for '%s'", spec.Slug)
	}
	if !ack.OK {
		return remoteErr("saveStatusPage", ack)
	}
	return nil
}

// resolvePublicGroups maps monitor names to id references, preserving
// group order as page weight. Monitors that do not resolve are left out
// of the group rather than failing the save.
func (c *Client) resolvePublicGroups(ctx context.Context, specs []PublicGroupSpec) ([]PublicGroup, error) {
	groups := make([]PublicGroup, 0, len(specs))
	for i, spec := range specs {
		group := PublicGroup{Name: spec.Name, Weight: i + 1}
		for _, monitorName := range spec.Monitors {
			info, err := c.ResolveMonitorByName(ctx, monitorName)
			if err != nil {
				return nil, err
			}
			if info.Exists {
				group.Monitors = append(group.Monitors, MonitorRef{ID: info.ID})
			}
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// ApplyStatusPages runs the two-phase create for each bulk-input page
// sequentially and independently. With save=false only phase one runs.
func (c *Client) ApplyStatusPages(ctx context.Context, specs []StatusPageSpec, save bool) []ApplyResult {
	var results []ApplyResult
	for _, spec := range specs {
		spec := spec
		info, created, err := c.EnsureStatusPage(ctx, spec.Title, spec.Slug)
		if err == nil && save {
			err = c.SaveStatusPage(ctx, info.ID, &spec)
		}
		results = append(results, ApplyResult{
			Name:    spec.Slug,
			ID:      info.ID,
			Created: created,
			Err:     err,
		})
	}
	return results
}

// DeleteStatusPage deletes the page with the given slug. An unknown slug
// is a skip and issues no delete call.
func (c *Client) DeleteStatusPage(ctx context.Context, slug string) (bool, error) {
	_, exists, err := c.GetStatusPage(ctx, slug)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}

	resp, err := c.Call(ctx, "deleteStatusPage", slug)
	if err != nil {
		return false, err
	}
	ack, ok := resp.Ack()
	if !ok {
		return false, fmt.Errorf("unexpected 'deleteStatusPage' response for '%s'", slug)
	}
	if !ack.OK {
		return false, remoteErr("deleteStatusPage", ack)
	}
	return false, nil
}

// StatusPages returns the current status page snapshot, sorted by id.
func (c *Client) StatusPages(ctx context.Context) ([]StatusPage, error) {
	return c.statusPageSnapshot(ctx)
}

// StatusPageDetails merges the session's view of the page with the
// public HTTP document the server serves for it (incidents, public
// groups, maintenance windows live only there).
func (c *Client) StatusPageDetails(ctx context.Context, slug string) (map[string]any, bool, error) {
	page, exists, err := c.GetStatusPage(ctx, slug)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/status-page/%s", c.baseURL, slug), nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("cannot fetch public status page from %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("server returned status %d for status page '%s'", resp.StatusCode, slug)
	}

	var public struct {
		Config          map[string]any `json:"config"`
		Incident        any            `json:"incident"`
		PublicGroupList any            `json:"publicGroupList"`
		MaintenanceList any            `json:"maintenanceList"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&public); err != nil {
		return nil, false, fmt.Errorf("invalid response from server: %w", err)
	}

	details := map[string]any{
		"id":              page.ID,
		"slug":            page.Slug,
		"title":           page.Title,
		"theme":           page.Theme,
		"published":       page.Published,
		"incident":        public.Incident,
		"publicGroupList": public.PublicGroupList,
		"maintenanceList": public.MaintenanceList,
	}
	for key, value := range public.Config {
		details[key] = value
	}
	return details, true, nil
}
