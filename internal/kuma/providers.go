// ABOUTME: Notification provider field tables
// ABOUTME: Per-provider required/optional argument sets for validation and help output

package kuma

import (
	"sort"
	"strings"
)

// ProviderField is one provider-specific payload key and whether it must
// be supplied.
type ProviderField struct {
	Name     string
	Required bool
}

// notificationProviders maps the lowercase provider key to its canonical
// wire type and field set. Every provider also requires the common
// name/type/isDefault/applyExisting fields.
var notificationProviders = map[string]struct {
	wireType string
	fields   []ProviderField
}{
	"discord": {"discord", []ProviderField{
		{"discordWebhookUrl", true},
		{"discordUsername", false},
		{"discordPrefixMessage", false},
	}},
	"opsgenie": {"Opsgenie", []ProviderField{
		{"opsgenieRegion", true},
		{"opsgenieApiKey", true},
		{"opsgeniePriority", false},
	}},
	"pagerduty": {"PagerDuty", []ProviderField{
		{"pagerdutyIntegrationKey", true},
		{"pagerdutyPriority", false},
		{"pagerdutyIntegrationUrl", false},
		{"pagerdutyAutoResolve", false},
	}},
	"rocket.chat": {"rocket.chat", []ProviderField{
		{"rocketwebhookURL", true},
		{"rocketchannel", false},
		{"rocketusername", false},
		{"rocketiconemo", false},
	}},
	"slack": {"slack", []ProviderField{
		{"slackwebhookURL", true},
		{"slackchannelnotify", false},
		{"slackchannel", false},
		{"slackusername", false},
		{"slackiconemo", false},
	}},
	"smtp": {"smtp", []ProviderField{
		{"smtpFrom", true},
		{"smtpTo", true},
		{"smtpHost", true},
		{"smtpPort", true},
		{"smtpSecure", false},
		{"smtpIgnoreTLSError", false},
		{"smtpDkimDomain", false},
		{"smtpDkimKeySelector", false},
		{"smtpDkimPrivateKey", false},
		{"smtpDkimHashAlgo", false},
		{"smtpDkimheaderFieldNames", false},
		{"smtpDkimskipFields", false},
		{"smtpUsername", false},
		{"smtpPassword", false},
		{"customSubject", false},
		{"smtpCC", false},
		{"smtpBCC", false},
	}},
	"teams": {"teams", []ProviderField{
		{"webhookUrl", true},
	}},
	"webhook": {"webhook", []ProviderField{
		{"webhookURL", true},
		{"webhookContentType", true},
		{"webhookCustomBody", false},
		{"webhookAdditionalHeaders", false},
	}},
}

// NotificationProviderNames returns the supported provider keys, sorted.
func NotificationProviderNames() []string {
	names := make([]string, 0, len(notificationProviders))
	for name := range notificationProviders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NotificationProviderFields returns the field set for one provider key.
func NotificationProviderFields(provider string) ([]ProviderField, bool) {
	entry, ok := notificationProviders[strings.ToLower(provider)]
	if !ok {
		return nil, false
	}
	return entry.fields, true
}
