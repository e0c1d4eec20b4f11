// ABOUTME: Monitor payload construction for the remote "add" call
// ABOUTME: Type-indexed builders apply defaults and compute missing required fields

package kuma

import "sort"

// MonitorType enumerates the supported monitor kinds.
type MonitorType string

const (
	TypeDNS           MonitorType = "dns"
	TypeDocker        MonitorType = "docker"
	TypeGamedig       MonitorType = "gamedig"
	TypeGroup         MonitorType = "group"
	TypeGRPCKeyword   MonitorType = "grpc-keyword"
	TypeHTTP          MonitorType = "http"
	TypeJSONQuery     MonitorType = "json-query"
	TypeKafkaProducer MonitorType = "kafka-producer"
	TypeKeyword       MonitorType = "keyword"
	TypeMongoDB       MonitorType = "mongodb"
	TypeMQTT          MonitorType = "mqtt"
	TypeMySQL         MonitorType = "mysql"
	TypePing          MonitorType = "ping"
	TypePort          MonitorType = "port"
	TypePostgres      MonitorType = "postgres"
	TypePush          MonitorType = "push"
	TypeRadius        MonitorType = "radius"
	TypeRealBrowser   MonitorType = "real-browser"
	TypeRedis         MonitorType = "redis"
	TypeSQLServer     MonitorType = "sqlserver"
	TypeStream        MonitorType = "stream"
	TypeTailscalePing MonitorType = "tailscale-ping"
)

// authMethods are the supported HTTP authentication methods.
var authMethods = map[string]bool{
	"basic":     true,
	"mtls":      true,
	"none":      true,
	"ntlm":      true,
	"oauth2-cc": true,
}

// MonitorSpec describes one monitor to create. Field names mirror the
// bulk-input document keys. Zero values take the server-conventional
// defaults when the payload is built.
type MonitorSpec struct {
	Type            MonitorType `yaml:"type" json:"type"`
	Name            string      `yaml:"name" json:"name"`
	Parent          *int64      `yaml:"parent,omitempty" json:"parent,omitempty"`
	Description     string      `yaml:"description,omitempty" json:"description,omitempty"`
	Interval        int         `yaml:"interval,omitempty" json:"interval,omitempty"`
	RetryInterval   int         `yaml:"retryInterval,omitempty" json:"retryInterval,omitempty"`
	ResendInterval  int         `yaml:"resendInterval,omitempty" json:"resendInterval,omitempty"`
	MaxRetries      *int        `yaml:"maxretries,omitempty" json:"maxretries,omitempty"`
	UpsideDown      bool        `yaml:"upsideDown,omitempty" json:"upsideDown,omitempty"`
	NotificationIDs []int64     `yaml:"notificationIDList,omitempty" json:"notificationIDList,omitempty"`
	BodyEncoding    string      `yaml:"httpBodyEncoding,omitempty" json:"httpBodyEncoding,omitempty"`
	Timeout         int         `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// HTTP family
	URL                 string   `yaml:"url,omitempty" json:"url,omitempty"`
	Method              string   `yaml:"method,omitempty" json:"method,omitempty"`
	MaxRedirects        *int     `yaml:"maxredirects,omitempty" json:"maxredirects,omitempty"`
	AcceptedStatusCodes []string `yaml:"accepted_statuscodes,omitempty" json:"accepted_statuscodes,omitempty"`
	ExpiryNotification  bool     `yaml:"expiryNotification,omitempty" json:"expiryNotification,omitempty"`
	IgnoreTLS           bool     `yaml:"ignoreTls,omitempty" json:"ignoreTls,omitempty"`
	ProxyID             *int64   `yaml:"proxyId,omitempty" json:"proxyId,omitempty"`
	Body                string   `yaml:"body,omitempty" json:"body,omitempty"`
	Headers             string   `yaml:"headers,omitempty" json:"headers,omitempty"`

	// Authentication
	AuthMethod        string `yaml:"authMethod,omitempty" json:"authMethod,omitempty"`
	BasicAuthUser     string `yaml:"basic_auth_user,omitempty" json:"basic_auth_user,omitempty"`
	BasicAuthPass     string `yaml:"basic_auth_pass,omitempty" json:"basic_auth_pass,omitempty"`
	AuthDomain        string `yaml:"authDomain,omitempty" json:"authDomain,omitempty"`
	AuthWorkstation   string `yaml:"authWorkstation,omitempty" json:"authWorkstation,omitempty"`
	TLSCert           string `yaml:"tlsCert,omitempty" json:"tlsCert,omitempty"`
	TLSKey            string `yaml:"tlsKey,omitempty" json:"tlsKey,omitempty"`
	TLSCA             string `yaml:"tlsCa,omitempty" json:"tlsCa,omitempty"`
	OAuthAuthMethod   string `yaml:"oauth_auth_method,omitempty" json:"oauth_auth_method,omitempty"`
	OAuthTokenURL     string `yaml:"oauth_token_url,omitempty" json:"oauth_token_url,omitempty"`
	OAuthClientID     string `yaml:"oauth_client_id,omitempty" json:"oauth_client_id,omitempty"`
	OAuthClientSecret string `yaml:"oauth_client_secret,omitempty" json:"oauth_client_secret,omitempty"`
	OAuthScopes       string `yaml:"oauth_scopes,omitempty" json:"oauth_scopes,omitempty"`

	// Keyword family
	Keyword       string `yaml:"keyword,omitempty" json:"keyword,omitempty"`
	InvertKeyword bool   `yaml:"invertKeyword,omitempty" json:"invertKeyword,omitempty"`

	// gRPC keyword
	GRPCURL         string `yaml:"grpcUrl,omitempty" json:"grpcUrl,omitempty"`
	GRPCEnableTLS   bool   `yaml:"grpcEnableTls,omitempty" json:"grpcEnableTls,omitempty"`
	GRPCServiceName string `yaml:"grpcServiceName,omitempty" json:"grpcServiceName,omitempty"`
	GRPCMethod      string `yaml:"grpcMethod,omitempty" json:"grpcMethod,omitempty"`
	GRPCProtobuf    string `yaml:"grpcProtobuf,omitempty" json:"grpcProtobuf,omitempty"`
	GRPCBody        string `yaml:"grpcBody,omitempty" json:"grpcBody,omitempty"`
	GRPCMetadata    string `yaml:"grpcMetadata,omitempty" json:"grpcMetadata,omitempty"`

	// Host/port family
	Hostname   string `yaml:"hostname,omitempty" json:"hostname,omitempty"`
	Port       *int   `yaml:"port,omitempty" json:"port,omitempty"`
	PacketSize int    `yaml:"packetSize,omitempty" json:"packetSize,omitempty"`

	// DNS
	DNSResolveServer string `yaml:"dns_resolve_server,omitempty" json:"dns_resolve_server,omitempty"`
	DNSResolveType   string `yaml:"dns_resolve_type,omitempty" json:"dns_resolve_type,omitempty"`

	// MQTT
	MQTTUsername       string `yaml:"mqttUsername,omitempty" json:"mqttUsername,omitempty"`
	MQTTPassword       string `yaml:"mqttPassword,omitempty" json:"mqttPassword,omitempty"`
	MQTTTopic          string `yaml:"mqttTopic,omitempty" json:"mqttTopic,omitempty"`
	MQTTSuccessMessage string `yaml:"mqttSuccessMessage,omitempty" json:"mqttSuccessMessage,omitempty"`

	// Databases
	DatabaseConnectionString string `yaml:"databaseConnectionString,omitempty" json:"databaseConnectionString,omitempty"`
	DatabaseQuery            string `yaml:"databaseQuery,omitempty" json:"databaseQuery,omitempty"`

	// Docker
	DockerContainer string `yaml:"docker_container,omitempty" json:"docker_container,omitempty"`
	DockerHost      *int64 `yaml:"docker_host,omitempty" json:"docker_host,omitempty"`

	// Radius
	RadiusUsername         string `yaml:"radiusUsername,omitempty" json:"radiusUsername,omitempty"`
	RadiusPassword         string `yaml:"radiusPassword,omitempty" json:"radiusPassword,omitempty"`
	RadiusSecret           string `yaml:"radiusSecret,omitempty" json:"radiusSecret,omitempty"`
	RadiusCalledStationID  string `yaml:"radiusCalledStationId,omitempty" json:"radiusCalledStationId,omitempty"`
	RadiusCallingStationID string `yaml:"radiusCallingStationId,omitempty" json:"radiusCallingStationId,omitempty"`

	// Gamedig
	Game                 string `yaml:"game,omitempty" json:"game,omitempty"`
	GamedigGivenPortOnly *bool  `yaml:"gamedigGivenPortOnly,omitempty" json:"gamedigGivenPortOnly,omitempty"`

	// JSON query
	JSONPath      string `yaml:"jsonPath,omitempty" json:"jsonPath,omitempty"`
	ExpectedValue string `yaml:"expectedValue,omitempty" json:"expectedValue,omitempty"`

	// Kafka producer
	KafkaBrokers          []string       `yaml:"kafkaProducerBrokers,omitempty" json:"kafkaProducerBrokers,omitempty"`
	KafkaTopic            string         `yaml:"kafkaProducerTopic,omitempty" json:"kafkaProducerTopic,omitempty"`
	KafkaMessage          string         `yaml:"kafkaProducerMessage,omitempty" json:"kafkaProducerMessage,omitempty"`
	KafkaSSL              bool           `yaml:"kafkaProducerSsl,omitempty" json:"kafkaProducerSsl,omitempty"`
	KafkaAutoTopicCreate  bool           `yaml:"kafkaProducerAllowAutoTopicCreation,omitempty" json:"kafkaProducerAllowAutoTopicCreation,omitempty"`
	KafkaSASLOptions      map[string]any `yaml:"kafkaProducerSaslOptions,omitempty" json:"kafkaProducerSaslOptions,omitempty"`
}

// requiredFields lists the payload keys that must be non-nil per monitor
// type, beyond name and type which every monitor requires.
var requiredFields = map[MonitorType][]string{
	TypeDNS:           {"hostname", "dns_resolve_server", "port"},
	TypeDocker:        {"docker_container", "docker_host"},
	TypeGamedig:       {"game", "hostname", "port"},
	TypeGroup:         {},
	TypeGRPCKeyword:   {"grpcUrl", "keyword", "grpcServiceName", "grpcMethod"},
	TypeHTTP:          {"url", "maxredirects"},
	TypeJSONQuery:     {"url", "jsonPath", "expectedValue"},
	TypeKafkaProducer: {"kafkaProducerTopic", "kafkaProducerMessage"},
	TypeKeyword:       {"url", "keyword", "maxredirects"},
	TypeMongoDB:       {},
	TypeMQTT:          {"hostname", "port", "mqttTopic"},
	TypeMySQL:         {},
	TypePing:          {"hostname"},
	TypePort:          {"hostname", "port"},
	TypePostgres:      {},
	TypePush:          {},
	TypeRadius:        {},
	TypeRealBrowser:   {"hostname", "port"},
	TypeRedis:         {},
	TypeSQLServer:     {},
	TypeStream:        {"hostname", "port"},
	TypeTailscalePing: {"hostname"},
}

// KnownMonitorType reports whether t is a recognized monitor kind.
func KnownMonitorType(t MonitorType) bool {
	_, ok := requiredFields[t]
	return ok
}

// MonitorTypes returns the recognized monitor kinds, sorted.
func MonitorTypes() []MonitorType {
	types := make([]MonitorType, 0, len(requiredFields))
	for t := range requiredFields {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// payloadBuilders extends the base payload with the fields each monitor
// type carries on the wire.
var payloadBuilders = map[MonitorType]func(*MonitorSpec, map[string]any){
	TypeGRPCKeyword: func(s *MonitorSpec, p map[string]any) {
		p["keyword"] = strOrNil(s.Keyword)
		p["invertKeyword"] = s.InvertKeyword
		p["grpcUrl"] = strOrNil(s.GRPCURL)
		p["grpcEnableTls"] = s.GRPCEnableTLS
		p["grpcServiceName"] = strOrNil(s.GRPCServiceName)
		p["grpcMethod"] = strOrNil(s.GRPCMethod)
		p["grpcProtobuf"] = strOrNil(s.GRPCProtobuf)
		p["grpcBody"] = strOrNil(s.GRPCBody)
		p["grpcMetadata"] = strOrNil(s.GRPCMetadata)
	},
	TypeKeyword: func(s *MonitorSpec, p map[string]any) {
		p["keyword"] = strOrNil(s.Keyword)
		p["invertKeyword"] = s.InvertKeyword
	},
	TypePing: func(s *MonitorSpec, p map[string]any) {
		p["hostname"] = strOrNil(s.Hostname)
		p["packetSize"] = intDefault(s.PacketSize, 56)
	},
	TypePort: func(s *MonitorSpec, p map[string]any) {
		p["hostname"] = strOrNil(s.Hostname)
	},
	TypeStream: func(s *MonitorSpec, p map[string]any) {
		p["hostname"] = strOrNil(s.Hostname)
	},
	TypeRealBrowser: func(s *MonitorSpec, p map[string]any) {
		p["hostname"] = strOrNil(s.Hostname)
	},
	TypeTailscalePing: func(s *MonitorSpec, p map[string]any) {
		p["hostname"] = strOrNil(s.Hostname)
	},
	TypeDNS: func(s *MonitorSpec, p map[string]any) {
		p["hostname"] = strOrNil(s.Hostname)
		p["dns_resolve_server"] = stringDefault(s.DNSResolveServer, "1.1.1.1")
		p["dns_resolve_type"] = stringDefault(s.DNSResolveType, "A")
		if s.Port == nil {
			p["port"] = 53
		}
	},
	TypeMQTT: func(s *MonitorSpec, p map[string]any) {
		p["hostname"] = strOrNil(s.Hostname)
		p["mqttUsername"] = s.MQTTUsername
		p["mqttPassword"] = s.MQTTPassword
		p["mqttTopic"] = strOrNil(s.MQTTTopic)
		p["mqttSuccessMessage"] = s.MQTTSuccessMessage
	},
	TypeRadius: func(s *MonitorSpec, p map[string]any) {
		p["hostname"] = strOrNil(s.Hostname)
		p["radiusUsername"] = strOrNil(s.RadiusUsername)
		p["radiusPassword"] = strOrNil(s.RadiusPassword)
		p["radiusSecret"] = strOrNil(s.RadiusSecret)
		p["radiusCalledStationId"] = strOrNil(s.RadiusCalledStationID)
		p["radiusCallingStationId"] = strOrNil(s.RadiusCallingStationID)
		if s.Port == nil {
			p["port"] = 1812
		}
	},
	TypeDocker: func(s *MonitorSpec, p map[string]any) {
		p["docker_container"] = strOrNil(s.DockerContainer)
		p["docker_host"] = s.DockerHost
	},
	TypeGamedig: func(s *MonitorSpec, p map[string]any) {
		p["hostname"] = strOrNil(s.Hostname)
		p["game"] = strOrNil(s.Game)
		given := true
		if s.GamedigGivenPortOnly != nil {
			given = *s.GamedigGivenPortOnly
		}
		p["gamedigGivenPortOnly"] = given
	},
	TypeJSONQuery: func(s *MonitorSpec, p map[string]any) {
		p["jsonPath"] = strOrNil(s.JSONPath)
		p["expectedValue"] = strOrNil(s.ExpectedValue)
	},
	TypeKafkaProducer: func(s *MonitorSpec, p map[string]any) {
		brokers := s.KafkaBrokers
		if brokers == nil {
			brokers = []string{}
		}
		sasl := s.KafkaSASLOptions
		if len(sasl) == 0 {
			sasl = map[string]any{"mechanism": "None"}
		}
		p["kafkaProducerBrokers"] = brokers
		p["kafkaProducerTopic"] = strOrNil(s.KafkaTopic)
		p["kafkaProducerMessage"] = strOrNil(s.KafkaMessage)
		p["kafkaProducerSsl"] = s.KafkaSSL
		p["kafkaProducerAllowAutoTopicCreation"] = s.KafkaAutoTopicCreate
		p["kafkaProducerSaslOptions"] = sasl
	},
	TypeMongoDB:   databaseBuilder(false),
	TypeRedis:     databaseBuilder(false),
	TypeMySQL:     databaseBuilder(true),
	TypePostgres:  databaseBuilder(true),
	TypeSQLServer: databaseBuilder(true),
}

func databaseBuilder(withQuery bool) func(*MonitorSpec, map[string]any) {
	return func(s *MonitorSpec, p map[string]any) {
		p["databaseConnectionString"] = strOrNil(s.DatabaseConnectionString)
		if withQuery {
			p["databaseQuery"] = strOrNil(s.DatabaseQuery)
		}
	}
}

// Payload builds the fully-defaulted "add" call payload for the spec.
func (s *MonitorSpec) Payload() map[string]any {
	maxRedirects := 10
	if s.MaxRedirects != nil {
		maxRedirects = *s.MaxRedirects
	}
	statusCodes := s.AcceptedStatusCodes
	if statusCodes == nil {
		statusCodes = []string{"200-299"}
	}
	notificationIDs := s.NotificationIDs
	if notificationIDs == nil {
		notificationIDs = []int64{}
	}
	maxRetries := 1
	if s.MaxRetries != nil {
		maxRetries = *s.MaxRetries
	}

	p := map[string]any{
		"type":                 string(s.Type),
		"name":                 strOrNil(s.Name),
		"interval":             intDefault(s.Interval, 60),
		"retryInterval":        intDefault(s.RetryInterval, 60),
		"resendInterval":       s.ResendInterval,
		"maxretries":           maxRetries,
		"notificationIDList":   notificationIDs,
		"upsideDown":           s.UpsideDown,
		"description":          strOrNil(s.Description),
		"httpBodyEncoding":     stringDefault(s.BodyEncoding, "json"),
		"parent":               nilableID(s.Parent),
		"expiryNotification":   s.ExpiryNotification,
		"ignoreTls":            s.IgnoreTLS,
		"proxyId":              nilableID(s.ProxyID),
		"method":               stringDefault(s.Method, "GET"),
		"body":                 strOrNil(s.Body),
		"headers":              strOrNil(s.Headers),
		"authMethod":           s.AuthMethod,
		"timeout":              intDefault(s.Timeout, 48),
		"url":                  strOrNil(s.URL),
		"maxredirects":         maxRedirects,
		"accepted_statuscodes": statusCodes,
	}
	if s.Port != nil {
		p["port"] = *s.Port
	} else {
		p["port"] = nil
	}

	s.applyAuth(p)

	if build, ok := payloadBuilders[s.Type]; ok {
		build(s, p)
	}
	return p
}

// applyAuth adds the credential fields the selected auth method carries.
func (s *MonitorSpec) applyAuth(p map[string]any) {
	if s.AuthMethod == "" || !authMethods[s.AuthMethod] {
		return
	}
	switch s.AuthMethod {
	case "basic", "ntlm":
		p["basic_auth_user"] = strOrNil(s.BasicAuthUser)
		p["basic_auth_pass"] = strOrNil(s.BasicAuthPass)
		if s.AuthMethod == "ntlm" {
			p["authDomain"] = strOrNil(s.AuthDomain)
			p["authWorkstation"] = strOrNil(s.AuthWorkstation)
		}
	case "mtls":
		p["tlsCert"] = strOrNil(s.TLSCert)
		p["tlsKey"] = strOrNil(s.TLSKey)
		p["tlsCa"] = strOrNil(s.TLSCA)
	case "oauth2-cc":
		p["oauth_auth_method"] = stringDefault(s.OAuthAuthMethod, "client_secret_basic")
		p["oauth_token_url"] = strOrNil(s.OAuthTokenURL)
		p["oauth_client_id"] = strOrNil(s.OAuthClientID)
		p["oauth_client_secret"] = strOrNil(s.OAuthClientSecret)
		p["oauth_scopes"] = strOrNil(s.OAuthScopes)
	}
}

// MissingFields returns the required payload keys the spec left unset,
// in a stable order. Name and type are required for every monitor.
func (s *MonitorSpec) MissingFields() []string {
	if !KnownMonitorType(s.Type) {
		// Unrecognized kinds never reach the server.
		return []string{"type"}
	}
	required := requiredFields[s.Type]
	payload := s.Payload()

	var missing []string
	for _, key := range append(append([]string{}, required...), "name", "type") {
		value, present := payload[key]
		if !present || value == nil || value == "" {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

func strOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func stringDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func intDefault(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func nilableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
