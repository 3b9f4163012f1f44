package config

// Config is the root configuration for botline.
type Config struct {
	// Secret is the long-lived channel secret. Supports ${ENV_VAR} expansion
	// so it never has to live in the file itself.
	Secret string `yaml:"secret,omitempty"`

	User      UserConfig      `yaml:"user,omitempty"`
	API       APIConfig       `yaml:"api,omitempty"`
	Session   SessionConfig   `yaml:"session,omitempty"`
	Reconnect ReconnectConfig `yaml:"reconnect,omitempty"`
	Location  LocationConfig  `yaml:"location,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// UserConfig identifies the local participant on outbound activities.
type UserConfig struct {
	ID   string `yaml:"id,omitempty"`
	Name string `yaml:"name,omitempty"`
}

// APIConfig points at the protocol endpoints. Empty values use the
// production Direct Line endpoints.
type APIConfig struct {
	ConversationBase string `yaml:"conversationBase,omitempty"`
	TokenBase        string `yaml:"tokenBase,omitempty"`
	TimeoutSeconds   int    `yaml:"timeoutSeconds,omitempty"`
}

// SessionConfig selects where the session record is persisted.
type SessionConfig struct {
	Store string      `yaml:"store,omitempty"` // "sqlite" | "memory" | "redis"
	Path  string      `yaml:"path,omitempty"`  // sqlite db path; default under the base dir
	Redis RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig configures the redis session store.
type RedisConfig struct {
	Addr       string `yaml:"addr,omitempty"`
	Password   string `yaml:"password,omitempty"`
	DB         int    `yaml:"db,omitempty"`
	TTLMinutes int    `yaml:"ttlMinutes,omitempty"`
}

// ReconnectConfig bounds automatic recovery after live channel loss.
// MaxAttempts 0 disables automatic reconnection.
type ReconnectConfig struct {
	MaxAttempts  int `yaml:"maxAttempts,omitempty"`
	DelaySeconds int `yaml:"delaySeconds,omitempty"`
}

// LocationConfig configures the static location provider used to enrich
// outbound messages.
type LocationConfig struct {
	Enabled   bool    `yaml:"enabled,omitempty"`
	Latitude  float64 `yaml:"latitude,omitempty"`
	Longitude float64 `yaml:"longitude,omitempty"`
	Elevation float64 `yaml:"elevation,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
}
