package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		User: UserConfig{
			ID:   "default-user",
			Name: "User",
		},
		API: APIConfig{
			TimeoutSeconds: 30,
		},
		Session: SessionConfig{
			Store: "sqlite",
		},
		Reconnect: ReconnectConfig{
			MaxAttempts:  3,
			DelaySeconds: 2,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
