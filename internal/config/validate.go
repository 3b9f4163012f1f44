package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validStores are the accepted session store kinds.
var validStores = map[string]bool{
	"sqlite": true,
	"memory": true,
	"redis":  true,
}

// Validate checks a loaded Config for inconsistencies. It returns all
// problems found, not just the first one.
func Validate(cfg Config) []error {
	var errs []error

	if !validStores[cfg.Session.Store] {
		errs = append(errs, &ConfigError{Message: fmt.Sprintf(
			"unknown session store %q (want sqlite, memory, or redis)", cfg.Session.Store)})
	}
	if cfg.Session.Store == "redis" && cfg.Session.Redis.Addr == "" {
		errs = append(errs, &ConfigError{Message: "session store redis requires session.redis.addr"})
	}

	if cfg.API.ConversationBase != "" {
		if err := validateBaseURL("api.conversationBase", cfg.API.ConversationBase); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.API.TokenBase != "" {
		if err := validateBaseURL("api.tokenBase", cfg.API.TokenBase); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.API.TimeoutSeconds < 0 {
		errs = append(errs, &ConfigError{Message: "api.timeoutSeconds must not be negative"})
	}

	if cfg.Reconnect.MaxAttempts < 0 {
		errs = append(errs, &ConfigError{Message: "reconnect.maxAttempts must not be negative"})
	}
	if cfg.Reconnect.DelaySeconds < 0 {
		errs = append(errs, &ConfigError{Message: "reconnect.delaySeconds must not be negative"})
	}

	if cfg.Location.Enabled {
		if cfg.Location.Latitude < -90 || cfg.Location.Latitude > 90 {
			errs = append(errs, &ConfigError{Message: "location.latitude out of range"})
		}
		if cfg.Location.Longitude < -180 || cfg.Location.Longitude > 180 {
			errs = append(errs, &ConfigError{Message: "location.longitude out of range"})
		}
	}

	return errs
}

// validateBaseURL checks that an endpoint override parses and ends with a
// path separator so operation suffixes join cleanly.
func validateBaseURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ConfigError{Message: fmt.Sprintf("%s is not a valid url: %q", field, raw)}
	}
	if !strings.HasSuffix(raw, "/") {
		return &ConfigError{Message: fmt.Sprintf("%s must end with a trailing slash", field)}
	}
	return nil
}
