package cli

import (
	"time"

	"github.com/soyeahso/botline/internal/config"
	"github.com/soyeahso/botline/internal/directline"
	"github.com/soyeahso/botline/internal/location"
	"github.com/soyeahso/botline/internal/store"
)

// buildClient wires a directline.Client from configuration: the selected
// session store driver, the static location provider when enabled, and the
// reconnect policy. The returned cleanup releases store resources.
func buildClient(cfg config.Config) (*directline.Client, func(), error) {
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, nil, errs[0]
	}

	cleanup := func() {}

	var sessions directline.SessionStore
	switch cfg.Session.Store {
	case "memory":
		sessions = store.NewMemorySessionStore()
	case "redis":
		rs := store.NewRedisSessionStore(
			cfg.Session.Redis.Addr,
			cfg.Session.Redis.Password,
			cfg.Session.Redis.DB,
			time.Duration(cfg.Session.Redis.TTLMinutes)*time.Minute,
		)
		sessions = rs
		cleanup = func() { rs.Close() }
	default:
		path := cfg.Session.Path
		if path == "" {
			path = paths.Session
		}
		db, err := store.Open(path, log)
		if err != nil {
			return nil, nil, err
		}
		sessions = store.NewSQLiteSessionStore(db)
		cleanup = func() { db.Close() }
	}

	var loc location.Provider
	if cfg.Location.Enabled {
		loc = location.NewStaticProvider(cfg.Location.Latitude, cfg.Location.Longitude, cfg.Location.Elevation)
	}

	client := directline.NewClient(directline.Options{
		Secret:           cfg.Secret,
		User:             directline.ChannelAccount{ID: cfg.User.ID, Name: cfg.User.Name},
		ConversationBase: cfg.API.ConversationBase,
		TokenBase:        cfg.API.TokenBase,
		RequestTimeout:   time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		Store:            sessions,
		Location:         loc,
		Reconnect: directline.ReconnectPolicy{
			MaxAttempts: cfg.Reconnect.MaxAttempts,
			Delay:       time.Duration(cfg.Reconnect.DelaySeconds) * time.Second,
		},
		Log: log,
	})
	return client, cleanup, nil
}
