package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "default-user", cfg.User.ID)
	assert.Equal(t, 30, cfg.API.TimeoutSeconds)
	assert.Equal(t, "sqlite", cfg.Session.Store)
	assert.Equal(t, 3, cfg.Reconnect.MaxAttempts)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
secret: abc123
user:
  id: alice
api:
  timeoutSeconds: 10
session:
  store: memory
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.Secret)
	assert.Equal(t, "alice", cfg.User.ID)
	assert.Equal(t, "User", cfg.User.Name, "unset fields keep defaults")
	assert.Equal(t, 10, cfg.API.TimeoutSeconds)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "secret: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
secret: from-file
user:
  id: from-file
`)
	t.Setenv("BOTLINE_SECRET", "from-env")
	t.Setenv("BOTLINE_USER_ID", "bob")
	t.Setenv("BOTLINE_SESSION_STORE", "Redis")
	t.Setenv("BOTLINE_LOG_LEVEL", "DEBUG")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Secret)
	assert.Equal(t, "bob", cfg.User.ID)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadExpandsSecretEnvVar(t *testing.T) {
	path := writeConfig(t, "secret: ${BOTLINE_TEST_SECRET}\n")
	t.Setenv("BOTLINE_TEST_SECRET", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Secret)
}

func TestLoadLeavesUnsetEnvVarReference(t *testing.T) {
	path := writeConfig(t, "secret: ${BOTLINE_DEFINITELY_UNSET_VAR}\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${BOTLINE_DEFINITELY_UNSET_VAR}", cfg.Secret)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "unknown store",
			mutate:  func(cfg *Config) { cfg.Session.Store = "etcd" },
			wantErr: "unknown session store",
		},
		{
			name: "redis without addr",
			mutate: func(cfg *Config) {
				cfg.Session.Store = "redis"
			},
			wantErr: "session.redis.addr",
		},
		{
			name: "base url missing trailing slash",
			mutate: func(cfg *Config) {
				cfg.API.ConversationBase = "https://example.test/v3/directline/conversations"
			},
			wantErr: "trailing slash",
		},
		{
			name: "base url not a url",
			mutate: func(cfg *Config) {
				cfg.API.TokenBase = "not a url"
			},
			wantErr: "not a valid url",
		},
		{
			name:    "negative timeout",
			mutate:  func(cfg *Config) { cfg.API.TimeoutSeconds = -1 },
			wantErr: "timeoutSeconds",
		},
		{
			name:    "negative reconnect attempts",
			mutate:  func(cfg *Config) { cfg.Reconnect.MaxAttempts = -1 },
			wantErr: "maxAttempts",
		},
		{
			name: "latitude out of range",
			mutate: func(cfg *Config) {
				cfg.Location.Enabled = true
				cfg.Location.Latitude = 91
			},
			wantErr: "latitude",
		},
		{
			name: "coordinates ignored when location disabled",
			mutate: func(cfg *Config) {
				cfg.Location.Latitude = 999
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			errs := Validate(cfg)
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.wantErr) {
					found = true
				}
			}
			assert.True(t, found, "expected an error containing %q, got %v", tt.wantErr, errs)
		})
	}
}

func TestResolvePathsHonorsHomeOverride(t *testing.T) {
	base := t.TempDir()
	t.Setenv("BOTLINE_HOME", base)

	paths, err := ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, base, paths.Base)
	assert.Equal(t, filepath.Join(base, "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(base, "session.db"), paths.Session)

	require.NoError(t, paths.EnsureDirs())
	info, err := os.Stat(paths.Logs)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
