package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answerbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSettings(t *testing.T) {
	path := writeSettings(t, `
database: /var/lib/answerbot/records.db
policy: /etc/answerbot/policy.cue
cache_size: 500
poll_interval: 30s
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/answerbot/records.db", s.Database)
	assert.Equal(t, "/etc/answerbot/policy.cue", s.Policy)
	assert.Equal(t, 500, s.CacheSize)
	assert.Equal(t, 30*time.Second, s.PollInterval)
}

func TestLoadSettings_Defaults(t *testing.T) {
	path := writeSettings(t, "database: records.db\n")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Empty(t, s.Policy)
	assert.Zero(t, s.CacheSize)
	assert.Equal(t, time.Minute, s.PollInterval)
}

func TestLoadSettings_DatabaseRequired(t *testing.T) {
	path := writeSettings(t, "poll_interval: 30s\n")

	_, err := LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path is required")
}

func TestLoadSettings_UnknownField(t *testing.T) {
	path := writeSettings(t, `
database: records.db
databse_path: typo.db
`)

	_, err := LoadSettings(path)
	require.Error(t, err)
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadPolicy_EmbeddedDefault(t *testing.T) {
	p, err := LoadPolicy(Settings{})
	require.NoError(t, err)
	assert.NotEmpty(t, p.Community)
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "id")
	t.Setenv("REDDIT_CLIENT_SECRET", "secret")
	t.Setenv("REDDIT_USERNAME", "bot_user")
	t.Setenv("REDDIT_PASSWORD", "hunter2")
	t.Setenv("REDDIT_USER_AGENT", "")

	creds, err := LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, "id", creds.ClientID)
	assert.Equal(t, "bot_user", creds.Username)
	assert.Contains(t, creds.UserAgent, "bot_user", "user agent is derived when unset")
}

func TestLoadCredentials_Missing(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "")
	t.Setenv("REDDIT_CLIENT_SECRET", "")
	t.Setenv("REDDIT_USERNAME", "")
	t.Setenv("REDDIT_PASSWORD", "")

	_, err := LoadCredentials()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDDIT_CLIENT_ID")
}
