package cli

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aitp-mods/answerbot/internal/policy"
	"github.com/aitp-mods/answerbot/internal/reddit"
)

// Settings is the local (non-remote) process configuration: file paths
// and the polling cadence. Everything behavioral lives in the policy
// document and the remote tunables; credentials come from the
// environment so they never land in a checked-in file.
type Settings struct {
	// Database is the SQLite path for the record store.
	Database string `yaml:"database"`

	// Policy optionally points at a policy CUE file; empty means the
	// embedded default policy.
	Policy string `yaml:"policy,omitempty"`

	// CacheSize bounds the recency cache; zero means the default.
	CacheSize int `yaml:"cache_size,omitempty"`

	// PollInterval is the sleep between polling cycles.
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
}

// LoadSettings reads and parses the settings file with strict field
// validation, then applies defaults.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings file: %w", err)
	}

	var s Settings
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields (catches typos)
	if err := decoder.Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}

	if s.Database == "" {
		return Settings{}, fmt.Errorf("settings: database path is required")
	}
	if s.PollInterval <= 0 {
		s.PollInterval = time.Minute
	}
	return s, nil
}

// LoadPolicy compiles the configured policy file, or the embedded
// default when none is configured.
func LoadPolicy(s Settings) (*policy.Policy, error) {
	if s.Policy == "" {
		return policy.Default()
	}
	return policy.Load(s.Policy)
}

// LoadCredentials reads the platform credentials from the environment,
// after loading a .env file when one is present.
func LoadCredentials() (reddit.Credentials, error) {
	// Missing .env is fine; the variables may be set directly.
	_ = godotenv.Load()

	creds := reddit.Credentials{
		ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		Username:     os.Getenv("REDDIT_USERNAME"),
		Password:     os.Getenv("REDDIT_PASSWORD"),
		UserAgent:    os.Getenv("REDDIT_USER_AGENT"),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.Username == "" || creds.Password == "" {
		return reddit.Credentials{}, fmt.Errorf("missing platform credentials: set REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET, REDDIT_USERNAME, REDDIT_PASSWORD")
	}
	if creds.UserAgent == "" {
		creds.UserAgent = "answerbot (by /u/" + creds.Username + ")"
	}
	return creds, nil
}
