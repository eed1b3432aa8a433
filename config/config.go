// Package config loads and saves the settings file shared by the watcher and
// the harvester: the recipient login, the chat OAuth token, and the channel
// list. The file is YAML; secrets may be overridden through the environment
// so the file can be committed without the token.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when SETTINGS_PATH is not set.
const DefaultPath = "giftwatch.yaml"

// Settings is the on-disk document plus env-tunable knobs. Channels is the
// persisted, sorted, deduplicated list maintained by the harvester; the
// watcher treats it as read-only for the lifetime of a session.
type Settings struct {
	Username string   `yaml:"username"`
	Token    string   `yaml:"token"`
	Channels []string `yaml:"channels"`
	ClientID string   `yaml:"client_id,omitempty"`

	// Env-only tuning, not persisted.
	JoinTimeout time.Duration `yaml:"-"`
	JoinDelay   time.Duration `yaml:"-"`
}

// Path returns the settings file location from SETTINGS_PATH, falling back
// to DefaultPath.
func Path() string {
	if p := os.Getenv("SETTINGS_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads and parses the settings file. A missing file and a malformed
// file are distinct errors; both are fatal at startup (check with
// errors.Is(err, os.ErrNotExist) for the former). Environment variables
// TWITCH_USERNAME, TWITCH_OAUTH_TOKEN and TWITCH_CLIENT_ID override the
// corresponding file fields when set; JOIN_TIMEOUT (default 30s) and
// JOIN_DELAY (default 0) tune the join loop.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}

	if v := os.Getenv("TWITCH_USERNAME"); v != "" {
		s.Username = v
	}
	if v := os.Getenv("TWITCH_OAUTH_TOKEN"); v != "" {
		s.Token = v
	}
	if v := os.Getenv("TWITCH_CLIENT_ID"); v != "" {
		s.ClientID = v
	}

	s.JoinTimeout = 30 * time.Second
	if v := os.Getenv("JOIN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid JOIN_TIMEOUT %q", v)
		}
		s.JoinTimeout = d
	}
	if v := os.Getenv("JOIN_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid JOIN_DELAY %q", v)
		}
		s.JoinDelay = d
	}

	return &s, nil
}

// Save writes the settings document back, replacing the channel list with
// whatever the caller merged. The write goes through a temp file and rename
// so a crash never leaves a truncated settings file behind.
func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

// ValidateChatReady checks the fields the watcher needs before connecting.
func (s *Settings) ValidateChatReady() error {
	if s.Username == "" {
		return fmt.Errorf("username is required (or set TWITCH_USERNAME)")
	}
	if s.Token == "" {
		return fmt.Errorf("token is required (or set TWITCH_OAUTH_TOKEN)")
	}
	if len(s.Channels) == 0 {
		return fmt.Errorf("at least one channel is required; run harvest-channels first")
	}
	return nil
}
