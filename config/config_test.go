package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "giftwatch.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeSettings(t, `
username: farmer
token: oauth:abc123
channels:
  - alpha
  - beta
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.Username != "farmer" || s.Token != "oauth:abc123" {
		t.Errorf("unexpected identity fields: %+v", s)
	}
	if !reflect.DeepEqual(s.Channels, []string{"alpha", "beta"}) {
		t.Errorf("channels = %v", s.Channels)
	}
	if s.JoinTimeout != 30*time.Second {
		t.Errorf("default join timeout = %v, want 30s", s.JoinTimeout)
	}
	if s.JoinDelay != 0 {
		t.Errorf("default join delay = %v, want 0", s.JoinDelay)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing settings file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("want os.ErrNotExist in chain, got %v", err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeSettings(t, "username: [unterminated")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for malformed settings file")
	}
	if errors.Is(err, os.ErrNotExist) {
		t.Errorf("malformed file must not look like a missing file: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TWITCH_USERNAME", "envuser")
	t.Setenv("TWITCH_OAUTH_TOKEN", "oauth:fromenv")
	t.Setenv("JOIN_TIMEOUT", "5s")
	t.Setenv("JOIN_DELAY", "510ms")

	path := writeSettings(t, "username: fileuser\ntoken: oauth:fromfile\nchannels: [a]\n")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.Username != "envuser" {
		t.Errorf("username = %q, want env override", s.Username)
	}
	if s.Token != "oauth:fromenv" {
		t.Errorf("token = %q, want env override", s.Token)
	}
	if s.JoinTimeout != 5*time.Second {
		t.Errorf("join timeout = %v", s.JoinTimeout)
	}
	if s.JoinDelay != 510*time.Millisecond {
		t.Errorf("join delay = %v", s.JoinDelay)
	}
}

func TestLoadBadDurations(t *testing.T) {
	path := writeSettings(t, "username: u\ntoken: t\n")

	t.Setenv("JOIN_TIMEOUT", "not-a-duration")
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid JOIN_TIMEOUT")
	}
	t.Setenv("JOIN_TIMEOUT", "")

	t.Setenv("JOIN_DELAY", "-1s")
	if _, err := Load(path); err == nil {
		t.Error("expected error for negative JOIN_DELAY")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "giftwatch.yaml")
	s := &Settings{
		Username: "farmer",
		Token:    "oauth:abc",
		Channels: []string{"a", "b", "c"},
	}
	if err := s.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after Save(): %v", err)
	}
	if loaded.Username != s.Username || loaded.Token != s.Token {
		t.Errorf("round trip lost identity fields: %+v", loaded)
	}
	if !reflect.DeepEqual(loaded.Channels, s.Channels) {
		t.Errorf("round trip channels = %v", loaded.Channels)
	}

	// no temp file may be left behind
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestValidateChatReady(t *testing.T) {
	s := &Settings{Username: "u", Token: "t", Channels: []string{"c"}}
	if err := s.ValidateChatReady(); err != nil {
		t.Errorf("expected valid settings, got %v", err)
	}

	for _, strip := range []func(*Settings){
		func(s *Settings) { s.Username = "" },
		func(s *Settings) { s.Token = "" },
		func(s *Settings) { s.Channels = nil },
	} {
		c := *s
		c.Channels = append([]string(nil), s.Channels...)
		strip(&c)
		if err := c.ValidateChatReady(); err == nil {
			t.Errorf("expected validation error for %+v", c)
		}
	}
}

func TestPathDefault(t *testing.T) {
	t.Setenv("SETTINGS_PATH", "")
	if got := Path(); got != DefaultPath {
		t.Errorf("Path() = %q, want %q", got, DefaultPath)
	}
	t.Setenv("SETTINGS_PATH", "/etc/giftwatch/settings.yaml")
	if got := Path(); got != "/etc/giftwatch/settings.yaml" {
		t.Errorf("Path() = %q", got)
	}
}
