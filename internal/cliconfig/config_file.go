package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	URL            string            `toml:"url"`
	Method         string            `toml:"method"`
	ExpectReply    *bool             `toml:"expect_reply"`
	ResponseType   string            `toml:"response_type"`
	EncodingMode   string            `toml:"encoding_mode"`
	Headers        map[string]string `toml:"headers"`
	Vars           map[string]string `toml:"vars"`
	ConnectTimeout string            `toml:"connect_timeout"`
	ReadTimeout    string            `toml:"read_timeout"`
	Watch          WatchFileConfig   `toml:"watch"`
	Log            LogFileConfig     `toml:"log"`
}

// WatchFileConfig is the [watch] table.
type WatchFileConfig struct {
	Dir         string `toml:"dir"`
	Pattern     string `toml:"pattern"`
	Debounce    string `toml:"debounce"`
	ContentType string `toml:"content_type"`
}

// LogFileConfig is the [log] table.
type LogFileConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.outbound/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".outbound", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", fc.URL, &cfg.URL)
	s.setString("method", fc.Method, &cfg.Method)
	s.setString("response-type", fc.ResponseType, &cfg.ResponseType)
	s.setString("encoding", fc.EncodingMode, &cfg.EncodingMode)
	s.setBool("expect-reply", fc.ExpectReply, &cfg.ExpectReply)

	s.setMap("header", fc.Headers, &cfg.Headers)
	s.setMap("var", fc.Vars, &cfg.Vars)

	if err := s.setDuration("connect-timeout", fc.ConnectTimeout, &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.setDuration("read-timeout", fc.ReadTimeout, &cfg.ReadTimeout); err != nil {
		return err
	}

	s.setString("dir", fc.Watch.Dir, &cfg.WatchDir)
	s.setString("pattern", fc.Watch.Pattern, &cfg.WatchPattern)
	s.setString("content-type", fc.Watch.ContentType, &cfg.ContentType)
	if err := s.setDuration("debounce", fc.Watch.Debounce, &cfg.WatchDebounce); err != nil {
		return err
	}

	s.setString("log-level", fc.Log.Level, &cfg.LogLevel)
	s.setString("log-format", fc.Log.Format, &cfg.LogFormat)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
