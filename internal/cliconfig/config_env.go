package cliconfig

import (
	"os"
	"strings"
)

// ApplyEnvConfig applies configuration from environment variables (OUTBOUND_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", os.Getenv("OUTBOUND_URL"), &cfg.URL)
	s.setString("method", os.Getenv("OUTBOUND_METHOD"), &cfg.Method)
	s.setString("response-type", os.Getenv("OUTBOUND_RESPONSE_TYPE"), &cfg.ResponseType)
	s.setString("encoding", os.Getenv("OUTBOUND_ENCODING_MODE"), &cfg.EncodingMode)
	if err := s.setBoolFromString("expect-reply", os.Getenv("OUTBOUND_EXPECT_REPLY"), &cfg.ExpectReply); err != nil {
		return err
	}

	for flag, env := range map[string]string{"header": "OUTBOUND_HEADERS", "var": "OUTBOUND_VARS"} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		pairs, err := ParseKeyValues(strings.Split(v, ","))
		if err != nil {
			return err
		}
		dst := &cfg.Headers
		if flag == "var" {
			dst = &cfg.Vars
		}
		s.setMap(flag, pairs, dst)
	}

	if err := s.setDuration("connect-timeout", os.Getenv("OUTBOUND_CONNECT_TIMEOUT"), &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.setDuration("read-timeout", os.Getenv("OUTBOUND_READ_TIMEOUT"), &cfg.ReadTimeout); err != nil {
		return err
	}

	s.setString("dir", os.Getenv("OUTBOUND_WATCH_DIR"), &cfg.WatchDir)
	s.setString("pattern", os.Getenv("OUTBOUND_WATCH_PATTERN"), &cfg.WatchPattern)
	s.setString("content-type", os.Getenv("OUTBOUND_CONTENT_TYPE"), &cfg.ContentType)
	if err := s.setDuration("debounce", os.Getenv("OUTBOUND_WATCH_DEBOUNCE"), &cfg.WatchDebounce); err != nil {
		return err
	}

	s.setString("log-level", os.Getenv("OUTBOUND_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("OUTBOUND_LOG_FORMAT"), &cfg.LogFormat)

	return nil
}
