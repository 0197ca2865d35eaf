package cliconfig

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/outbound/pkg/client"
	"github.com/bft-labs/outbound/pkg/target"
)

// Response type names accepted by --response-type.
const (
	ResponseString = "string"
	ResponseBytes  = "bytes"
	ResponseJSON   = "json"
	ResponseNone   = "none"
)

// Config holds CLI configuration for outbound.
type Config struct {
	URL          string
	Method       string
	ExpectReply  bool
	ResponseType string
	EncodingMode string

	Headers map[string]string
	Vars    map[string]string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	WatchDir      string
	WatchPattern  string
	WatchDebounce time.Duration
	ContentType   string

	LogLevel  string
	LogFormat string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Method:         http.MethodPost,
		ExpectReply:    true,
		ResponseType:   ResponseString,
		EncodingMode:   target.TemplateAndValues.String(),
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
		WatchPattern:   "*",
		WatchDebounce:  200 * time.Millisecond,
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// Validate checks the configuration for errors and normalizes values.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if !strings.Contains(c.URL, "{") {
		if _, err := url.ParseRequestURI(c.URL); err != nil {
			return fmt.Errorf("invalid url: %w", err)
		}
	}

	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = http.MethodPost
	}

	if _, err := c.ExpectedResponseType(); err != nil {
		return err
	}
	if _, err := c.Encoding(); err != nil {
		return err
	}

	if c.ConnectTimeout < 0 {
		return fmt.Errorf("connect timeout must not be negative")
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("read timeout must not be negative")
	}
	if c.WatchPattern == "" {
		c.WatchPattern = "*"
	}
	return nil
}

// ExpectedResponseType maps the response type name to a client.ResponseType.
func (c *Config) ExpectedResponseType() (client.ResponseType, error) {
	switch strings.ToLower(strings.TrimSpace(c.ResponseType)) {
	case "", ResponseString:
		return client.TypeOf[string](), nil
	case ResponseBytes:
		return client.TypeOf[[]byte](), nil
	case ResponseJSON:
		return client.Generic[any](), nil
	case ResponseNone:
		return client.NoBody(), nil
	default:
		return client.ResponseType{}, fmt.Errorf("unknown response type %q (want %s, %s, %s or %s)",
			c.ResponseType, ResponseString, ResponseBytes, ResponseJSON, ResponseNone)
	}
}

// Encoding parses the URI template encoding mode.
func (c *Config) Encoding() (target.EncodingMode, error) {
	if c.EncodingMode == "" {
		return target.TemplateAndValues, nil
	}
	return target.ParseEncodingMode(c.EncodingMode)
}

// RequestFactory returns the request factory for the configured timeouts.
func (c *Config) RequestFactory() client.SimpleRequestFactory {
	return client.SimpleRequestFactory{ConnectTimeout: c.ConnectTimeout, ReadTimeout: c.ReadTimeout}
}

// ParseKeyValues parses "key=value" pairs into a map. Later pairs win.
func ParseKeyValues(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid pair %q, want key=value", p)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = b
	return nil
}

// setMap merges pairs into dst unless the flag was set. Existing keys are
// overwritten.
func (s *configSetter) setMap(flag string, pairs map[string]string, dst *map[string]string) {
	if len(pairs) == 0 || s.changed[flag] {
		return
	}
	if *dst == nil {
		*dst = make(map[string]string, len(pairs))
	}
	for k, v := range pairs {
		(*dst)[k] = v
	}
}
