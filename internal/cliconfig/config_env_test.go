package cliconfig

import (
	"reflect"
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"OUTBOUND_URL":          "http://env.example.com",
				"OUTBOUND_METHOD":       "PUT",
				"OUTBOUND_READ_TIMEOUT": "10m",
				"OUTBOUND_EXPECT_REPLY": "false",
			},
			changed: map[string]bool{},
			initial: Config{ExpectReply: true},
			expected: Config{
				URL:         "http://env.example.com",
				Method:      "PUT",
				ReadTimeout: 10 * time.Minute,
				ExpectReply: false,
			},
			wantErr: false,
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"OUTBOUND_URL":    "http://env.example.com",
				"OUTBOUND_METHOD": "PUT",
			},
			changed: map[string]bool{"url": true},
			initial: Config{
				URL: "http://flag.example.com",
			},
			expected: Config{
				URL:    "http://flag.example.com",
				Method: "PUT",
			},
			wantErr: false,
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"OUTBOUND_CONNECT_TIMEOUT": "not-a-duration",
			},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{},
			wantErr:  true,
		},
		{
			name: "returns error for invalid bool",
			envVars: map[string]string{
				"OUTBOUND_EXPECT_REPLY": "maybe",
			},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{},
			wantErr:  true,
		},
		{
			name: "returns error for invalid pairs",
			envVars: map[string]string{
				"OUTBOUND_HEADERS": "Accept",
			},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{},
			wantErr:  true,
		},
		{
			name: "handles bool '1' as true",
			envVars: map[string]string{
				"OUTBOUND_EXPECT_REPLY": "1",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				ExpectReply: true,
			},
			wantErr: false,
		},
		{
			name: "handles all field types correctly",
			envVars: map[string]string{
				"OUTBOUND_URL":             "http://example.com/{id}",
				"OUTBOUND_METHOD":          "DELETE",
				"OUTBOUND_RESPONSE_TYPE":   "none",
				"OUTBOUND_ENCODING_MODE":   "values_only",
				"OUTBOUND_EXPECT_REPLY":    "true",
				"OUTBOUND_HEADERS":         "Accept=text/plain,X-Tenant=acme",
				"OUTBOUND_VARS":            "id=9",
				"OUTBOUND_CONNECT_TIMEOUT": "1s",
				"OUTBOUND_READ_TIMEOUT":    "2s",
				"OUTBOUND_WATCH_DIR":       "/spool",
				"OUTBOUND_WATCH_PATTERN":   "*.txt",
				"OUTBOUND_WATCH_DEBOUNCE":  "1s",
				"OUTBOUND_CONTENT_TYPE":    "text/plain",
				"OUTBOUND_LOG_LEVEL":       "warn",
				"OUTBOUND_LOG_FORMAT":      "json",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				URL:            "http://example.com/{id}",
				Method:         "DELETE",
				ResponseType:   "none",
				EncodingMode:   "values_only",
				ExpectReply:    true,
				Headers:        map[string]string{"Accept": "text/plain", "X-Tenant": "acme"},
				Vars:           map[string]string{"id": "9"},
				ConnectTimeout: time.Second,
				ReadTimeout:    2 * time.Second,
				WatchDir:       "/spool",
				WatchPattern:   "*.txt",
				WatchDebounce:  time.Second,
				ContentType:    "text/plain",
				LogLevel:       "warn",
				LogFormat:      "json",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyEnvConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyEnvConfig() unexpected error: %v", err)
				return
			}

			if !tt.wantErr && !reflect.DeepEqual(cfg, tt.expected) {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}
