package message

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reserved header names set on every message.
const (
	HeaderID        = "id"
	HeaderTimestamp = "timestamp"
)

// Headers is a read-only view of message headers.
type Headers map[string]any

// Get returns the header value and whether it was present.
func (h Headers) Get(key string) (any, bool) {
	v, ok := h[key]
	return v, ok
}

// String returns the header value formatted as a string, or "" if absent.
func (h Headers) String(key string) string {
	v, ok := h[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Message is an immutable payload plus headers.
type Message struct {
	payload any
	headers Headers
}

// New creates a message with the given payload and no user headers.
func New(payload any) *Message {
	return WithPayload(payload).Build()
}

// Payload returns the message payload.
func (m *Message) Payload() any {
	return m.payload
}

// Headers returns a copy of the message headers.
func (m *Message) Headers() Headers {
	out := make(Headers, len(m.headers))
	for k, v := range m.headers {
		out[k] = v
	}
	return out
}

// Header returns a single header value.
func (m *Message) Header(key string) (any, bool) {
	return m.headers.Get(key)
}

// ID returns the message identifier.
func (m *Message) ID() uuid.UUID {
	id, _ := m.headers[HeaderID].(uuid.UUID)
	return id
}

// Timestamp returns the message creation time.
func (m *Message) Timestamp() time.Time {
	ts, _ := m.headers[HeaderTimestamp].(time.Time)
	return ts
}

// String implements fmt.Stringer.
func (m *Message) String() string {
	if m == nil {
		return "<nil message>"
	}
	return fmt.Sprintf("Message[payload=%v, headers=%v]", m.payload, map[string]any(m.headers))
}

// MarshalJSON encodes the message as {"payload": ..., "headers": {...}}.
func (m *Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Payload any     `json:"payload"`
		Headers Headers `json:"headers"`
	}{m.payload, m.headers})
}

// Builder assembles a new Message.
type Builder struct {
	payload any
	headers Headers
}

// WithPayload starts a builder for a message carrying payload.
func WithPayload(payload any) *Builder {
	return &Builder{payload: payload, headers: make(Headers)}
}

// FromMessage starts a builder seeded with the payload and user headers of m.
// The ID and timestamp are regenerated on Build.
func FromMessage(m *Message) *Builder {
	b := WithPayload(m.payload)
	for k, v := range m.headers {
		if k == HeaderID || k == HeaderTimestamp {
			continue
		}
		b.headers[k] = v
	}
	return b
}

// SetHeader sets a header. A nil value removes the header.
// Reserved headers are ignored.
func (b *Builder) SetHeader(key string, value any) *Builder {
	if key == HeaderID || key == HeaderTimestamp {
		return b
	}
	if value == nil {
		delete(b.headers, key)
		return b
	}
	b.headers[key] = value
	return b
}

// CopyHeaders sets every header in h, overwriting existing values.
func (b *Builder) CopyHeaders(h map[string]any) *Builder {
	for k, v := range h {
		b.SetHeader(k, v)
	}
	return b
}

// CopyHeadersIfAbsent sets the headers in h that are not already present.
func (b *Builder) CopyHeadersIfAbsent(h map[string]any) *Builder {
	for k, v := range h {
		if _, ok := b.headers[k]; ok {
			continue
		}
		b.SetHeader(k, v)
	}
	return b
}

// Build creates the message.
func (b *Builder) Build() *Message {
	headers := make(Headers, len(b.headers)+2)
	for k, v := range b.headers {
		headers[k] = v
	}
	headers[HeaderID] = uuid.New()
	headers[HeaderTimestamp] = time.Now()
	return &Message{payload: b.payload, headers: headers}
}
