package outbound

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/bft-labs/outbound/pkg/message"
)

// Header names used on reply messages.
const (
	// HeaderStatusCode carries the HTTP status code of the response.
	HeaderStatusCode = "http_statusCode"

	// HeaderContentType is the message-level content type header. It maps
	// to and from the HTTP Content-Type header.
	HeaderContentType = "contentType"
)

// HeaderMapper converts between message headers and HTTP headers.
type HeaderMapper interface {
	// FromHeaders selects the message headers sent with the request.
	FromHeaders(h message.Headers) http.Header

	// ToHeaders selects the response headers copied onto the reply.
	ToHeaders(h http.Header) map[string]any
}

// standardRequestHeaders are mapped outbound by default. Content-Length,
// Host and Connection are managed by the transport.
var standardRequestHeaders = []string{
	"Accept", "Accept-Charset", "Accept-Encoding", "Accept-Language", "Accept-Datetime",
	"Authorization", "Cache-Control", "Content-MD5", "Content-Type", "Cookie", "Date",
	"Expect", "From", "If-Match", "If-Modified-Since", "If-None-Match", "If-Range",
	"If-Unmodified-Since", "Max-Forwards", "Origin", "Pragma", "Proxy-Authorization",
	"Range", "Referer", "TE", "Upgrade", "User-Agent", "Via", "Warning",
}

// DefaultHeaderMapper maps headers by case-insensitive name patterns. A
// pattern may use '*' wildcards ("X-*").
type DefaultHeaderMapper struct {
	// Outbound patterns select message headers sent as HTTP headers.
	Outbound []string

	// Inbound patterns select response headers copied to the reply.
	Inbound []string
}

// NewDefaultHeaderMapper maps the standard request headers outbound and
// every response header inbound.
func NewDefaultHeaderMapper() *DefaultHeaderMapper {
	return &DefaultHeaderMapper{
		Outbound: append([]string(nil), standardRequestHeaders...),
		Inbound:  []string{"*"},
	}
}

// FromHeaders implements HeaderMapper.
func (m *DefaultHeaderMapper) FromHeaders(h message.Headers) http.Header {
	out := make(http.Header)
	for k, v := range h {
		if k == message.HeaderID || k == message.HeaderTimestamp || v == nil {
			continue
		}
		name := k
		if k == HeaderContentType {
			name = "Content-Type"
		}
		if !matchAny(m.Outbound, name) {
			continue
		}
		switch t := v.(type) {
		case []string:
			for _, s := range t {
				out.Add(name, s)
			}
		default:
			out.Add(name, fmt.Sprint(v))
		}
	}
	return out
}

// ToHeaders implements HeaderMapper. Single values are mapped as string,
// repeated ones as []string.
func (m *DefaultHeaderMapper) ToHeaders(h http.Header) map[string]any {
	out := make(map[string]any)
	for k, vs := range h {
		if len(vs) == 0 || !matchAny(m.Inbound, k) {
			continue
		}
		name := k
		if http.CanonicalHeaderKey(k) == "Content-Type" {
			name = HeaderContentType
		}
		if len(vs) == 1 {
			out[name] = vs[0]
		} else {
			out[name] = append([]string(nil), vs...)
		}
	}
	return out
}

func matchAny(patterns []string, name string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if ok, _ := path.Match(strings.ToLower(p), lower); ok {
			return true
		}
	}
	return false
}
