package client

import (
	"fmt"
	"net/http"
)

// TransportError reports an I/O failure while executing a request.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("I/O error on %s request for %q: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError reports a response status rejected by the error handler.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *StatusError) Error() string {
	kind := "HTTP error"
	switch {
	case e.IsClientError():
		kind = "client error"
	case e.IsServerError():
		kind = "server error"
	}
	msg := fmt.Sprintf("%s: %d %s on %s request for %q", kind, e.StatusCode, http.StatusText(e.StatusCode), e.Method, e.URL)
	if len(e.Body) > 0 {
		msg += ": " + truncate(string(e.Body), 200)
	}
	return msg
}

// IsClientError reports a 4xx status.
func (e *StatusError) IsClientError() bool { return e.StatusCode/100 == 4 }

// IsServerError reports a 5xx status.
func (e *StatusError) IsServerError() bool { return e.StatusCode/100 == 5 }

// ConversionError reports a failure to encode a request body or decode a response body.
type ConversionError struct {
	Op        string // "read" or "write"
	Type      string
	MediaType string
	Err       error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s %s as %q: %v", e.Op, e.Type, e.MediaType, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ResponseErrorHandler decides which responses are failures.
type ResponseErrorHandler interface {
	// HasError reports whether resp is a failure.
	HasError(resp *RawResponse) bool

	// HandleError converts a failed response into an error.
	HandleError(method, url string, resp *RawResponse) error
}

// DefaultErrorHandler treats 4xx and 5xx responses as *StatusError.
type DefaultErrorHandler struct{}

// HasError reports a 4xx or 5xx status.
func (DefaultErrorHandler) HasError(resp *RawResponse) bool {
	return resp.StatusCode >= 400
}

// HandleError returns a *StatusError.
func (DefaultErrorHandler) HandleError(method, url string, resp *RawResponse) error {
	return &StatusError{
		Method:     method,
		URL:        url,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}
}

// NoopErrorHandler accepts every response.
type NoopErrorHandler struct{}

// HasError always returns false.
func (NoopErrorHandler) HasError(*RawResponse) bool { return false }

// HandleError always returns nil.
func (NoopErrorHandler) HandleError(string, string, *RawResponse) error { return nil }
