package client

import (
	"fmt"
	"mime"
	"net/http"
)

// Request is the outgoing request entity: headers plus an optional body.
// A nil Body means no body is sent.
type Request struct {
	Header http.Header
	Body   any
}

// NewRequest creates a Request with an empty header set.
func NewRequest(body any) *Request {
	return &Request{Header: make(http.Header), Body: body}
}

// Response is the decoded response entity.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       any

	hasBody bool
}

// HasBody reports whether a body was decoded.
func (r *Response) HasBody() bool {
	return r.hasBody
}

// Status returns the status line text, e.g. "200 OK".
func (r *Response) Status() string {
	return fmt.Sprintf("%d %s", r.StatusCode, http.StatusText(r.StatusCode))
}

func (r *Response) String() string {
	if r.hasBody {
		return fmt.Sprintf("<%s,%v,%v>", r.Status(), r.Body, r.Header)
	}
	return fmt.Sprintf("<%s,%v>", r.Status(), r.Header)
}

// RawResponse is the undecoded response handed to a ResponseErrorHandler.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// MediaType returns the media type of the Content-Type header without
// parameters, or "" if absent or malformed.
func (r *RawResponse) MediaType() string {
	return mediaTypeOf(r.Header)
}

func mediaTypeOf(h http.Header) string {
	ct := h.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}
