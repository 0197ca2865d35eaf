package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"

	"github.com/go-resty/resty/v2"

	"github.com/bft-labs/outbound/pkg/target"
)

// Fluent is the request-spec style client, backed by a resty client.
// It is immutable and safe for concurrent use.
type Fluent struct {
	rc           *resty.Client
	errorHandler ResponseErrorHandler
	converters   Converters
	expander     target.Expander
}

// NewFluent wraps rc with the default error handler and converters.
// A nil rc creates a default resty client that allows GET payloads.
func NewFluent(rc *resty.Client) *Fluent {
	if rc == nil {
		rc = resty.New().SetAllowGetMethodPayload(true)
	}
	return &Fluent{
		rc:           rc,
		errorHandler: DefaultErrorHandler{},
		converters:   DefaultConverters(),
	}
}

// Resty returns the underlying resty client.
func (f *Fluent) Resty() *resty.Client {
	return f.rc
}

// Method starts a request with the given HTTP method.
func (f *Fluent) Method(method string) *RequestSpec {
	return &RequestSpec{f: f, method: method, header: make(http.Header)}
}

func (f *Fluent) String() string {
	return fmt.Sprintf("Fluent@%p", f)
}

// RequestSpec describes one request. Errors raised while building it are
// reported when the response is retrieved.
type RequestSpec struct {
	f       *Fluent
	method  string
	url     string
	header  http.Header
	body    any
	hasBody bool
	err     error
}

// URL targets a concrete URL.
func (s *RequestSpec) URL(u *url.URL) *RequestSpec {
	s.url = u.String()
	return s
}

// URI targets a template expanded with vars.
func (s *RequestSpec) URI(tmpl string, vars map[string]any) *RequestSpec {
	u, err := s.f.expander.Expand(tmpl, vars)
	if err != nil {
		s.err = fmt.Errorf("expand %q: %w", tmpl, err)
		return s
	}
	s.url = u.String()
	return s
}

// Headers lets fn edit the request headers.
func (s *RequestSpec) Headers(fn func(http.Header)) *RequestSpec {
	fn(s.header)
	return s
}

// Body sets the request body.
func (s *RequestSpec) Body(v any) *RequestSpec {
	s.body = v
	s.hasBody = true
	return s
}

// Retrieve prepares the exchange. The request is sent by one of the
// ResponseSpec methods.
func (s *RequestSpec) Retrieve(ctx context.Context) *ResponseSpec {
	return &ResponseSpec{ctx: ctx, spec: s}
}

// ResponseSpec turns the retrieved response into an entity.
type ResponseSpec struct {
	ctx  context.Context
	spec *RequestSpec
}

// ToBodilessEntity sends the request and ignores the response body.
func (r *ResponseSpec) ToBodilessEntity() (*Response, error) {
	return r.exchange(NoBody())
}

// ToEntity sends the request and decodes the body into t.
func (r *ResponseSpec) ToEntity(t reflect.Type) (*Response, error) {
	return r.exchange(Concrete(t))
}

// ToEntityGeneric sends the request and decodes the body into the
// parameterized type carried by rt.
func (r *ResponseSpec) ToEntityGeneric(rt ResponseType) (*Response, error) {
	if !rt.IsGeneric() {
		return nil, fmt.Errorf("%w: %s is not generic", ErrUnsupportedResponseType, rt)
	}
	return r.exchange(rt)
}

func (r *ResponseSpec) exchange(rt ResponseType) (*Response, error) {
	if err := rt.Validate(); err != nil {
		return nil, err
	}
	s := r.spec
	if s.err != nil {
		return nil, s.err
	}
	f := s.f

	var data []byte
	if s.hasBody && s.body != nil {
		var err error
		if data, err = encodeBody(f.converters, s.body, s.header); err != nil {
			return nil, err
		}
	}

	var raw *RawResponse
	var err error
	if data != nil && !payloadSupported(f.rc, s.method) {
		raw, err = f.sendDirect(r.ctx, s, data)
	} else {
		raw, err = f.send(r.ctx, s, data)
	}
	if err != nil {
		return nil, err
	}

	if f.errorHandler.HasError(raw) {
		if err := f.errorHandler.HandleError(s.method, s.url, raw); err != nil {
			return nil, err
		}
	}
	return decodeResponse(f.converters, rt, raw)
}

func (f *Fluent) send(ctx context.Context, s *RequestSpec, data []byte) (*RawResponse, error) {
	req := f.rc.R().SetContext(ctx)
	if data != nil {
		req.SetBody(data)
	}
	for k, vs := range s.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := req.Execute(s.method, s.url)
	if err != nil {
		return nil, &TransportError{Method: s.method, URL: s.url, Err: err}
	}
	return &RawResponse{StatusCode: resp.StatusCode(), Header: resp.Header(), Body: resp.Body()}, nil
}

// sendDirect sends the request on the resty client's *http.Client. resty
// drops the payload of HEAD and OPTIONS requests, and of GET requests
// unless the client allows it.
func (f *Fluent) sendDirect(ctx context.Context, s *RequestSpec, data []byte) (*RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, s.method, s.url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = cloneHeader(f.rc.Header)
	for k, vs := range s.header {
		req.Header[k] = append([]string(nil), vs...)
	}

	resp, err := f.rc.GetClient().Do(req)
	if err != nil {
		return nil, &TransportError{Method: s.method, URL: s.url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: s.method, URL: s.url, Err: fmt.Errorf("read body: %w", err)}
	}
	return &RawResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func payloadSupported(rc *resty.Client, method string) bool {
	switch method {
	case http.MethodHead, http.MethodOptions:
		return false
	case http.MethodGet:
		return rc.AllowGetMethodPayload
	}
	return true
}
