package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bft-labs/outbound/pkg/target"
)

// Template is the synchronous client. Configure it with the setters before
// first use; it is safe for concurrent use afterwards.
type Template struct {
	client       HTTPClient
	errorHandler ResponseErrorHandler
	converters   Converters
	expander     target.Expander
}

// NewTemplate creates a Template on top of client. A nil client uses a
// default *http.Client.
func NewTemplate(client HTTPClient) *Template {
	if client == nil {
		client = &http.Client{}
	}
	return &Template{
		client:       client,
		errorHandler: DefaultErrorHandler{},
		converters:   DefaultConverters(),
	}
}

// SetErrorHandler replaces the response error handler. A nil h is ignored.
func (t *Template) SetErrorHandler(h ResponseErrorHandler) {
	if h == nil {
		return
	}
	t.errorHandler = h
}

// SetMessageConverters replaces the default converters. A nil cs is ignored.
func (t *Template) SetMessageConverters(cs Converters) {
	if cs == nil {
		return
	}
	t.converters = cs
}

// SetRequestFactory replaces the HTTP client with the one produced by f.
// A nil f, or a factory that produces no client, is ignored.
func (t *Template) SetRequestFactory(f RequestFactory) {
	if f == nil {
		return
	}
	if c := f.HTTPClient(); c != nil {
		t.client = c
	}
}

// SetEncodingMode sets how URI templates are encoded.
func (t *Template) SetEncodingMode(m target.EncodingMode) {
	t.expander = target.Expander{Mode: m}
}

// Exchange executes a request against a concrete URL. No variable substitution is performed.
func (t *Template) Exchange(ctx context.Context, method string, u *url.URL, req *Request, rt ResponseType) (*Response, error) {
	return t.execute(ctx, method, u, req, rt)
}

// ExchangeTemplate expands tmpl with vars and executes the request.
func (t *Template) ExchangeTemplate(ctx context.Context, method, tmpl string, req *Request, rt ResponseType, vars map[string]any) (*Response, error) {
	u, err := t.expander.Expand(tmpl, vars)
	if err != nil {
		return nil, fmt.Errorf("expand %q: %w", tmpl, err)
	}
	return t.execute(ctx, method, u, req, rt)
}

func (t *Template) execute(ctx context.Context, method string, u *url.URL, req *Request, rt ResponseType) (*Response, error) {
	if err := rt.Validate(); err != nil {
		return nil, err
	}
	if req == nil {
		req = &Request{}
	}
	urlStr := u.String()
	header := cloneHeader(req.Header)

	var body io.Reader
	if req.Body != nil {
		data, err := encodeBody(t.converters, req.Body, header)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		httpReq.Header[k] = vs
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Method: method, URL: urlStr, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: urlStr, Err: fmt.Errorf("read body: %w", err)}
	}

	raw := &RawResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: respBody}
	if t.errorHandler.HasError(raw) {
		if err := t.errorHandler.HandleError(method, urlStr, raw); err != nil {
			return nil, err
		}
	}
	return decodeResponse(t.converters, rt, raw)
}

func (t *Template) String() string {
	return fmt.Sprintf("Template@%p", t)
}
