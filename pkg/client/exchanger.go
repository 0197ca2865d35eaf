package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bft-labs/outbound/pkg/target"
)

// Exchanger performs one request/response round trip. It is the only
// capability an outbound handler needs from a client.
type Exchanger interface {
	// Exchange sends req to uri. vars fill in a template uri and are
	// ignored for a concrete URL.
	Exchange(ctx context.Context, uri target.Resolved, method string, req *Request, rt ResponseType, vars map[string]any) (*Response, error)

	// String identifies the underlying client.
	String() string
}

// TemplateExchanger adapts a Template client.
type TemplateExchanger struct {
	t *Template
}

// NewTemplateExchanger wraps t.
func NewTemplateExchanger(t *Template) *TemplateExchanger {
	return &TemplateExchanger{t: t}
}

// Exchange dispatches on URL versus template; the Template decodes
// concrete and generic types through the same converters.
func (e *TemplateExchanger) Exchange(ctx context.Context, uri target.Resolved, method string, req *Request, rt ResponseType, vars map[string]any) (*Response, error) {
	if u, ok := uri.URL(); ok {
		return e.t.Exchange(ctx, method, u, req, rt)
	}
	if tmpl, ok := uri.Template(); ok {
		return e.t.ExchangeTemplate(ctx, method, tmpl, req, rt, vars)
	}
	return nil, fmt.Errorf("%w: empty URI", target.ErrInvalidTarget)
}

func (e *TemplateExchanger) String() string { return e.t.String() }

// FluentExchanger adapts a Fluent client.
type FluentExchanger struct {
	f *Fluent
}

// NewFluentExchanger wraps f.
func NewFluentExchanger(f *Fluent) *FluentExchanger {
	return &FluentExchanger{f: f}
}

// Exchange builds a request spec from uri, copies every header of req,
// attaches the body only when it is non-nil, and retrieves the entity
// matching rt.
func (e *FluentExchanger) Exchange(ctx context.Context, uri target.Resolved, method string, req *Request, rt ResponseType, vars map[string]any) (*Response, error) {
	spec := e.f.Method(method)
	if u, ok := uri.URL(); ok {
		spec = spec.URL(u)
	} else if tmpl, ok := uri.Template(); ok {
		spec = spec.URI(tmpl, vars)
	} else {
		return nil, fmt.Errorf("%w: empty URI", target.ErrInvalidTarget)
	}

	if req != nil {
		spec = spec.Headers(func(h http.Header) {
			for k, vs := range req.Header {
				h[k] = append(h[k], vs...)
			}
		})
		if req.Body != nil {
			spec = spec.Body(req.Body)
		}
	}

	resp := spec.Retrieve(ctx)
	switch {
	case rt.IsNoBody():
		return resp.ToBodilessEntity()
	case rt.IsGeneric():
		return resp.ToEntityGeneric(rt)
	case rt.IsConcrete():
		return resp.ToEntity(rt.Type())
	default:
		return nil, rt.Validate()
	}
}

func (e *FluentExchanger) String() string { return e.f.String() }
