package outbound

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bft-labs/outbound/pkg/client"
	"github.com/bft-labs/outbound/pkg/message"
)

// Methods that never carry a request body.
var noBodyMethods = map[string]bool{
	http.MethodGet:   true,
	http.MethodHead:  true,
	http.MethodTrace: true,
}

func (e *Executor) resolveResponseType(ctx context.Context, msg *message.Message) (client.ResponseType, error) {
	if e.opts.responseTypeExpr == nil {
		return e.opts.responseType, e.opts.responseType.Validate()
	}
	v, err := e.opts.responseTypeExpr(ctx, msg)
	if err != nil {
		return client.ResponseType{}, err
	}
	return client.ResponseTypeOf(v)
}

func (e *Executor) resolveMethod(ctx context.Context, msg *message.Message) (string, error) {
	method := e.opts.method
	if e.opts.methodExpr != nil {
		v, err := e.opts.methodExpr(ctx, msg)
		if err != nil {
			return "", err
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("HTTP method expression returned %T, want string", v)
		}
		method = s
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" || strings.ContainsAny(method, " \t\r\n") {
		return "", fmt.Errorf("invalid HTTP method %q", method)
	}
	return method, nil
}

func (e *Executor) resolveURIVariables(ctx context.Context, msg *message.Message) (map[string]any, error) {
	vars := make(map[string]any)
	if e.opts.uriVariablesExpr != nil {
		v, err := e.opts.uriVariablesExpr(ctx, msg)
		if err != nil {
			return nil, err
		}
		switch m := v.(type) {
		case nil:
		case map[string]any:
			for k, val := range m {
				vars[k] = val
			}
		case map[string]string:
			for k, val := range m {
				vars[k] = val
			}
		default:
			return nil, fmt.Errorf("URI variables expression returned %T, want map[string]any", v)
		}
	}
	for _, uv := range e.opts.uriVariables {
		v, err := uv.expr(ctx, msg)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", uv.name, err)
		}
		vars[uv.name] = v
	}
	return vars, nil
}

func (e *Executor) buildRequest(msg *message.Message, method string) *client.Request {
	req := &client.Request{Header: e.opts.headerMapper.FromHeaders(msg.Headers())}
	if noBodyMethods[method] {
		return req
	}
	if e.opts.extractPayload {
		req.Body = msg.Payload()
	} else {
		req.Body = msg
	}
	return req
}

// reply builds the reply message. A response body becomes the payload, or
// the reply itself when it already is a message; without a body the
// payload is the *client.Response.
func (e *Executor) reply(resp *client.Response) *message.Message {
	headers := e.opts.headerMapper.ToHeaders(resp.Header)
	if e.opts.transferCookies {
		transferCookies(headers)
	}

	var b *message.Builder
	switch {
	case !resp.HasBody():
		b = message.WithPayload(resp)
	default:
		if m, ok := resp.Body.(*message.Message); ok {
			b = message.FromMessage(m)
		} else {
			b = message.WithPayload(resp.Body)
		}
	}
	b.SetHeader(HeaderStatusCode, resp.StatusCode)
	return b.CopyHeaders(headers).Build()
}

// transferCookies renames Set-Cookie to Cookie so the reply can be sent on
// as a follow-up request.
func transferCookies(headers map[string]any) {
	for k, v := range headers {
		if strings.EqualFold(k, "Set-Cookie") {
			delete(headers, k)
			headers["Cookie"] = v
			return
		}
	}
}
