package outbound

import (
	"context"
	"net/http"

	"github.com/bft-labs/outbound/pkg/client"
	"github.com/bft-labs/outbound/pkg/log"
	"github.com/bft-labs/outbound/pkg/message"
)

// Expression computes a value from the message being handled.
type Expression func(ctx context.Context, msg *message.Message) (any, error)

// HeaderVariable returns an Expression reading a message header.
func HeaderVariable(name string) Expression {
	return func(_ context.Context, msg *message.Message) (any, error) {
		v, _ := msg.Header(name)
		return v, nil
	}
}

// PayloadVariable returns an Expression yielding the message payload.
func PayloadVariable() Expression {
	return func(_ context.Context, msg *message.Message) (any, error) {
		return msg.Payload(), nil
	}
}

// Option configures optional behavior of an Executor.
type Option func(*options)

type uriVariable struct {
	name string
	expr Expression
}

type options struct {
	expectReply      bool
	method           string
	methodExpr       Expression
	responseType     client.ResponseType
	responseTypeExpr Expression
	uriVariables     []uriVariable
	uriVariablesExpr Expression
	headerMapper     HeaderMapper
	extractPayload   bool
	transferCookies  bool
	name             string
	logger           log.Logger
}

func defaultOptions() options {
	return options{
		expectReply:    true,
		method:         http.MethodPost,
		responseType:   client.TypeOf[string](),
		headerMapper:   NewDefaultHeaderMapper(),
		extractPayload: true,
		logger:         log.Discard,
	}
}

// WithExpectReply selects gateway mode (true, the default) or
// channel-adapter mode (false). It is fixed for the executor's lifetime.
func WithExpectReply(expectReply bool) Option {
	return func(o *options) {
		o.expectReply = expectReply
	}
}

// WithHTTPMethod sets a fixed HTTP method. Default: POST.
func WithHTTPMethod(method string) Option {
	return func(o *options) {
		o.method = method
		o.methodExpr = nil
	}
}

// WithHTTPMethodExpression computes the HTTP method per message. The
// expression must yield a string.
func WithHTTPMethodExpression(expr Expression) Option {
	return func(o *options) {
		o.methodExpr = expr
	}
}

// WithExpectedResponseType sets how response bodies are decoded.
// Default: client.TypeOf[string]().
func WithExpectedResponseType(rt client.ResponseType) Option {
	return func(o *options) {
		o.responseType = rt
		o.responseTypeExpr = nil
	}
}

// WithExpectedResponseTypeExpression computes the expected response type per
// message. The result is converted with client.ResponseTypeOf.
func WithExpectedResponseTypeExpression(expr Expression) Option {
	return func(o *options) {
		o.responseTypeExpr = expr
	}
}

// WithURIVariable adds a variable used to expand template targets.
func WithURIVariable(name string, expr Expression) Option {
	return func(o *options) {
		o.uriVariables = append(o.uriVariables, uriVariable{name: name, expr: expr})
	}
}

// WithURIVariablesExpression computes a whole variable map per message. It
// must yield a map[string]any; named variables take precedence.
func WithURIVariablesExpression(expr Expression) Option {
	return func(o *options) {
		o.uriVariablesExpr = expr
	}
}

// WithHeaderMapper replaces the default header mapper.
func WithHeaderMapper(m HeaderMapper) Option {
	return func(o *options) {
		if m != nil {
			o.headerMapper = m
		}
	}
}

// WithExtractPayload controls whether the payload (true, the default) or
// the whole message is used as the request body.
func WithExtractPayload(extract bool) Option {
	return func(o *options) {
		o.extractPayload = extract
	}
}

// WithTransferCookies copies Set-Cookie response headers into the reply as Cookie.
func WithTransferCookies(transfer bool) Option {
	return func(o *options) {
		o.transferCookies = transfer
	}
}

// WithComponentName names the executor in logs and error descriptions.
func WithComponentName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = log.OrDiscard(logger)
	}
}
