package outbound

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/outbound/pkg/client"
	"github.com/bft-labs/outbound/pkg/log"
	"github.com/bft-labs/outbound/pkg/message"
	"github.com/bft-labs/outbound/pkg/target"
)

// Component types reported by ComponentType.
const (
	ComponentTypeGateway        = "outbound-gateway"
	ComponentTypeChannelAdapter = "outbound-channel-adapter"
)

// State is the lifecycle state of an Executor.
type State int32

const (
	// StateUnconfigured means the executor was constructed but not initialized.
	// Transport options of an owned client may still change.
	StateUnconfigured State = iota

	// StateActive means the client strategy is fixed and exchanges are permitted.
	StateActive
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateActive:
		return "active"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

type exchangerRef struct {
	ex client.Exchanger
}

// Executor sends messages as HTTP requests. After Initialize it is safe for
// concurrent use.
type Executor struct {
	target target.Target
	opts   options

	// externalClient describes the caller-supplied client, "" when owned.
	externalClient string

	mu      sync.Mutex
	builder *client.FluentBuilder

	initOnce  sync.Once
	exchanger atomic.Pointer[exchangerRef]
	state     atomic.Int32
}

// New creates an executor that owns a fluent client. The client is built
// by Initialize from the options set in between.
func New(t target.Target, opts ...Option) (*Executor, error) {
	e, err := newExecutor(t, opts)
	if err != nil {
		return nil, err
	}
	e.builder = client.NewFluentBuilder()
	return e, nil
}

// NewForURL is New with a template target. uri must not be empty.
func NewForURL(uri string, opts ...Option) (*Executor, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("%w: URI is required", target.ErrInvalidTarget)
	}
	return New(target.Template(uri), opts...)
}

// NewWithTemplateClient creates an executor using an externally configured Template client.
func NewWithTemplateClient(t target.Target, tc *client.Template, opts ...Option) (*Executor, error) {
	if tc == nil {
		return nil, fmt.Errorf("template client: %w", ErrNilClient)
	}
	e, err := newExecutor(t, opts)
	if err != nil {
		return nil, err
	}
	e.externalClient = "template client " + tc.String()
	e.exchanger.Store(&exchangerRef{ex: client.NewTemplateExchanger(tc)})
	return e, nil
}

// NewWithFluentClient creates an executor using an externally configured Fluent client.
func NewWithFluentClient(t target.Target, fc *client.Fluent, opts ...Option) (*Executor, error) {
	if fc == nil {
		return nil, fmt.Errorf("fluent client: %w", ErrNilClient)
	}
	e, err := newExecutor(t, opts)
	if err != nil {
		return nil, err
	}
	e.externalClient = "fluent client " + fc.String()
	e.exchanger.Store(&exchangerRef{ex: client.NewFluentExchanger(fc)})
	return e, nil
}

func newExecutor(t target.Target, opts []Option) (*Executor, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: target is required", target.ErrInvalidTarget)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Executor{target: t, opts: o}, nil
}

// ComponentType returns "outbound-gateway" in gateway mode and
// "outbound-channel-adapter" otherwise.
func (e *Executor) ComponentType() string {
	if e.opts.expectReply {
		return ComponentTypeGateway
	}
	return ComponentTypeChannelAdapter
}

// ExpectReply reports whether the executor produces replies.
func (e *Executor) ExpectReply() bool {
	return e.opts.expectReply
}

// State returns the lifecycle state.
func (e *Executor) State() State {
	return State(e.state.Load())
}

// ExternallyConfigured reports whether the client was supplied by the caller.
func (e *Executor) ExternallyConfigured() bool {
	return e.externalClient != ""
}

func (e *Executor) String() string {
	if e.opts.name != "" {
		return e.opts.name
	}
	return fmt.Sprintf("%s[%s]", e.ComponentType(), e.target)
}

// SetErrorHandler sets the response error handler of the owned client.
func (e *Executor) SetErrorHandler(h client.ResponseErrorHandler) error {
	return e.configure("errorHandler", func(b *client.FluentBuilder) { b.ErrorHandler(h) })
}

// SetMessageConverters replaces the converters of the owned client.
func (e *Executor) SetMessageConverters(cs client.Converters) error {
	return e.configure("messageConverters", func(b *client.FluentBuilder) { b.MessageConverters(cs) })
}

// SetRequestFactory sets the request factory of the owned client.
func (e *Executor) SetRequestFactory(f client.RequestFactory) error {
	return e.configure("requestFactory", func(b *client.FluentBuilder) { b.RequestFactory(f) })
}

// SetEncodingMode sets the URI template encoding of the owned client.
func (e *Executor) SetEncodingMode(m target.EncodingMode) error {
	return e.configure("encodingMode on URI template handler", func(b *client.FluentBuilder) { b.EncodingMode(m) })
}

func (e *Executor) configure(option string, apply func(*client.FluentBuilder)) error {
	if e.externalClient != "" {
		return &ConfigError{Option: option, Client: e.externalClient}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.builder == nil {
		return fmt.Errorf("set %s: %w", option, ErrAlreadyInitialized)
	}
	apply(e.builder)
	return nil
}

// Initialize builds the owned client, if any, and activates the executor.
// Later calls do nothing.
func (e *Executor) Initialize() {
	e.initOnce.Do(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.builder != nil {
			fc := e.builder.Logger(e.opts.logger).Build()
			e.exchanger.Store(&exchangerRef{ex: client.NewFluentExchanger(fc)})
			e.builder = nil
		}
		e.state.Store(int32(StateActive))
		e.opts.logger.Debug("outbound executor initialized",
			log.Component(e.String()),
			log.Bool("external_client", e.externalClient != ""))
	})
}

// Exchange performs one request/response round trip. uri is used as is when
// it is a URL and expanded with vars when it is a template. msg is only
// used to attribute failures.
//
// In gateway mode the reply message is returned; in channel-adapter mode
// the result is nil. An invalid rt yields client.ErrUnsupportedResponseType
// before anything is sent; every other failure is a *message.HandlingError.
func (e *Executor) Exchange(ctx context.Context, uri target.Resolved, method string, req *client.Request, rt client.ResponseType, msg *message.Message, vars map[string]any) (*message.Message, error) {
	if err := rt.Validate(); err != nil {
		return nil, err
	}
	e.Initialize()

	start := time.Now()
	resp, err := e.exchanger.Load().ex.Exchange(ctx, uri, method, req, rt, vars)
	if err != nil {
		e.opts.logger.Error("HTTP request execution failed",
			log.Component(e.String()), log.Method(method), log.URI(uri.String()), log.Err(err))
		return nil, message.NewHandlingError(msg,
			fmt.Sprintf("HTTP request execution failed for URI [%s] in the [%s]", uri, e), err)
	}

	e.opts.logger.Debug("HTTP request executed",
		log.Component(e.String()),
		log.Method(method),
		log.URI(uri.String()),
		log.Status(resp.StatusCode),
		log.Duration("took", time.Since(start)))

	if !e.opts.expectReply {
		return nil, nil
	}
	return e.reply(resp), nil
}

// HandleMessage resolves the target, method, URI variables, expected response
// type, headers and body for msg and performs the exchange.
func (e *Executor) HandleMessage(ctx context.Context, msg *message.Message) (*message.Message, error) {
	rt, err := e.resolveResponseType(ctx, msg)
	if err != nil {
		if errors.Is(err, client.ErrUnsupportedResponseType) {
			return nil, err
		}
		return nil, e.handlingError(msg, "failed to evaluate expected response type", err)
	}

	uri, err := e.target.Resolve(ctx, msg)
	if err != nil {
		return nil, e.handlingError(msg, "failed to resolve URI", err)
	}

	method, err := e.resolveMethod(ctx, msg)
	if err != nil {
		return nil, e.handlingError(msg, "failed to determine HTTP method", err)
	}

	vars, err := e.resolveURIVariables(ctx, msg)
	if err != nil {
		return nil, e.handlingError(msg, "failed to evaluate URI variables", err)
	}

	return e.Exchange(ctx, uri, method, e.buildRequest(msg, method), rt, msg, vars)
}

func (e *Executor) handlingError(msg *message.Message, what string, err error) error {
	return message.NewHandlingError(msg, fmt.Sprintf("%s in the [%s]", what, e), err)
}
