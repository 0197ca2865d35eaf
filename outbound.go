// Package outbound sends messages as HTTP requests.
//
// Example usage:
//
//	ex, err := outbound.NewForURL("http://localhost:8080/orders/{id}",
//	    outbound.WithHTTPMethod(http.MethodGet),
//	    outbound.WithURIVariable("id", outbound.HeaderVariable("orderId")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reply, err := ex.HandleMessage(ctx, outbound.NewMessage(nil))
//
// The implementation lives in pkg/outbound, pkg/client, pkg/target and
// pkg/message; this package re-exports the common entry points.
package outbound

import (
	"github.com/bft-labs/outbound/pkg/client"
	"github.com/bft-labs/outbound/pkg/message"
	"github.com/bft-labs/outbound/pkg/outbound"
	"github.com/bft-labs/outbound/pkg/target"
)

// Executor sends messages as HTTP requests.
type Executor = outbound.Executor

// Option configures an Executor.
type Option = outbound.Option

// Message is an immutable payload plus headers.
type Message = message.Message

// HandlingError reports a failure to handle a message.
type HandlingError = message.HandlingError

// ResponseType describes how a response body is decoded.
type ResponseType = client.ResponseType

// Target describes where requests are sent.
type Target = target.Target

// New creates an executor owning a fluent client.
func New(t Target, opts ...Option) (*Executor, error) {
	return outbound.New(t, opts...)
}

// NewForURL creates an executor for a URL or URI template.
func NewForURL(uri string, opts ...Option) (*Executor, error) {
	return outbound.NewForURL(uri, opts...)
}

// NewWithTemplateClient creates an executor on an externally configured Template client.
func NewWithTemplateClient(t Target, tc *client.Template, opts ...Option) (*Executor, error) {
	return outbound.NewWithTemplateClient(t, tc, opts...)
}

// NewWithFluentClient creates an executor on an externally configured Fluent client.
func NewWithFluentClient(t Target, fc *client.Fluent, opts ...Option) (*Executor, error) {
	return outbound.NewWithFluentClient(t, fc, opts...)
}

// NewMessage creates a message with the given payload.
func NewMessage(payload any) *Message {
	return message.New(payload)
}

// Re-exported options.
var (
	WithExpectReply          = outbound.WithExpectReply
	WithHTTPMethod           = outbound.WithHTTPMethod
	WithExpectedResponseType = outbound.WithExpectedResponseType
	WithURIVariable          = outbound.WithURIVariable
	WithHeaderMapper         = outbound.WithHeaderMapper
	WithLogger               = outbound.WithLogger
	HeaderVariable           = outbound.HeaderVariable
	PayloadVariable          = outbound.PayloadVariable
)

// Version is the module version.
const Version = outbound.Version
