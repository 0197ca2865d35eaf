package client

import (
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/bft-labs/outbound/pkg/log"
	"github.com/bft-labs/outbound/pkg/target"
)

// FluentBuilder accumulates transport settings for a Fluent client that is
// built once all of them are known. A builder is not safe for concurrent use.
type FluentBuilder struct {
	errorHandler   ResponseErrorHandler
	converters     Converters
	requestFactory RequestFactory
	encodingMode   target.EncodingMode
	logger         log.Logger
}

// NewFluentBuilder returns a builder with default settings.
func NewFluentBuilder() *FluentBuilder {
	return &FluentBuilder{}
}

// ErrorHandler sets the response error handler.
func (b *FluentBuilder) ErrorHandler(h ResponseErrorHandler) *FluentBuilder {
	b.errorHandler = h
	return b
}

// MessageConverters replaces the default converters.
func (b *FluentBuilder) MessageConverters(cs Converters) *FluentBuilder {
	b.converters = cs
	return b
}

// RequestFactory sets the source of the underlying *http.Client.
func (b *FluentBuilder) RequestFactory(f RequestFactory) *FluentBuilder {
	b.requestFactory = f
	return b
}

// EncodingMode sets how URI templates are encoded.
func (b *FluentBuilder) EncodingMode(m target.EncodingMode) *FluentBuilder {
	b.encodingMode = m
	return b
}

// Logger routes resty's internal warnings and errors to l.
func (b *FluentBuilder) Logger(l log.Logger) *FluentBuilder {
	b.logger = l
	return b
}

// Build creates the Fluent client.
func (b *FluentBuilder) Build() *Fluent {
	var rc *resty.Client
	if b.requestFactory != nil {
		rc = resty.NewWithClient(b.requestFactory.HTTPClient())
	} else {
		rc = resty.New()
	}
	rc.SetAllowGetMethodPayload(true)
	if b.logger != nil {
		rc.SetLogger(restyLogger{l: b.logger})
	}

	f := NewFluent(rc)
	if b.errorHandler != nil {
		f.errorHandler = b.errorHandler
	}
	if b.converters != nil {
		f.converters = b.converters
	}
	f.expander = target.Expander{Mode: b.encodingMode}
	return f
}

// restyLogger adapts log.Logger to resty.Logger.
type restyLogger struct {
	l log.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) {
	r.l.Error(fmt.Sprintf(format, v...), log.Component("resty"))
}

func (r restyLogger) Warnf(format string, v ...interface{}) {
	r.l.Warn(fmt.Sprintf(format, v...), log.Component("resty"))
}

func (r restyLogger) Debugf(format string, v ...interface{}) {
	r.l.Debug(fmt.Sprintf(format, v...), log.Component("resty"))
}
