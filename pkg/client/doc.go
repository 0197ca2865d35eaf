// Package client provides the HTTP client strategies used by outbound
// message handlers.
//
// Two interchangeable clients are available:
//
//   - [Template]: a synchronous, setter-configured client built directly on
//     an [HTTPClient] (the standard *http.Client satisfies it).
//   - [Fluent]: a request-spec style client backed by go-resty.
//
// Both decode responses according to a [ResponseType], a closed variant of
// "no body", a concrete type, or a generic (parameterized) type:
//
//	resp, err := fluent.Method(http.MethodGet).
//	    URI("http://example.org/users/{id}", map[string]any{"id": 7}).
//	    Retrieve(ctx).
//	    ToEntity(reflect.TypeOf(User{}))
//
// Handlers talk to either client through the single-method [Exchanger]
// interface; see [NewTemplateExchanger] and [NewFluentExchanger].
//
// A [FluentBuilder] accumulates transport settings (error handler, message
// converters, request factory, URI encoding mode) and produces a Fluent
// client once all of them are known.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package client
