// Package outbound provides the HTTP request-executing message handler.
//
// An [Executor] turns a message into an HTTP request, sends it through one
// of two client strategies and, in gateway mode, turns the response into a
// reply message:
//
//	ex, err := outbound.NewForURL("http://example.org/orders/{id}",
//	    outbound.WithHTTPMethod(http.MethodGet),
//	    outbound.WithURIVariable("id", outbound.HeaderVariable("orderId")),
//	    outbound.WithExpectedResponseType(client.TypeOf[Order]()),
//	)
//	ex.Initialize()
//	reply, err := ex.HandleMessage(ctx, msg)
//
// # Client strategies
//
// An executor either owns its client or uses one supplied by the caller:
//
//   - [New] and [NewForURL] build a fluent client during [Executor.Initialize].
//     Until then, [Executor.SetErrorHandler], [Executor.SetMessageConverters],
//     [Executor.SetRequestFactory] and [Executor.SetEncodingMode] configure it.
//   - [NewWithTemplateClient] and [NewWithFluentClient] use an externally
//     configured client. The transport setters then fail with a [*ConfigError].
//
// # Errors
//
// Every failure while resolving or executing a request is reported as a
// *message.HandlingError carrying the failed message and the cause. The one
// exception is an unsupported expected response type, a caller bug that is
// returned unwrapped as client.ErrUnsupportedResponseType.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package outbound
