// Package target resolves where an outbound request is sent.
//
// A [Target] is either a literal URL, a literal URI template, or an
// expression evaluated against each message. Resolving a target yields a
// [Resolved] value: a concrete URL that is used verbatim, or a template
// that an [Expander] fills in with URI variables.
//
// Template expansion honours an [EncodingMode]:
//
//	e := target.Expander{Mode: target.ValuesOnly}
//	u, err := e.Expand("http://example.org/users/{id}", map[string]any{"id": 42})
package target
