// Package message provides the minimal message model exchanged between
// outbound adapters and the code that drives them.
//
// A [Message] carries a payload and an immutable set of [Headers]. Every
// message is stamped with a random ID and a creation timestamp. Use a
// [Builder] to derive new messages from existing ones:
//
//	reply := message.FromMessage(req).
//	    SetHeader("http_statusCode", 200).
//	    Build()
//
// Handlers report failures as a [*HandlingError], which keeps a reference
// to the message that could not be handled and the underlying cause.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package message
