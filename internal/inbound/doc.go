// Package inbound turns files dropped into a directory into messages.
//
// A Watcher observes a directory with fsnotify. Each created or rewritten
// file that matches the configured pattern is read once writes settle and
// handed to a Handler as a message whose payload is the file content. The
// outbound executor satisfies Handler, so a watcher plus an executor forms
// a directory-to-HTTP bridge.
package inbound
