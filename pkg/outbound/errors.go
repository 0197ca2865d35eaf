package outbound

import (
	"errors"
	"fmt"
)

var (
	// ErrExternalClient is returned when a transport option is set on an
	// executor that uses an externally configured client.
	ErrExternalClient = errors.New("outbound: externally configured client")

	// ErrAlreadyInitialized is returned when a transport option is set after
	// the owned client was built.
	ErrAlreadyInitialized = errors.New("outbound: already initialized")

	// ErrNilClient is returned when a nil external client is supplied.
	ErrNilClient = errors.New("outbound: client must not be nil")
)

// ConfigError reports a transport option that must be set on the externally
// configured client instead of on the executor.
type ConfigError struct {
	// Option names the rejected setting.
	Option string

	// Client describes the externally configured client.
	Client string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("the option %q must be provided on the externally configured %s", e.Option, e.Client)
}

func (e *ConfigError) Unwrap() error { return ErrExternalClient }
