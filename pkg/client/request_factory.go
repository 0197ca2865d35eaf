package client

import (
	"net"
	"net/http"
	"time"
)

// RequestFactory supplies the underlying *http.Client, and with it the
// connection, timeout and proxy settings of a client.
type RequestFactory interface {
	HTTPClient() *http.Client
}

// RequestFactoryFunc adapts a function to RequestFactory.
type RequestFactoryFunc func() *http.Client

// HTTPClient calls f.
func (f RequestFactoryFunc) HTTPClient() *http.Client { return f() }

// SimpleRequestFactory builds an *http.Client with connect and read timeouts.
// Zero timeouts mean no limit.
type SimpleRequestFactory struct {
	// ConnectTimeout bounds dialing the remote host.
	ConnectTimeout time.Duration

	// ReadTimeout bounds waiting for response headers after the request is written.
	ReadTimeout time.Duration
}

// HTTPClient builds a new client from the factory settings.
func (f SimpleRequestFactory) HTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if f.ConnectTimeout > 0 {
		dialer := &net.Dialer{Timeout: f.ConnectTimeout, KeepAlive: 30 * time.Second}
		transport.DialContext = dialer.DialContext
		transport.TLSHandshakeTimeout = f.ConnectTimeout
	}
	if f.ReadTimeout > 0 {
		transport.ResponseHeaderTimeout = f.ReadTimeout
	}
	return &http.Client{Transport: transport}
}
