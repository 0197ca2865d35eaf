package target

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/bft-labs/outbound/pkg/message"
)

// ErrInvalidTarget is returned when a target cannot be resolved to a URL or template.
var ErrInvalidTarget = errors.New("target: invalid target")

// Target describes where a request is sent. It is created once and
// resolved for every message.
type Target interface {
	// Resolve evaluates the target against msg.
	Resolve(ctx context.Context, msg *message.Message) (Resolved, error)

	// String describes the target for diagnostics.
	String() string
}

// Resolved is the outcome of resolving a Target: either a concrete URL,
// which is used as is, or a template string that still needs variable expansion.
type Resolved struct {
	url      *url.URL
	template string
}

// ResolvedURL wraps a concrete URL.
func ResolvedURL(u *url.URL) Resolved {
	return Resolved{url: u}
}

// ResolvedTemplate wraps a template string.
func ResolvedTemplate(s string) Resolved {
	return Resolved{template: s}
}

// FromValue converts an expression result into a Resolved target.
// Accepted values are *url.URL, url.URL and string.
func FromValue(v any) (Resolved, error) {
	switch t := v.(type) {
	case *url.URL:
		if t == nil {
			return Resolved{}, fmt.Errorf("%w: nil URL", ErrInvalidTarget)
		}
		return ResolvedURL(t), nil
	case url.URL:
		return ResolvedURL(&t), nil
	case string:
		if t == "" {
			return Resolved{}, fmt.Errorf("%w: empty URI", ErrInvalidTarget)
		}
		return ResolvedTemplate(t), nil
	default:
		return Resolved{}, fmt.Errorf("%w: unsupported value of type %T", ErrInvalidTarget, v)
	}
}

// URL returns the concrete URL, if this is one.
func (r Resolved) URL() (*url.URL, bool) {
	return r.url, r.url != nil
}

// Template returns the template string, if this is one.
func (r Resolved) Template() (string, bool) {
	return r.template, r.url == nil && r.template != ""
}

// IsZero reports whether r holds neither a URL nor a template.
func (r Resolved) IsZero() bool {
	return r.url == nil && r.template == ""
}

func (r Resolved) String() string {
	if r.url != nil {
		return r.url.String()
	}
	return r.template
}

type literalURL struct {
	u *url.URL
}

// Literal returns a target that always resolves to u. No variable
// substitution is performed on it.
func Literal(u *url.URL) Target {
	return literalURL{u: u}
}

func (l literalURL) Resolve(context.Context, *message.Message) (Resolved, error) {
	if l.u == nil {
		return Resolved{}, fmt.Errorf("%w: nil URL", ErrInvalidTarget)
	}
	return ResolvedURL(l.u), nil
}

func (l literalURL) String() string {
	if l.u == nil {
		return ""
	}
	return l.u.String()
}

type literalTemplate string

// Template returns a target that resolves to the template string s.
func Template(s string) Target {
	return literalTemplate(s)
}

func (t literalTemplate) Resolve(context.Context, *message.Message) (Resolved, error) {
	if t == "" {
		return Resolved{}, fmt.Errorf("%w: empty URI", ErrInvalidTarget)
	}
	return ResolvedTemplate(string(t)), nil
}

func (t literalTemplate) String() string { return string(t) }

// ExpressionFunc computes a target value from a message. The result must be
// a *url.URL, url.URL or string.
type ExpressionFunc func(ctx context.Context, msg *message.Message) (any, error)

type expression struct {
	desc string
	fn   ExpressionFunc
}

// Expression returns a target evaluated per message. desc is used in diagnostics.
func Expression(desc string, fn ExpressionFunc) Target {
	return expression{desc: desc, fn: fn}
}

func (e expression) Resolve(ctx context.Context, msg *message.Message) (Resolved, error) {
	if e.fn == nil {
		return Resolved{}, fmt.Errorf("%w: nil expression", ErrInvalidTarget)
	}
	v, err := e.fn(ctx, msg)
	if err != nil {
		return Resolved{}, fmt.Errorf("evaluate %s: %w", e.desc, err)
	}
	return FromValue(v)
}

func (e expression) String() string { return e.desc }
