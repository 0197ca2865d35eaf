package target

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMissingVariable is returned when a template references a variable that was not supplied.
var ErrMissingVariable = errors.New("target: missing URI variable")

// EncodingMode controls how templates and variable values are percent-encoded.
type EncodingMode int

const (
	// TemplateAndValues encodes illegal characters in the template and
	// strictly encodes every variable value. This is the default.
	TemplateAndValues EncodingMode = iota

	// ValuesOnly strictly encodes variable values and leaves the template untouched.
	ValuesOnly

	// URIComponent expands first and then encodes illegal characters in the result.
	// Reserved characters inside values are kept.
	URIComponent

	// None performs no encoding.
	None
)

var encodingModeNames = map[EncodingMode]string{
	TemplateAndValues: "template_and_values",
	ValuesOnly:        "values_only",
	URIComponent:      "uri_component",
	None:              "none",
}

func (m EncodingMode) String() string {
	if s, ok := encodingModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("EncodingMode(%d)", int(m))
}

// ParseEncodingMode parses the String form of an EncodingMode. Case and
// dashes are ignored.
func ParseEncodingMode(s string) (EncodingMode, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for m, name := range encodingModeNames {
		if name == norm {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown encoding mode %q", s)
}

// Expander expands URI templates of the form "http://host/{name}".
// The zero value uses TemplateAndValues.
type Expander struct {
	Mode EncodingMode
}

// Expand substitutes vars into tmpl and parses the result. Variables not
// referenced by the template are ignored.
func (e Expander) Expand(tmpl string, vars map[string]any) (*url.URL, error) {
	parts, err := parseTemplate(tmpl)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, p := range parts {
		if !p.variable {
			switch e.Mode {
			case TemplateAndValues:
				b.WriteString(encodeIllegal(p.text))
			default:
				b.WriteString(p.text)
			}
			continue
		}

		v, ok := vars[p.text]
		if !ok {
			return nil, fmt.Errorf("%w: %q in %q", ErrMissingVariable, p.text, tmpl)
		}
		s := formatValue(v)
		switch e.Mode {
		case TemplateAndValues, ValuesOnly:
			b.WriteString(encodeStrict(s))
		default:
			b.WriteString(s)
		}
	}

	expanded := b.String()
	if e.Mode == URIComponent {
		expanded = encodeIllegal(expanded)
	}

	u, err := url.Parse(expanded)
	if err != nil {
		return nil, fmt.Errorf("parse expanded URI: %w", err)
	}
	return u, nil
}

type templatePart struct {
	text     string
	variable bool
}

// parseTemplate splits tmpl into literal text and variable names. A
// variable may carry a pattern ("{id:[0-9]+}"); only the name is kept.
func parseTemplate(tmpl string) ([]templatePart, error) {
	var parts []templatePart
	rest := tmpl
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			if rest != "" {
				parts = append(parts, templatePart{text: rest})
			}
			return parts, nil
		}
		if open > 0 {
			parts = append(parts, templatePart{text: rest[:open]})
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("unclosed variable in URI template %q", tmpl)
		}
		name := rest[open+1 : open+end]
		if i := strings.IndexByte(name, ':'); i >= 0 {
			name = name[:i]
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty variable name in URI template %q", tmpl)
		}
		parts = append(parts, templatePart{text: name, variable: true})
		rest = rest[open+end+1:]
	}
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

const upperhex = "0123456789ABCDEF"

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return c == '-' || c == '.' || c == '_' || c == '~'
}

func isReserved(c byte) bool {
	return strings.IndexByte(":/?#[]@!$&'()*+,;=", c) >= 0
}

// encodeStrict percent-encodes every byte outside the unreserved set.
func encodeStrict(s string) string {
	return encode(s, isUnreserved)
}

// encodeIllegal percent-encodes bytes that may not appear anywhere in a URI.
// Existing escapes are preserved.
func encodeIllegal(s string) string {
	return encode(s, func(c byte) bool {
		return isUnreserved(c) || isReserved(c) || c == '%'
	})
}

func encode(s string, keep func(byte) bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keep(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}
