package client

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnsupportedResponseType is returned when an expected response type is
// neither "no body", a concrete type nor a generic type. It signals a
// programming error and is never wrapped as a transport failure.
var ErrUnsupportedResponseType = errors.New("client: unsupported expected response type")

type responseKind uint8

const (
	kindInvalid responseKind = iota
	kindNoBody
	kindConcrete
	kindGeneric
)

// ResponseType declares how a response body is decoded.
// The zero value is not a valid response type.
type ResponseType struct {
	kind responseKind
	typ  reflect.Type
}

// NoBody declares that the response body is ignored.
func NoBody() ResponseType {
	return ResponseType{kind: kindNoBody}
}

// Concrete declares a plain response type. A nil type yields the invalid zero value.
func Concrete(t reflect.Type) ResponseType {
	if t == nil {
		return ResponseType{}
	}
	return ResponseType{kind: kindConcrete, typ: t}
}

// TypeOf declares the concrete response type T.
func TypeOf[T any]() ResponseType {
	return Concrete(reflect.TypeOf((*T)(nil)).Elem())
}

// Generic declares a parameterized response type such as []Item or
// map[string][]Item, captured through the type parameter.
func Generic[T any]() ResponseType {
	return ResponseType{kind: kindGeneric, typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// ResponseTypeOf converts a dynamically typed descriptor. nil means NoBody,
// a reflect.Type is concrete, a ResponseType is returned as is. Anything
// else is rejected with ErrUnsupportedResponseType.
func ResponseTypeOf(v any) (ResponseType, error) {
	switch t := v.(type) {
	case nil:
		return NoBody(), nil
	case ResponseType:
		return t, t.Validate()
	case reflect.Type:
		return Concrete(t), nil
	default:
		return ResponseType{}, fmt.Errorf("%w: %T", ErrUnsupportedResponseType, v)
	}
}

// Validate returns ErrUnsupportedResponseType for the invalid zero value.
func (rt ResponseType) Validate() error {
	switch rt.kind {
	case kindNoBody:
		return nil
	case kindConcrete, kindGeneric:
		if rt.typ == nil {
			return fmt.Errorf("%w: missing type", ErrUnsupportedResponseType)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedResponseType, rt)
	}
}

// IsNoBody reports whether the body is ignored.
func (rt ResponseType) IsNoBody() bool { return rt.kind == kindNoBody }

// IsConcrete reports whether rt is a plain type.
func (rt ResponseType) IsConcrete() bool { return rt.kind == kindConcrete }

// IsGeneric reports whether rt is a parameterized type.
func (rt ResponseType) IsGeneric() bool { return rt.kind == kindGeneric }

// Type returns the declared type, or nil for NoBody.
func (rt ResponseType) Type() reflect.Type { return rt.typ }

func (rt ResponseType) String() string {
	switch rt.kind {
	case kindNoBody:
		return "no-body"
	case kindConcrete:
		return rt.typ.String()
	case kindGeneric:
		return "generic " + rt.typ.String()
	default:
		return "invalid"
	}
}
