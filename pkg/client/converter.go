package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Media types understood by the default converters.
const (
	MediaTypeJSON        = "application/json"
	MediaTypeTOML        = "application/toml"
	MediaTypeForm        = "application/x-www-form-urlencoded"
	MediaTypeText        = "text/plain"
	MediaTypeOctetStream = "application/octet-stream"
)

var errNoConverter = errors.New("no suitable message converter")

// MessageConverter encodes request bodies and decodes response bodies.
// mediaType is the bare media type ("application/json"), or "" when unknown.
type MessageConverter interface {
	CanRead(t reflect.Type, mediaType string) bool
	Read(t reflect.Type, mediaType string, data []byte) (any, error)

	CanWrite(v any, mediaType string) bool
	// Write returns the encoded body and its Content-Type.
	Write(v any, mediaType string) ([]byte, string, error)
}

// Converters is an ordered converter list; the first match wins.
type Converters []MessageConverter

// DefaultConverters returns byte, string, form, TOML and JSON converters, in that order.
func DefaultConverters() Converters {
	return Converters{
		BytesConverter{},
		StringConverter{},
		FormConverter{},
		TOMLConverter{},
		JSONConverter{},
	}
}

// Read decodes data into a value of type t.
func (cs Converters) Read(t reflect.Type, mediaType string, data []byte) (any, error) {
	for _, c := range cs {
		if !c.CanRead(t, mediaType) {
			continue
		}
		v, err := c.Read(t, mediaType, data)
		if err != nil {
			return nil, &ConversionError{Op: "read", Type: t.String(), MediaType: mediaType, Err: err}
		}
		return v, nil
	}
	return nil, &ConversionError{Op: "read", Type: t.String(), MediaType: mediaType, Err: errNoConverter}
}

// Write encodes v, honouring mediaType when set.
func (cs Converters) Write(v any, mediaType string) ([]byte, string, error) {
	typeName := fmt.Sprintf("%T", v)
	for _, c := range cs {
		if !c.CanWrite(v, mediaType) {
			continue
		}
		data, ct, err := c.Write(v, mediaType)
		if err != nil {
			return nil, "", &ConversionError{Op: "write", Type: typeName, MediaType: mediaType, Err: err}
		}
		return data, ct, nil
	}
	return nil, "", &ConversionError{Op: "write", Type: typeName, MediaType: mediaType, Err: errNoConverter}
}

var bytesType = reflect.TypeOf([]byte(nil))

// BytesConverter passes []byte bodies through unchanged.
type BytesConverter struct{}

func (BytesConverter) CanRead(t reflect.Type, _ string) bool { return t == bytesType }

func (BytesConverter) Read(_ reflect.Type, _ string, data []byte) (any, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (BytesConverter) CanWrite(v any, _ string) bool {
	_, ok := v.([]byte)
	return ok
}

func (BytesConverter) Write(v any, mediaType string) ([]byte, string, error) {
	if mediaType == "" {
		mediaType = MediaTypeOctetStream
	}
	return v.([]byte), mediaType, nil
}

// StringConverter handles string bodies as UTF-8 text.
type StringConverter struct{}

func (StringConverter) CanRead(t reflect.Type, _ string) bool { return t.Kind() == reflect.String }

func (StringConverter) Read(t reflect.Type, _ string, data []byte) (any, error) {
	return reflect.ValueOf(string(data)).Convert(t).Interface(), nil
}

func (StringConverter) CanWrite(v any, _ string) bool {
	_, ok := v.(string)
	return ok
}

func (StringConverter) Write(v any, mediaType string) ([]byte, string, error) {
	if mediaType == "" {
		return []byte(v.(string)), MediaTypeText + "; charset=utf-8", nil
	}
	return []byte(v.(string)), mediaType, nil
}

var valuesType = reflect.TypeOf(url.Values(nil))

// FormConverter handles url.Values as application/x-www-form-urlencoded.
type FormConverter struct{}

func (FormConverter) CanRead(t reflect.Type, mediaType string) bool {
	return t == valuesType && (mediaType == "" || mediaType == MediaTypeForm)
}

func (FormConverter) Read(_ reflect.Type, _ string, data []byte) (any, error) {
	return url.ParseQuery(string(data))
}

func (FormConverter) CanWrite(v any, mediaType string) bool {
	_, ok := v.(url.Values)
	return ok && (mediaType == "" || mediaType == MediaTypeForm)
}

func (FormConverter) Write(v any, _ string) ([]byte, string, error) {
	return []byte(v.(url.Values).Encode()), MediaTypeForm, nil
}

// TOMLConverter handles application/toml bodies.
type TOMLConverter struct{}

func (TOMLConverter) CanRead(_ reflect.Type, mediaType string) bool {
	return mediaType == MediaTypeTOML
}

func (TOMLConverter) Read(t reflect.Type, _ string, data []byte) (any, error) {
	ptr := reflect.New(t)
	if err := toml.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

func (TOMLConverter) CanWrite(_ any, mediaType string) bool {
	return mediaType == MediaTypeTOML
}

func (TOMLConverter) Write(v any, _ string) ([]byte, string, error) {
	data, err := toml.Marshal(v)
	if err != nil {
		return nil, "", err
	}
	return data, MediaTypeTOML, nil
}

// JSONConverter handles JSON bodies. An unknown media type is treated as JSON.
type JSONConverter struct{}

func isJSON(mediaType string) bool {
	return mediaType == "" || mediaType == MediaTypeJSON || strings.HasSuffix(mediaType, "+json")
}

func (JSONConverter) CanRead(_ reflect.Type, mediaType string) bool { return isJSON(mediaType) }

func (JSONConverter) Read(t reflect.Type, _ string, data []byte) (any, error) {
	ptr := reflect.New(t)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

func (JSONConverter) CanWrite(_ any, mediaType string) bool { return isJSON(mediaType) }

func (JSONConverter) Write(v any, _ string) ([]byte, string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, "", err
	}
	return data, MediaTypeJSON, nil
}
