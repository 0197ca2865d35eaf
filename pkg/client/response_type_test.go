package client

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseTypeOf(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    ResponseType
		wantErr bool
	}{
		{name: "nil is no body", in: nil, want: NoBody()},
		{name: "reflect type is concrete", in: reflect.TypeOf(""), want: TypeOf[string]()},
		{name: "response type passes through", in: Generic[[]item](), want: Generic[[]item]()},
		{name: "zero response type is rejected", in: ResponseType{}, wantErr: true},
		{name: "arbitrary sentinel is rejected", in: struct{ sentinel bool }{true}, wantErr: true},
		{name: "string name is rejected", in: "string", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResponseTypeOf(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedResponseType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResponseType_Kinds(t *testing.T) {
	assert.True(t, NoBody().IsNoBody())
	assert.Nil(t, NoBody().Type())
	assert.True(t, TypeOf[item]().IsConcrete())
	assert.Equal(t, reflect.TypeOf(item{}), TypeOf[item]().Type())
	assert.True(t, Generic[map[string]item]().IsGeneric())
	assert.Equal(t, ResponseType{}, Concrete(nil))
	assert.Error(t, ResponseType{}.Validate())
	assert.Equal(t, "invalid", ResponseType{}.String())
	assert.Equal(t, "no-body", NoBody().String())
}

func TestConverters_ReadWrite(t *testing.T) {
	cs := DefaultConverters()

	tests := []struct {
		name      string
		body      any
		mediaType string
		wantCT    string
		wantData  string
	}{
		{name: "bytes", body: []byte{0x1, 0x2}, wantCT: MediaTypeOctetStream, wantData: "\x01\x02"},
		{name: "string", body: "hello", wantCT: "text/plain; charset=utf-8", wantData: "hello"},
		{name: "string with declared type", body: "{}", mediaType: MediaTypeJSON, wantCT: MediaTypeJSON, wantData: "{}"},
		{name: "struct as json", body: item{Name: "a", Count: 1}, wantCT: MediaTypeJSON, wantData: `{"name":"a","count":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ct, err := cs.Write(tt.body, tt.mediaType)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCT, ct)
			assert.Equal(t, tt.wantData, string(data))
		})
	}

	data, ct, err := cs.Write(item{Name: "a", Count: 1}, MediaTypeTOML)
	require.NoError(t, err)
	assert.Equal(t, MediaTypeTOML, ct)
	assert.Contains(t, string(data), "count = 1")
	v, err := cs.Read(reflect.TypeOf(item{}), MediaTypeTOML, data)
	require.NoError(t, err)
	assert.Equal(t, item{Name: "a", Count: 1}, v)

	v, err = cs.Read(reflect.TypeOf(item{}), "application/vnd.api+json", []byte(`{"name":"b","count":2}`))
	require.NoError(t, err)
	assert.Equal(t, item{Name: "b", Count: 2}, v)

	_, err = cs.Read(reflect.TypeOf(item{}), "text/html", []byte("<p>"))
	var ce *ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "read", ce.Op)

	_, err = cs.Read(reflect.TypeOf(item{}), MediaTypeJSON, []byte("not json"))
	require.ErrorAs(t, err, &ce)
}
