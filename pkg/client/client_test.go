package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/outbound/pkg/target"
)

type item struct {
	Name  string `json:"name" toml:"name"`
	Count int    `json:"count" toml:"count"`
}

type recorded struct {
	method      string
	requestURI  string
	contentType string
	custom      string
	body        string
}

// newServer answers every request with status, contentType and body, and
// records the last request it saw.
func newServer(t *testing.T, status int, contentType, body string) (*httptest.Server, *atomic.Pointer[recorded], *atomic.Int32) {
	t.Helper()
	var last atomic.Pointer[recorded]
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		last.Store(&recorded{
			method:      r.Method,
			requestURI:  r.RequestURI,
			contentType: r.Header.Get("Content-Type"),
			custom:      r.Header.Get("X-Custom"),
			body:        string(b),
		})
		hits.Add(1)
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &last, &hits
}

func exchangers() map[string]func() Exchanger {
	return map[string]func() Exchanger{
		"template": func() Exchanger { return NewTemplateExchanger(NewTemplate(nil)) },
		"fluent":   func() Exchanger { return NewFluentExchanger(NewFluent(nil)) },
	}
}

func TestExchanger_ConcreteURL(t *testing.T) {
	for name, newEx := range exchangers() {
		t.Run(name, func(t *testing.T) {
			srv, last, hits := newServer(t, http.StatusOK, "text/plain", "pong")
			u, err := url.Parse(srv.URL + "/api/{notAVariable}")
			require.NoError(t, err)

			resp, err := newEx().Exchange(context.Background(), target.ResolvedURL(u), http.MethodGet,
				NewRequest(nil), TypeOf[string](), map[string]any{"notAVariable": "x"})
			require.NoError(t, err)

			assert.Equal(t, int32(1), hits.Load())
			assert.Equal(t, "/api/%7BnotAVariable%7D", last.Load().requestURI)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.True(t, resp.HasBody())
			assert.Equal(t, "pong", resp.Body)
		})
	}
}

func TestExchanger_BodyOnEveryMethod(t *testing.T) {
	clients := map[string]func() Exchanger{
		"template":     func() Exchanger { return NewTemplateExchanger(NewTemplate(nil)) },
		"fluent":       func() Exchanger { return NewFluentExchanger(NewFluent(nil)) },
		"fluent/resty": func() Exchanger { return NewFluentExchanger(NewFluent(resty.New())) },
		"fluent/built": func() Exchanger { return NewFluentExchanger(NewFluentBuilder().Build()) },
	}
	methods := []string{http.MethodGet, http.MethodOptions, http.MethodDelete, http.MethodPost}

	for name, newEx := range clients {
		for _, method := range methods {
			t.Run(name+"/"+method, func(t *testing.T) {
				srv, last, hits := newServer(t, http.StatusOK, "text/plain", "pong")

				req := NewRequest("ping")
				req.Header.Set("X-Custom", "yes")
				_, err := newEx().Exchange(context.Background(), target.ResolvedTemplate(srv.URL+"/echo"),
					method, req, TypeOf[string](), nil)
				require.NoError(t, err)

				rec := last.Load()
				assert.Equal(t, int32(1), hits.Load())
				assert.Equal(t, method, rec.method)
				assert.Equal(t, "ping", rec.body)
				assert.Equal(t, "yes", rec.custom)
				assert.Contains(t, rec.contentType, MediaTypeText)
			})
		}
	}
}

func TestExchanger_TemplateExpansion(t *testing.T) {
	for name, newEx := range exchangers() {
		t.Run(name, func(t *testing.T) {
			srv, last, _ := newServer(t, http.StatusOK, "application/json", `{"name":"widget","count":3}`)

			req := NewRequest(item{Name: "widget", Count: 3})
			req.Header.Set("X-Custom", "yes")
			resp, err := newEx().Exchange(context.Background(),
				target.ResolvedTemplate(srv.URL+"/items/{id}"), http.MethodPost, req,
				TypeOf[item](), map[string]any{"id": 42, "extra": "ignored"})
			require.NoError(t, err)

			rec := last.Load()
			assert.Equal(t, http.MethodPost, rec.method)
			assert.Equal(t, "/items/42", rec.requestURI)
			assert.Equal(t, "yes", rec.custom)
			assert.Equal(t, MediaTypeJSON, rec.contentType)
			assert.JSONEq(t, `{"name":"widget","count":3}`, rec.body)
			assert.Equal(t, item{Name: "widget", Count: 3}, resp.Body)
		})
	}
}

func TestExchanger_Generic(t *testing.T) {
	for name, newEx := range exchangers() {
		t.Run(name, func(t *testing.T) {
			srv, _, _ := newServer(t, http.StatusOK, "application/json", `{"a":[{"name":"x","count":1}]}`)

			resp, err := newEx().Exchange(context.Background(), target.ResolvedTemplate(srv.URL),
				http.MethodGet, NewRequest(nil), Generic[map[string][]item](), nil)
			require.NoError(t, err)
			assert.Equal(t, map[string][]item{"a": {{Name: "x", Count: 1}}}, resp.Body)
		})
	}
}

func TestExchanger_NoBody(t *testing.T) {
	for name, newEx := range exchangers() {
		t.Run(name, func(t *testing.T) {
			srv, _, _ := newServer(t, http.StatusAccepted, "application/json", `{"ignored":true}`)

			resp, err := newEx().Exchange(context.Background(), target.ResolvedTemplate(srv.URL),
				http.MethodDelete, NewRequest(nil), NoBody(), nil)
			require.NoError(t, err)
			assert.False(t, resp.HasBody())
			assert.Nil(t, resp.Body)
			assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		})
	}
}

func TestExchanger_EmptyBodyHasNoBody(t *testing.T) {
	for name, newEx := range exchangers() {
		t.Run(name, func(t *testing.T) {
			srv, _, _ := newServer(t, http.StatusNoContent, "", "")

			resp, err := newEx().Exchange(context.Background(), target.ResolvedTemplate(srv.URL),
				http.MethodPut, NewRequest("data"), TypeOf[string](), nil)
			require.NoError(t, err)
			assert.False(t, resp.HasBody())
		})
	}
}

func TestExchanger_StatusError(t *testing.T) {
	for name, newEx := range exchangers() {
		t.Run(name, func(t *testing.T) {
			srv, _, _ := newServer(t, http.StatusNotFound, "text/plain", "missing")

			_, err := newEx().Exchange(context.Background(), target.ResolvedTemplate(srv.URL),
				http.MethodGet, NewRequest(nil), TypeOf[string](), nil)

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, http.StatusNotFound, se.StatusCode)
			assert.True(t, se.IsClientError())
			assert.Contains(t, se.Error(), "missing")
		})
	}
}

func TestExchanger_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	for name, newEx := range exchangers() {
		t.Run(name, func(t *testing.T) {
			_, err := newEx().Exchange(context.Background(), target.ResolvedTemplate(addr),
				http.MethodGet, NewRequest(nil), TypeOf[string](), nil)

			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, http.MethodGet, te.Method)
		})
	}
}

func TestExchanger_UnsupportedResponseType(t *testing.T) {
	for name, newEx := range exchangers() {
		t.Run(name, func(t *testing.T) {
			srv, _, hits := newServer(t, http.StatusOK, "text/plain", "pong")

			_, err := newEx().Exchange(context.Background(), target.ResolvedTemplate(srv.URL),
				http.MethodGet, NewRequest(nil), ResponseType{}, nil)
			require.ErrorIs(t, err, ErrUnsupportedResponseType)
			assert.Equal(t, int32(0), hits.Load())
		})
	}
}

func TestExchanger_MissingVariable(t *testing.T) {
	for name, newEx := range exchangers() {
		t.Run(name, func(t *testing.T) {
			_, err := newEx().Exchange(context.Background(),
				target.ResolvedTemplate("http://example.invalid/{id}"),
				http.MethodGet, NewRequest(nil), TypeOf[string](), nil)
			require.ErrorIs(t, err, target.ErrMissingVariable)
		})
	}
}

func TestExchanger_EmptyTarget(t *testing.T) {
	for name, newEx := range exchangers() {
		t.Run(name, func(t *testing.T) {
			_, err := newEx().Exchange(context.Background(), target.Resolved{},
				http.MethodGet, NewRequest(nil), TypeOf[string](), nil)
			require.ErrorIs(t, err, target.ErrInvalidTarget)
		})
	}
}

func TestFluentBuilder(t *testing.T) {
	srv, last, _ := newServer(t, http.StatusInternalServerError, "application/toml", "name = \"t\"\ncount = 2\n")

	var factoryCalls atomic.Int32
	f := NewFluentBuilder().
		ErrorHandler(NoopErrorHandler{}).
		RequestFactory(RequestFactoryFunc(func() *http.Client {
			factoryCalls.Add(1)
			return &http.Client{}
		})).
		EncodingMode(target.URIComponent).
		Build()

	assert.Equal(t, int32(1), factoryCalls.Load())

	resp, err := f.Method(http.MethodGet).
		URI(srv.URL+"/files/{path}", map[string]any{"path": "a/b"}).
		Retrieve(context.Background()).
		ToEntity(reflect.TypeOf(item{}))
	require.NoError(t, err)
	assert.Equal(t, "/files/a/b", last.Load().requestURI)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, item{Name: "t", Count: 2}, resp.Body)
}

func TestFluent_ToEntityGenericRejectsConcrete(t *testing.T) {
	_, err := NewFluent(nil).Method(http.MethodGet).
		URL(&url.URL{Scheme: "http", Host: "example.invalid"}).
		Retrieve(context.Background()).
		ToEntityGeneric(TypeOf[string]())
	require.ErrorIs(t, err, ErrUnsupportedResponseType)
}

func TestTemplate_Setters(t *testing.T) {
	srv, last, _ := newServer(t, http.StatusBadRequest, "application/x-www-form-urlencoded", "a=1&b=2")

	tpl := NewTemplate(nil)
	tpl.SetErrorHandler(NoopErrorHandler{})
	tpl.SetMessageConverters(Converters{FormConverter{}})
	tpl.SetRequestFactory(SimpleRequestFactory{})
	tpl.SetEncodingMode(target.None)

	resp, err := tpl.ExchangeTemplate(context.Background(), http.MethodPost, srv.URL+"/{p}",
		NewRequest(url.Values{"q": {"x y"}}), TypeOf[url.Values](), map[string]any{"p": "form"})
	require.NoError(t, err)

	rec := last.Load()
	assert.Equal(t, "/form", rec.requestURI)
	assert.Equal(t, MediaTypeForm, rec.contentType)
	assert.Equal(t, "q=x+y", rec.body)
	assert.Equal(t, url.Values{"a": {"1"}, "b": {"2"}}, resp.Body)

	_, err = tpl.Exchange(context.Background(), http.MethodPost, &url.URL{Scheme: "http", Host: "x"},
		NewRequest(item{}), TypeOf[string]())
	var ce *ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "write", ce.Op)
}

func TestTemplate_NilSettersKeepDefaults(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusInternalServerError, "text/plain", "boom")

	tpl := NewTemplate(nil)
	tpl.SetErrorHandler(nil)
	tpl.SetMessageConverters(nil)
	tpl.SetRequestFactory(nil)
	tpl.SetRequestFactory(RequestFactoryFunc(func() *http.Client { return nil }))

	_, err := tpl.Exchange(context.Background(), http.MethodGet, mustParse(t, srv.URL), nil, TypeOf[string]())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

type failingDoer struct{ err error }

func (d failingDoer) Do(*http.Request) (*http.Response, error) { return nil, d.err }

func TestTemplate_CustomHTTPClient(t *testing.T) {
	refused := errors.New("connection refused")
	tpl := NewTemplate(failingDoer{err: refused})

	_, err := tpl.Exchange(context.Background(), http.MethodGet, &url.URL{Scheme: "http", Host: "example.org"},
		nil, TypeOf[string]())
	require.ErrorIs(t, err, refused)
}
