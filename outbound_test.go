package outbound_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/outbound"
)

func TestFacade(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Method+" "+r.URL.Path)
	}))
	defer srv.Close()

	ex, err := outbound.NewForURL(srv.URL+"/items/{id}",
		outbound.WithHTTPMethod(http.MethodGet),
		outbound.WithURIVariable("id", outbound.PayloadVariable()),
	)
	require.NoError(t, err)

	reply, err := ex.HandleMessage(context.Background(), outbound.NewMessage("abc"))
	require.NoError(t, err)
	assert.Equal(t, "GET /items/abc", reply.Payload())
	assert.Equal(t, "outbound-gateway", ex.ComponentType())
}
