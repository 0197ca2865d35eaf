package outbound_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/bft-labs/outbound/pkg/client"
	"github.com/bft-labs/outbound/pkg/message"
	"github.com/bft-labs/outbound/pkg/outbound"
	"github.com/bft-labs/outbound/pkg/target"
)

// ExampleNewForURL sends a message to a templated URI and prints the reply.
func ExampleNewForURL() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "order "+r.URL.Path[len("/orders/"):])
	}))
	defer srv.Close()

	e, err := outbound.NewForURL(srv.URL+"/orders/{id}",
		outbound.WithHTTPMethod(http.MethodGet),
		outbound.WithURIVariable("id", outbound.HeaderVariable("orderID")),
	)
	if err != nil {
		fmt.Printf("failed to create executor: %v\n", err)
		return
	}

	msg := message.WithPayload(nil).SetHeader("orderID", "A-17").Build()
	reply, err := e.HandleMessage(context.Background(), msg)
	if err != nil {
		fmt.Printf("request failed: %v\n", err)
		return
	}

	status, _ := reply.Header(outbound.HeaderStatusCode)
	fmt.Println(reply.Payload(), status)

	// Output: order A-17 200
}

// Example_externalClient shows that transport settings belong on a client
// supplied by the caller.
func Example_externalClient() {
	tc := client.NewTemplate(nil)
	tc.SetErrorHandler(client.NoopErrorHandler{})

	e, err := outbound.NewWithTemplateClient(target.Template("http://localhost/api"), tc)
	if err != nil {
		fmt.Printf("failed to create executor: %v\n", err)
		return
	}

	err = e.SetErrorHandler(client.DefaultErrorHandler{})
	fmt.Println(err != nil, e.ExternallyConfigured())

	// Output: true true
}
