package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/bft-labs/outbound/internal/cliconfig"
	"github.com/bft-labs/outbound/pkg/client"
	"github.com/bft-labs/outbound/pkg/log"
	"github.com/bft-labs/outbound/pkg/message"
	"github.com/bft-labs/outbound/pkg/outbound"
	"github.com/bft-labs/outbound/pkg/target"
)

// newExecutor builds an initialized executor owning its client.
func newExecutor(cfg cliconfig.Config, logger log.Logger) (*outbound.Executor, error) {
	rt, err := cfg.ExpectedResponseType()
	if err != nil {
		return nil, err
	}
	mode, err := cfg.Encoding()
	if err != nil {
		return nil, err
	}

	mapper := outbound.NewDefaultHeaderMapper()
	for name := range cfg.Headers {
		mapper.Outbound = append(mapper.Outbound, name)
	}

	opts := []outbound.Option{
		outbound.WithHTTPMethod(cfg.Method),
		outbound.WithExpectReply(cfg.ExpectReply),
		outbound.WithExpectedResponseType(rt),
		outbound.WithHeaderMapper(mapper),
		outbound.WithLogger(logger),
	}
	for name, value := range cfg.Vars {
		v := value
		opts = append(opts, outbound.WithURIVariable(name, func(context.Context, *message.Message) (any, error) {
			return v, nil
		}))
	}

	ex, err := outbound.New(target.Template(cfg.URL), opts...)
	if err != nil {
		return nil, err
	}
	if err := ex.SetRequestFactory(cfg.RequestFactory()); err != nil {
		return nil, err
	}
	if err := ex.SetEncodingMode(mode); err != nil {
		return nil, err
	}
	ex.Initialize()
	return ex, nil
}

// runSend performs one exchange and writes the reply to out.
func runSend(ctx context.Context, cfg cliconfig.Config, payload any, out io.Writer, logger log.Logger) error {
	ex, err := newExecutor(cfg, logger)
	if err != nil {
		return err
	}

	b := message.WithPayload(payload)
	for k, v := range cfg.Headers {
		b.SetHeader(k, v)
	}
	if cfg.ContentType != "" {
		b.SetHeader(outbound.HeaderContentType, cfg.ContentType)
	}

	reply, err := ex.HandleMessage(ctx, b.Build())
	if err != nil {
		return err
	}
	if reply == nil {
		return nil
	}
	return printReply(out, reply)
}

func printReply(out io.Writer, reply *message.Message) error {
	headers := reply.Headers()
	status, _ := headers[outbound.HeaderStatusCode].(int)
	if _, err := fmt.Fprintf(out, "status: %d\n", status); err != nil {
		return err
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		switch k {
		case message.HeaderID, message.HeaderTimestamp, outbound.HeaderStatusCode:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(out, "%s: %v\n", k, headers[k]); err != nil {
			return err
		}
	}

	var err error
	switch p := reply.Payload().(type) {
	case *client.Response:
		_, err = fmt.Fprintln(out)
	case []byte:
		_, err = fmt.Fprintf(out, "\n%s\n", p)
	default:
		_, err = fmt.Fprintf(out, "\n%v\n", p)
	}
	return err
}
