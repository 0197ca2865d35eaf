package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/outbound/internal/cliconfig"
	"github.com/bft-labs/outbound/internal/inbound"
	"github.com/bft-labs/outbound/pkg/log"
	"github.com/bft-labs/outbound/pkg/message"
	"github.com/bft-labs/outbound/pkg/outbound"
)

const longHelp = `Send messages as HTTP requests.

The send command performs a single exchange and prints the reply.
The watch command turns every file written to a directory into a request.

Configuration is layered: defaults, then the TOML config file
($HOME/.outbound/config.toml), then OUTBOUND_* environment variables,
then flags.`

var exampleUsage = strings.TrimSpace(`
  outbound send --url http://localhost:8080/api --method GET
  outbound send --url 'http://localhost:8080/orders/{id}' --var id=17 --response-type json
  outbound watch --url http://localhost:8080/ingest --dir /var/spool/outbound --pattern '*.json'
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// flagValues holds flags that need post-processing before they reach Config.
type flagValues struct {
	cfgPath  string
	headers  []string
	vars     []string
	body     string
	file     string
	existing bool
}

func main() {
	cfg := cliconfig.DefaultConfig()
	fv := &flagValues{}

	root := &cobra.Command{
		Use:           "outbound",
		Short:         "Send messages as HTTP requests",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&fv.cfgPath, "config", "", "path to config file (default: $HOME/.outbound/config.toml)")
	pf.StringVar(&cfg.URL, "url", cfg.URL, "target URL or URI template, e.g. http://host/items/{id}")
	pf.StringVar(&cfg.Method, "method", cfg.Method, "HTTP method")
	pf.BoolVar(&cfg.ExpectReply, "expect-reply", cfg.ExpectReply, "wait for and report the response (gateway mode)")
	pf.StringVar(&cfg.ResponseType, "response-type", cfg.ResponseType, "expected response body: string, bytes, json or none")
	pf.StringVar(&cfg.EncodingMode, "encoding", cfg.EncodingMode, "URI template encoding: template_and_values, values_only, uri_component or none")
	pf.StringArrayVar(&fv.headers, "header", nil, "request header as key=value (repeatable)")
	pf.StringArrayVar(&fv.vars, "var", nil, "URI template variable as key=value (repeatable)")
	pf.DurationVar(&cfg.ConnectTimeout, "connect-timeout", cfg.ConnectTimeout, "TCP connect timeout")
	pf.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "time to wait for response headers")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")

	send := &cobra.Command{
		Use:   "send",
		Short: "Send one request and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &cfg, fv); err != nil {
				return err
			}
			logger := cfg.Logger()

			payload, err := fv.payload()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runSend(ctx, cfg, payload, cmd.OutOrStdout(), logger)
		},
	}
	send.Flags().StringVar(&fv.body, "body", "", "request body")
	send.Flags().StringVar(&fv.file, "body-file", "", "read the request body from a file")
	send.Flags().StringVar(&cfg.ContentType, "content-type", cfg.ContentType, "Content-Type of the request body")

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Send every file written to a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &cfg, fv); err != nil {
				return err
			}
			if cfg.WatchDir == "" {
				return fmt.Errorf("dir is required")
			}
			logger := cfg.Logger()

			ex, err := newExecutor(cfg, logger)
			if err != nil {
				return err
			}

			w, err := inbound.New(inbound.Config{
				Dir:             cfg.WatchDir,
				Pattern:         cfg.WatchPattern,
				DebounceDelay:   cfg.WatchDebounce,
				ContentType:     cfg.ContentType,
				ProcessExisting: fv.existing,
			}, ex,
				inbound.WithLogger(logger),
				inbound.WithReplyFunc(func(path string, reply *message.Message, err error) {
					if err != nil {
						return
					}
					if reply != nil {
						status, _ := reply.Header(outbound.HeaderStatusCode)
						logger.Info("file sent", log.String("file", path), log.Any("status", status))
						return
					}
					logger.Info("file sent", log.String("file", path))
				}))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			<-ctx.Done()
			logger.Info("received signal, stopping...")
			return w.Stop()
		},
	}
	watch.Flags().StringVar(&cfg.WatchDir, "dir", cfg.WatchDir, "directory to watch")
	watch.Flags().StringVar(&cfg.WatchPattern, "pattern", cfg.WatchPattern, "file name pattern")
	watch.Flags().DurationVar(&cfg.WatchDebounce, "debounce", cfg.WatchDebounce, "quiet period after the last write before a file is sent")
	watch.Flags().StringVar(&cfg.ContentType, "content-type", cfg.ContentType, "Content-Type of the file bodies")
	watch.Flags().BoolVar(&fv.existing, "process-existing", false, "also send files present at startup")

	root.AddCommand(send, watch)

	if err := root.Execute(); err != nil {
		logger := cfg.Logger()
		logger.Error("outbound", log.Err(err))
		os.Exit(1)
	}
}

// loadConfig layers the config file and environment under the flags that
// were set explicitly, then validates.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, fv *flagValues) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if changed["header"] {
		h, err := cliconfig.ParseKeyValues(fv.headers)
		if err != nil {
			return fmt.Errorf("header: %w", err)
		}
		cfg.Headers = h
	}
	if changed["var"] {
		v, err := cliconfig.ParseKeyValues(fv.vars)
		if err != nil {
			return fmt.Errorf("var: %w", err)
		}
		cfg.Vars = v
	}

	cfgFile := fv.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	return cfg.Validate()
}

func (fv *flagValues) payload() (any, error) {
	if fv.file != "" {
		if fv.body != "" {
			return nil, fmt.Errorf("body and body-file are mutually exclusive")
		}
		data, err := os.ReadFile(fv.file)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return data, nil
	}
	if fv.body == "" {
		return nil, nil
	}
	return fv.body, nil
}
