package inbound

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/outbound/pkg/log"
	"github.com/bft-labs/outbound/pkg/message"
	"github.com/bft-labs/outbound/pkg/outbound"
)

// Headers set on every file message.
const (
	HeaderFileName = "file_name"
	HeaderFilePath = "file_path"
	HeaderFileSize = "file_size"
)

// ErrAlreadyStarted is returned by Start on a running watcher.
var ErrAlreadyStarted = errors.New("inbound: watcher already started")

// Handler consumes file messages. *outbound.Executor implements it.
type Handler interface {
	HandleMessage(ctx context.Context, msg *message.Message) (*message.Message, error)
}

// ReplyFunc receives the outcome of handling one file. reply is nil in
// channel-adapter mode or on error.
type ReplyFunc func(path string, reply *message.Message, err error)

// Config holds watcher configuration.
type Config struct {
	// Dir is the directory to watch. Required.
	Dir string

	// Pattern filters file names with filepath.Match syntax.
	// Default: "*"
	Pattern string

	// DebounceDelay is the quiet period after the last write to a file
	// before it is dispatched.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// ContentType, when set, is attached as the contentType header.
	ContentType string

	// ProcessExisting dispatches files already present at Start.
	ProcessExisting bool

	// Attempts is the number of times a failed file is handed to the
	// handler before giving up.
	// Default: 1
	Attempts int

	// RetryInterval is the delay before the first retry. It doubles on
	// every further attempt up to MaxRetryInterval.
	// Default: 1 second
	RetryInterval time.Duration

	// MaxRetryInterval caps the retry delay.
	// Default: 30 seconds
	MaxRetryInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Pattern:          "*",
		DebounceDelay:    100 * time.Millisecond,
		Attempts:         1,
		RetryInterval:    time.Second,
		MaxRetryInterval: 30 * time.Second,
	}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. Default: no output.
func WithLogger(l log.Logger) Option {
	return func(w *Watcher) { w.logger = log.OrDiscard(l) }
}

// WithReplyFunc registers a callback invoked after each file is handled.
func WithReplyFunc(fn ReplyFunc) Option {
	return func(w *Watcher) { w.onReply = fn }
}

// Watcher dispatches files from a directory to a Handler.
type Watcher struct {
	cfg     Config
	handler Handler
	logger  log.Logger
	onReply ReplyFunc

	mu      sync.Mutex
	timers  map[string]*time.Timer
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New creates a watcher. It does not touch the file system until Start.
func New(cfg Config, h Handler, opts ...Option) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("inbound: directory is required")
	}
	if h == nil {
		return nil, fmt.Errorf("inbound: handler is required")
	}
	if cfg.Pattern == "" {
		cfg.Pattern = "*"
	}
	if _, err := filepath.Match(cfg.Pattern, ""); err != nil {
		return nil, fmt.Errorf("inbound: pattern %q: %w", cfg.Pattern, err)
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = time.Second
	}
	if cfg.MaxRetryInterval <= 0 {
		cfg.MaxRetryInterval = 30 * time.Second
	}

	w := &Watcher{
		cfg:     cfg,
		handler: h,
		logger:  log.Discard,
		timers:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. It returns once the directory is registered;
// dispatching happens in the background until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(w.cfg.Dir); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.started = true

	w.logger.Info("inbound watcher started",
		log.String("dir", w.cfg.Dir), log.String("pattern", w.cfg.Pattern))

	if w.cfg.ProcessExisting {
		for _, path := range w.existing() {
			w.scheduleLocked(watchCtx, path)
		}
	}

	w.wg.Add(1)
	go w.watchLoop(watchCtx, fw)
	return nil
}

// Stop cancels the watch loop and pending dispatches and waits for
// in-flight handlers to return.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	for path, t := range w.timers {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.timers, path)
	}
	w.mu.Unlock()

	w.wg.Wait()
	return nil
}

func (w *Watcher) watchLoop(ctx context.Context, fw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fw.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("inbound watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) matches(path string) bool {
	ok, _ := filepath.Match(w.cfg.Pattern, filepath.Base(path))
	return ok
}

// existing lists matching regular files in the directory, sorted by name.
func (w *Watcher) existing() []string {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		w.logger.Warn("inbound watcher: failed to list directory", log.Err(err))
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(w.cfg.Dir, e.Name())
		if w.matches(path) {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scheduleLocked(ctx, path)
}

// scheduleLocked (re)arms the debounce timer for path. Each armed timer
// holds one wait group slot until it fires or is stopped.
func (w *Watcher) scheduleLocked(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	if t, ok := w.timers[path]; ok && t.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.cfg.DebounceDelay, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.timers[path] == t {
			delete(w.timers, path)
		}
		w.mu.Unlock()
		w.dispatch(ctx, path)
	})
	w.timers[path] = t
}

func (w *Watcher) dispatch(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	msg, err := w.read(path)
	if err != nil {
		w.logger.Warn("inbound watcher: failed to read file", log.String("file", path), log.Err(err))
		w.reply(path, nil, err)
		return
	}

	var reply *message.Message
	bo := newBackoff(w.cfg.RetryInterval, w.cfg.MaxRetryInterval)
	for attempt := 1; ; attempt++ {
		reply, err = w.handler.HandleMessage(ctx, msg)
		if err == nil {
			w.logger.Debug("inbound file handled", log.String("file", path), log.Int("attempt", attempt))
			break
		}
		w.logger.Error("inbound file handling failed",
			log.String("file", path), log.Int("attempt", attempt), log.Err(err))
		if attempt >= w.cfg.Attempts {
			break
		}
		if werr := bo.wait(ctx); werr != nil {
			w.reply(path, nil, werr)
			return
		}
	}
	w.reply(path, reply, err)
}

func (w *Watcher) read(path string) (*message.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b := message.WithPayload(data).
		SetHeader(HeaderFileName, filepath.Base(path)).
		SetHeader(HeaderFilePath, path).
		SetHeader(HeaderFileSize, len(data))
	if w.cfg.ContentType != "" {
		b.SetHeader(outbound.HeaderContentType, w.cfg.ContentType)
	}
	return b.Build(), nil
}

func (w *Watcher) reply(path string, reply *message.Message, err error) {
	if w.onReply != nil {
		w.onReply(path, reply, err)
	}
}
