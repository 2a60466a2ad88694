// Package filewatch bridges filesystem change events into the language server
// session. Paths matching the watch rule are forwarded as
// workspace/didChangeWatchedFiles notifications, whether or not they are open
// as documents.
package filewatch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	sessionctrl "github.com/genlang/gen-lsp-client/src/genclient/controller/session"
	"github.com/genlang/gen-lsp-client/src/genclient/entity"
	langserver "github.com/genlang/gen-lsp-client/src/genclient/gateway/lang-server"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/errors"
	"github.com/genlang/gen-lsp-client/src/genclient/mapper"
	tally "github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.uber.org/atomic"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_nameKey = "file-watch"

	// Editors save with write-then-rename bursts; collapse them per path.
	_debounceTimeout = 10 * time.Millisecond
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Controller watches a directory tree and forwards matching change events to
// the active session.
type Controller interface {
	// Watch begins recursive watching of root. Events whose path matches the
	// rule are forwarded to the session. Watch may be called once.
	Watch(ctx context.Context, root string, rule entity.WatchRule) error
	// Close stops the watcher and drops any pending events.
	Close() error
}

// Params are inbound parameters to initialize a new controller.
type Params struct {
	fx.In

	Logger  *zap.SugaredLogger
	Stats   tally.Scope
	Gateway langserver.Gateway
	Session sessionctrl.Controller
}

type controller struct {
	logger  *zap.SugaredLogger
	stats   tally.Scope
	gateway langserver.Gateway
	session sessionctrl.Controller

	watcher *fsnotify.Watcher
	rule    entity.WatchRule
	closer  chan bool
	closed  *atomic.Bool

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex
}

// New creates a new file watch controller. The watcher itself is created on
// Watch, once the root is known.
func New(p Params) Controller {
	return &controller{
		logger:         p.Logger.With("controller", _nameKey),
		stats:          p.Stats.SubScope("file_watch"),
		gateway:        p.Gateway,
		session:        p.Session,
		closer:         make(chan bool, 1),
		closed:         atomic.NewBool(false),
		debounceTimers: make(map[string]*time.Timer),
	}
}

// Watch registers root and all of its subdirectories and starts the event
// loop. Directories created later are picked up as they appear.
func (c *controller) Watch(ctx context.Context, root string, rule entity.WatchRule) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	c.watcher = watcher
	c.rule = rule

	if err := c.addTree(root); err != nil {
		watcher.Close()
		return fmt.Errorf("registering watch tree %q: %w", root, err)
	}

	go c.handleChanges()
	c.logger.Infow("watching for file changes", "root", root, "pattern", rule.Pattern)
	return nil
}

// addTree registers dir and every directory beneath it.
func (c *controller) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			// Unreadable subtrees are skipped rather than failing the watch.
			c.logger.Debugw("skipping unreadable path", "path", path, "error", err)
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		return c.watcher.Add(path)
	})
}

func (c *controller) handleChanges() {
	for {
		select {
		case event := <-c.watcher.Events:
			if event.Has(fsnotify.Create) {
				// A new directory extends the watch tree.
				c.maybeAddDir(event.Name)
			}
			if !c.rule.Matches(event.Name) {
				continue
			}
			c.handleDebounce(event)

		case err := <-c.watcher.Errors:
			c.logger.Warnw("failure in file watcher", "error", err)

		case <-c.closer:
			c.debounceMu.Lock()
			for _, timer := range c.debounceTimers {
				timer.Stop()
			}
			c.debounceTimers = make(map[string]*time.Timer)
			c.debounceMu.Unlock()

			if err := c.watcher.Close(); err != nil {
				c.logger.Warnw("failed to close file watcher", "error", err)
			}
			return
		}
	}
}

func (c *controller) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := c.addTree(path); err != nil {
		c.logger.Warnw("failed to extend watch tree", "path", path, "error", err)
	}
}

// handleDebounce delays forwarding per path so event bursts collapse into a
// single notification carrying the final change type.
func (c *controller) handleDebounce(event fsnotify.Event) {
	c.debounceMu.Lock()
	defer c.debounceMu.Unlock()

	if timer, exists := c.debounceTimers[event.Name]; exists {
		timer.Stop()
	}

	c.debounceTimers[event.Name] = time.AfterFunc(_debounceTimeout, func() {
		c.debounceMu.Lock()
		delete(c.debounceTimers, event.Name)
		c.debounceMu.Unlock()

		c.forward(event)
	})
}

// forward sends the event to the active session, dropping it when no session
// is running.
func (c *controller) forward(event fsnotify.Event) {
	change, ok := mapper.NotifyEventToFileEvent(event)
	if !ok {
		return
	}

	sessCtx, err := c.session.SessionContext(context.Background())
	if err != nil {
		c.logger.Debugw("dropping file event without a session", "path", event.Name)
		return
	}
	if _, state, ok := c.session.CurrentSession(); !ok || state != entity.SessionRunning {
		c.logger.Debugw("dropping file event, session not running", "path", event.Name)
		return
	}

	params := &protocol.DidChangeWatchedFilesParams{
		Changes: []*protocol.FileEvent{change},
	}
	if err := c.gateway.DidChangeWatchedFiles(sessCtx, params); err != nil {
		// A session deregistered between the state check and the send is a
		// benign race, the rest is worth a warning.
		if id, ok := errors.NotFoundUUID(err); ok {
			c.logger.Debugw("dropping file event, session deregistered", "path", event.Name, "uuid", id)
			return
		}
		c.logger.Warnw("failed to forward file change", "path", event.Name, "error", err)
		return
	}
	c.stats.Counter("events_forwarded").Inc(1)
}

// Close stops the event loop. Safe to call more than once, including before
// Watch.
func (c *controller) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if c.watcher != nil {
		c.closer <- true
	}
	return nil
}
