// Package session implements the lifecycle of a single language server
// session: spawning the external process, running the initialize handshake,
// scoping document traffic, and orderly teardown.
package session

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/genlang/gen-lsp-client/src/genclient/entity"
	langserver "github.com/genlang/gen-lsp-client/src/genclient/gateway/lang-server"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/errors"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/executor"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/fs"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/tracefile"
	"github.com/genlang/gen-lsp-client/src/genclient/mapper"
	"github.com/genlang/gen-lsp-client/src/genclient/repository/session"
	"github.com/gofrs/uuid"
	tally "github.com/uber-go/tally"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/pkg/fakenet"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	_nameKey = "session"

	_clientName = "gen-lsp-client"

	// Configuration keys
	_sessionConfigKey = "session"

	// Error templates
	_errStartProcess = "starting language server process: %w"
	_errHandshake    = "initialize handshake: %w"

	_defaultShutdownTimeout = 5 * time.Second
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Controller manages the lifecycle of the language server session.
type Controller interface {
	// StartSession spawns the server process described by spec and runs the
	// initialize handshake. Documents are scoped to the given rule. The
	// returned UUID identifies the session for the rest of its life.
	StartSession(ctx context.Context, spec entity.LaunchSpec, scope entity.ScopeRule) (uuid.UUID, error)
	// StopSession shuts down the current session. A missing session is not
	// an error. Shutdown is bounded; an unresponsive server is killed.
	StopSession(ctx context.Context) error

	// CurrentSession returns the UUID and state of the session most recently
	// started, if any.
	CurrentSession() (uuid.UUID, entity.SessionState, bool)
	// SessionContext returns ctx annotated with the current session's UUID,
	// for routing calls through the gateway.
	SessionContext(ctx context.Context) (context.Context, error)

	// Document synchronization, gated on the scope rule.
	DidOpen(ctx context.Context, item protocol.TextDocumentItem) error
	DidClose(ctx context.Context, docURI uri.URI) error
}

// Params are inbound parameters to initialize a new controller.
type Params struct {
	fx.In

	Sessions session.Repository
	Gateway  langserver.Gateway
	Handler  protocol.Client
	Executor executor.Executor
	Logger   *zap.SugaredLogger
	Config   config.Provider
	Stats    tally.Scope
	FS       fs.ClientFS
	Trace    tracefile.Sink
}

type sessionConfig struct {
	ShutdownTimeoutSeconds int `yaml:"shutdownTimeoutSeconds"`
}

// handle is the controller's live view of one spawned session. The entity in
// the repository mirrors it for observation; the handle keeps what the
// repository must not hold, such as the read loop's cancel func.
type handle struct {
	id      uuid.UUID
	state   entity.SessionState
	spec    entity.LaunchSpec
	conn    jsonrpc2.Conn
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	waitErr chan error
}

type controller struct {
	sessions session.Repository
	gateway  langserver.Gateway
	handler  protocol.Client
	executor executor.Executor
	logger   *zap.SugaredLogger
	stats    tally.Scope
	fs       fs.ClientFS
	trace    tracefile.Sink

	shutdownTimeout time.Duration

	mu      sync.Mutex
	current *handle
	scope   entity.ScopeRule
	open    map[uri.URI]struct{}
}

// New creates a new session lifecycle controller.
func New(p Params) (Controller, error) {
	cfg := sessionConfig{}
	if err := p.Config.Get(_sessionConfigKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting configuration for %q: %w", _sessionConfigKey, err)
	}
	timeout := _defaultShutdownTimeout
	if cfg.ShutdownTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.ShutdownTimeoutSeconds) * time.Second
	}

	return &controller{
		sessions:        p.Sessions,
		gateway:         p.Gateway,
		handler:         p.Handler,
		executor:        p.Executor,
		logger:          p.Logger.With("controller", _nameKey),
		stats:           p.Stats.SubScope("session_ctrl"),
		fs:              p.FS,
		trace:           p.Trace,
		shutdownTimeout: timeout,
		open:            make(map[uri.URI]struct{}),
	}, nil
}

// StartSession spawns the external process and completes the handshake.
//
// Starting a session while a previous one is still registered does not stop
// the previous one: its handle stays in the repository and its process keeps
// running. Callers are expected to stop before restarting; when they don't,
// the leak is visible in the active_sessions gauge and a warning is logged.
func (c *controller) StartSession(ctx context.Context, spec entity.LaunchSpec, scope entity.ScopeRule) (uuid.UUID, error) {
	c.mu.Lock()
	if prev := c.current; prev != nil && !prev.state.Terminal() {
		c.logger.Warnw("starting a session while a previous one is still registered; the previous handle is leaked",
			"previousUUID", prev.id,
			"previousState", prev.state,
		)
		c.stats.Counter("leaked_sessions").Inc(1)
	}
	c.mu.Unlock()

	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}

	sess := &entity.Session{
		UUID:       id,
		State:      entity.SessionStarting,
		LaunchSpec: spec,
	}
	if err := c.sessions.Set(ctx, sess); err != nil {
		return uuid.Nil, err
	}

	h, err := c.spawn(spec, id)
	if err != nil {
		c.sessions.Delete(ctx, id)
		return uuid.Nil, fmt.Errorf(_errStartProcess, err)
	}

	if err := c.gateway.RegisterServer(ctx, id, &h.conn); err != nil {
		c.teardown(h)
		c.sessions.Delete(ctx, id)
		return uuid.Nil, err
	}

	sessCtx := mapper.ContextWithSessionUUID(ctx, id)
	root, err := c.workspaceRoot()
	if err != nil {
		c.logger.Warnw("unable to determine a workspace root", "error", err)
	}
	if err := c.handshake(sessCtx, root); err != nil {
		c.gateway.DeregisterServer(ctx, id)
		c.teardown(h)
		c.sessions.Delete(ctx, id)
		return uuid.Nil, fmt.Errorf(_errHandshake, err)
	}

	h.state = entity.SessionRunning
	sess.State = entity.SessionRunning
	sess.WorkspaceRoot = root
	if h.cmd != nil && h.cmd.Process != nil {
		sess.PID = h.cmd.Process.Pid
	}
	if err := c.sessions.Set(ctx, sess); err != nil {
		return uuid.Nil, err
	}

	c.mu.Lock()
	c.current = h
	c.scope = scope
	c.open = make(map[uri.URI]struct{})
	c.mu.Unlock()

	c.logger.Infow("session started", "uuid", id, "command", spec.Command, "workspaceRoot", root)
	return id, nil
}

// spawn launches the server process with its stdio bridged onto a JSON-RPC
// connection, and starts the inbound read loop.
func (c *controller) spawn(spec entity.LaunchSpec, id uuid.UUID) (*handle, error) {
	cmd := exec.Command(spec.Command)
	cmd.Env = spec.Environ
	cmd.Stderr = c.trace

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := c.executor.StartCommand(cmd, spec.Environ); err != nil {
		return nil, err
	}

	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(fakenet.NewConn("stdio", stdout, stdin)))
	runCtx, cancel := context.WithCancel(mapper.ContextWithSessionUUID(context.Background(), id))
	conn.Go(runCtx, protocol.ClientHandler(c.handler, jsonrpc2.MethodNotFoundHandler))

	h := &handle{
		id:      id,
		state:   entity.SessionStarting,
		spec:    spec,
		conn:    conn,
		cmd:     cmd,
		cancel:  cancel,
		waitErr: make(chan error, 1),
	}
	go func() {
		h.waitErr <- cmd.Wait()
	}()
	return h, nil
}

func (c *controller) handshake(sessCtx context.Context, root string) error {
	params := &protocol.InitializeParams{
		ClientInfo: &protocol.ClientInfo{
			Name: _clientName,
		},
		Capabilities: protocol.ClientCapabilities{},
	}
	if root != "" {
		params.RootURI = uri.File(root)
		params.WorkspaceFolders = []protocol.WorkspaceFolder{
			{URI: string(uri.File(root)), Name: root},
		}
	}

	if _, err := c.gateway.Initialize(sessCtx, params); err != nil {
		return err
	}
	return c.gateway.Initialized(sessCtx, &protocol.InitializedParams{})
}

func (c *controller) workspaceRoot() (string, error) {
	wd, err := c.fs.Getwd()
	if err != nil {
		return "", err
	}
	out, err := c.fs.WorkspaceRoot(wd)
	if err != nil {
		// Outside a repository the working directory is the best scope
		// available.
		return wd, nil
	}
	root := strings.TrimSpace(string(out))
	if root == "" {
		return wd, nil
	}
	return root, nil
}

// StopSession shuts down the current session in order: shutdown request, exit
// notification, connection close, process exit. Each step is bounded by the
// configured timeout; a process that outlives it is killed.
//
// The handle reference is retained in its terminal state rather than cleared,
// so callers observe the stop through the state field and never through a
// missing reference.
func (c *controller) StopSession(ctx context.Context) error {
	c.mu.Lock()
	h := c.current
	c.open = make(map[uri.URI]struct{})
	c.mu.Unlock()

	if h == nil {
		c.logger.Debug("stop requested with no active session")
		return nil
	}
	if h.state.Terminal() {
		c.logger.Debugw("stop requested on an inactive session",
			"reason", &errors.SessionStateError{UUID: h.id, State: h.state})
		return nil
	}

	h.state = entity.SessionStopping
	if sess, err := c.sessions.Get(ctx, h.id); err == nil {
		sess.State = entity.SessionStopping
		c.sessions.Set(ctx, sess)
	}

	sessCtx := mapper.ContextWithSessionUUID(ctx, h.id)
	shutdownCtx, cancel := context.WithTimeout(sessCtx, c.shutdownTimeout)
	defer cancel()

	var result error
	if err := c.gateway.Shutdown(shutdownCtx); err != nil {
		result = multierr.Append(result, err)
	}
	if err := c.gateway.Exit(shutdownCtx); err != nil {
		result = multierr.Append(result, err)
	}
	result = multierr.Append(result, c.teardown(h))

	if err := c.gateway.DeregisterServer(ctx, h.id); err != nil {
		result = multierr.Append(result, err)
	}

	h.state = entity.SessionStopped
	if err := c.sessions.Delete(ctx, h.id); err != nil {
		result = multierr.Append(result, err)
	}

	c.logger.Infow("session stopped", "uuid", h.id)
	return result
}

// teardown closes the connection and reaps the process, killing it if it does
// not exit within the shutdown timeout.
func (c *controller) teardown(h *handle) error {
	var result error
	if err := h.conn.Close(); err != nil {
		result = multierr.Append(result, err)
	}
	h.cancel()

	if h.cmd == nil || h.cmd.Process == nil {
		return result
	}
	select {
	case <-h.waitErr:
	case <-time.After(c.shutdownTimeout):
		c.logger.Warnw("language server did not exit in time, killing it", "uuid", h.id, "pid", h.cmd.Process.Pid)
		if err := h.cmd.Process.Kill(); err != nil {
			result = multierr.Append(result, err)
		}
		<-h.waitErr
	}
	return result
}

// CurrentSession returns the UUID and state of the most recently started
// session. A stopped session is still reported, with its terminal state.
func (c *controller) CurrentSession() (uuid.UUID, entity.SessionState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return uuid.Nil, entity.SessionUninitialized, false
	}
	return c.current.id, c.current.state, true
}

// SessionContext annotates ctx with the current session's UUID.
func (c *controller) SessionContext(ctx context.Context) (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil, errors.NoSessionStartedError
	}
	return mapper.ContextWithSessionUUID(ctx, c.current.id), nil
}

// DidOpen forwards the open notification when the document is in scope and a
// session is running. Out-of-scope documents are dropped silently.
func (c *controller) DidOpen(ctx context.Context, item protocol.TextDocumentItem) error {
	c.mu.Lock()
	h := c.current
	scope := c.scope
	c.mu.Unlock()

	if h == nil {
		c.logger.Debugw("dropping didOpen without a session", "uri", item.URI)
		return nil
	}
	if h.state != entity.SessionRunning {
		c.logger.Debugw("dropping didOpen, session not running",
			"uri", item.URI,
			"reason", &errors.SessionStateError{UUID: h.id, State: h.state})
		return nil
	}
	if !scope.Matches(uriScheme(item.URI), string(item.LanguageID)) {
		c.logger.Debugw("dropping didOpen for out-of-scope document", "uri", item.URI, "languageId", item.LanguageID)
		return nil
	}

	c.mu.Lock()
	c.open[item.URI] = struct{}{}
	c.mu.Unlock()

	sessCtx := mapper.ContextWithSessionUUID(ctx, h.id)
	return c.gateway.DidOpen(sessCtx, &protocol.DidOpenTextDocumentParams{TextDocument: item})
}

// uriScheme extracts the scheme portion of a document URI.
func uriScheme(docURI uri.URI) string {
	s := string(docURI)
	if i := strings.Index(s, ":"); i >= 0 {
		return s[:i]
	}
	return ""
}

// DidClose forwards the close notification when the document was previously
// opened through this controller.
func (c *controller) DidClose(ctx context.Context, docURI uri.URI) error {
	c.mu.Lock()
	h := c.current
	_, wasOpen := c.open[docURI]
	delete(c.open, docURI)
	c.mu.Unlock()

	if h == nil || h.state != entity.SessionRunning || !wasOpen {
		return nil
	}

	sessCtx := mapper.ContextWithSessionUUID(ctx, h.id)
	return c.gateway.DidClose(sessCtx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	})
}
