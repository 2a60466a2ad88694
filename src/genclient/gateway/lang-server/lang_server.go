// Package langserver is the outbound gateway to the spawned language server.
// All calls should include a context carrying a session UUID, which routes the
// call over the correct session's connection.
package langserver

import (
	"context"
	"fmt"
	"sync"

	"github.com/genlang/gen-lsp-client/src/genclient/internal/errors"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/tracefile"
	"github.com/genlang/gen-lsp-client/src/genclient/mapper"
	"github.com/gofrs/uuid"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const _errSendToServer = "sending call/notification to language server: %w"

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Gateway sends outbound requests and notifications to the language server.
type Gateway interface {
	// RegisterServer registers a new server connection with the gateway.
	// Should be called once per spawned session.
	RegisterServer(ctx context.Context, id uuid.UUID, conn *jsonrpc2.Conn) error
	// DeregisterServer removes a server connection from the gateway.
	DeregisterServer(ctx context.Context, id uuid.UUID) error

	// Methods from the protocol.Server interface used by this client.
	Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error)
	Initialized(ctx context.Context, params *protocol.InitializedParams) error
	Shutdown(ctx context.Context) error
	Exit(ctx context.Context) error
	DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error
	DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error
	DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error
}

// Params are inbound parameters to initialize a new gateway.
type Params struct {
	fx.In

	Logger *zap.Logger
	Trace  tracefile.Sink
}

type gateway struct {
	servers     map[uuid.UUID]protocol.Server
	connections map[uuid.UUID]jsonrpc2.Conn
	serversMu   sync.Mutex
	logger      *zap.Logger
}

// New returns a Gateway for calls to spawned language servers. Protocol-level
// logging from the dispatcher is routed into the trace sink.
func New(p Params) Gateway {
	traceCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(p.Trace),
		zap.DebugLevel,
	)

	return &gateway{
		servers:     make(map[uuid.UUID]protocol.Server),
		connections: make(map[uuid.UUID]jsonrpc2.Conn),
		logger:      zap.New(zapcore.NewTee(p.Logger.Core(), traceCore)),
	}
}

func (g *gateway) RegisterServer(ctx context.Context, id uuid.UUID, conn *jsonrpc2.Conn) error {
	g.serversMu.Lock()
	defer g.serversMu.Unlock()

	g.servers[id] = protocol.ServerDispatcher(*conn, g.logger)
	g.connections[id] = *conn

	return nil
}

func (g *gateway) DeregisterServer(ctx context.Context, id uuid.UUID) error {
	g.serversMu.Lock()
	defer g.serversMu.Unlock()

	delete(g.servers, id)
	delete(g.connections, id)

	return nil
}

func (g *gateway) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s, err := g.getServer(ctx)
	if err != nil {
		return nil, fmt.Errorf(_errSendToServer, err)
	}
	return s.Initialize(ctx, params)
}

func (g *gateway) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	s, err := g.getServer(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToServer, err)
	}
	return s.Initialized(ctx, params)
}

func (g *gateway) Shutdown(ctx context.Context) error {
	s, err := g.getServer(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToServer, err)
	}
	return s.Shutdown(ctx)
}

func (g *gateway) Exit(ctx context.Context) error {
	s, err := g.getServer(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToServer, err)
	}
	return s.Exit(ctx)
}

func (g *gateway) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s, err := g.getServer(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToServer, err)
	}
	return s.DidOpen(ctx, params)
}

func (g *gateway) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s, err := g.getServer(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToServer, err)
	}
	return s.DidClose(ctx, params)
}

func (g *gateway) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	s, err := g.getServer(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToServer, err)
	}
	return s.DidChangeWatchedFiles(ctx, params)
}

func (g *gateway) getServer(ctx context.Context) (protocol.Server, error) {
	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return nil, err
	}

	g.serversMu.Lock()
	defer g.serversMu.Unlock()
	s, ok := g.servers[id]
	if !ok {
		return nil, &errors.UUIDNotFoundError{UUID: id}
	}
	return s, nil
}
