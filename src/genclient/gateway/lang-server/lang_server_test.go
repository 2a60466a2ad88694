package langserver

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/genlang/gen-lsp-client/idl/mock/jsonrpc2mock"
	"github.com/genlang/gen-lsp-client/src/genclient/factory"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/tracefile"
	"github.com/genlang/gen-lsp-client/src/genclient/mapper"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func newTestGateway(t *testing.T) (Gateway, *jsonrpc2mock.MockConn, context.Context) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockConn := jsonrpc2mock.NewMockConn(ctrl)

	g := New(Params{
		Logger: zap.NewNop(),
		Trace:  tracefile.Sink{Writer: &bytes.Buffer{}, Name: "test"},
	})

	id := factory.UUID()
	var conn jsonrpc2.Conn = mockConn
	require.NoError(t, g.RegisterServer(context.Background(), id, &conn))

	ctx := mapper.ContextWithSessionUUID(context.Background(), id)
	return g, mockConn, ctx
}

func TestRegisterServer(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	g := New(Params{
		Logger: zap.NewNop(),
		Trace:  tracefile.Sink{Writer: &bytes.Buffer{}},
	}).(*gateway)

	for i := 0; i < 10; i++ {
		mockConn := jsonrpc2mock.NewMockConn(ctrl)
		var conn jsonrpc2.Conn = mockConn
		err := g.RegisterServer(ctx, factory.UUID(), &conn)
		assert.NoError(t, err)
	}

	assert.Len(t, g.servers, 10)
	assert.Len(t, g.connections, 10)
}

func TestDeregisterServer(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	g := New(Params{
		Logger: zap.NewNop(),
		Trace:  tracefile.Sink{Writer: &bytes.Buffer{}},
	}).(*gateway)

	for i := 0; i < 10; i++ {
		mockConn := jsonrpc2mock.NewMockConn(ctrl)
		var conn jsonrpc2.Conn = mockConn
		require.NoError(t, g.RegisterServer(ctx, factory.UUID(), &conn))
	}

	for key := range g.servers {
		assert.NotNil(t, g.servers[key])
		err := g.DeregisterServer(ctx, key)
		assert.NoError(t, err)
		assert.Nil(t, g.servers[key])
	}
	assert.Len(t, g.servers, 0)
	assert.Len(t, g.connections, 0)
}

func TestInitialize(t *testing.T) {
	g, mockConn, ctx := newTestGateway(t)

	t.Run("call success", func(t *testing.T) {
		mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodInitialize), gomock.Any(), gomock.Any()).Return(jsonrpc2.NewNumberID(5), nil)
		_, err := g.Initialize(ctx, &protocol.InitializeParams{})
		assert.NoError(t, err)
	})

	t.Run("call failure", func(t *testing.T) {
		mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodInitialize), gomock.Any(), gomock.Any()).Return(jsonrpc2.NewNumberID(5), errors.New("error"))
		_, err := g.Initialize(ctx, &protocol.InitializeParams{})
		assert.Error(t, err)
	})

	t.Run("missing session uuid", func(t *testing.T) {
		_, err := g.Initialize(context.Background(), &protocol.InitializeParams{})
		assert.Error(t, err)
	})
}

func TestNotifications(t *testing.T) {
	g, mockConn, ctx := newTestGateway(t)

	tests := []struct {
		name   string
		method string
		send   func(ctx context.Context) error
	}{
		{
			name:   "initialized",
			method: protocol.MethodInitialized,
			send: func(ctx context.Context) error {
				return g.Initialized(ctx, &protocol.InitializedParams{})
			},
		},
		{
			name:   "exit",
			method: protocol.MethodExit,
			send: func(ctx context.Context) error {
				return g.Exit(ctx)
			},
		},
		{
			name:   "did open",
			method: protocol.MethodTextDocumentDidOpen,
			send: func(ctx context.Context) error {
				return g.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{})
			},
		},
		{
			name:   "did close",
			method: protocol.MethodTextDocumentDidClose,
			send: func(ctx context.Context) error {
				return g.DidClose(ctx, &protocol.DidCloseTextDocumentParams{})
			},
		},
		{
			name:   "did change watched files",
			method: protocol.MethodWorkspaceDidChangeWatchedFiles,
			send: func(ctx context.Context) error {
				return g.DidChangeWatchedFiles(ctx, &protocol.DidChangeWatchedFilesParams{})
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(tt.method), gomock.Any()).Return(nil)
			assert.NoError(t, tt.send(ctx))

			mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(tt.method), gomock.Any()).Return(errors.New("error"))
			assert.Error(t, tt.send(ctx))

			assert.Error(t, tt.send(context.Background()))
		})
	}
}

func TestShutdown(t *testing.T) {
	g, mockConn, ctx := newTestGateway(t)

	mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodShutdown), gomock.Any(), gomock.Any()).Return(jsonrpc2.NewNumberID(5), nil)
	assert.NoError(t, g.Shutdown(ctx))

	mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodShutdown), gomock.Any(), gomock.Any()).Return(jsonrpc2.NewNumberID(5), errors.New("error"))
	assert.Error(t, g.Shutdown(ctx))
}

func TestUnknownSession(t *testing.T) {
	g := New(Params{
		Logger: zap.NewNop(),
		Trace:  tracefile.Sink{Writer: &bytes.Buffer{}},
	})

	ctx := mapper.ContextWithSessionUUID(context.Background(), uuid.Must(uuid.NewV4()))
	err := g.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{})
	assert.Error(t, err)
}
