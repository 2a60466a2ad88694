// Package langserver handles inbound traffic from the spawned language
// server: the protocol.Client surface of the LSP exchange.
package langserver

import (
	"context"

	"github.com/genlang/gen-lsp-client/src/genclient/internal/tracefile"
	tally "github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _nameKey = "lang-server-handler"

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Params are inbound parameters to initialize a new handler.
type Params struct {
	fx.In

	Logger *zap.SugaredLogger
	Stats  tally.Scope
	Trace  tracefile.Sink
}

type handler struct {
	logger *zap.SugaredLogger
	stats  tally.Scope
	trace  tracefile.Sink
}

// New constructs the protocol.Client implementation that receives the
// server's notifications and requests.
func New(p Params) protocol.Client {
	return &handler{
		logger: p.Logger.With("handler", _nameKey),
		stats:  p.Stats.SubScope("lang_server"),
		trace:  p.Trace,
	}
}

// LogMessage routes window/logMessage into the service log and the trace sink.
func (h *handler) LogMessage(ctx context.Context, params *protocol.LogMessageParams) error {
	h.trace.Write([]byte(params.Message))

	switch params.Type {
	case protocol.MessageTypeError:
		h.logger.Errorw("server message", "message", params.Message)
	case protocol.MessageTypeWarning:
		h.logger.Warnw("server message", "message", params.Message)
	default:
		h.logger.Debugw("server message", "message", params.Message)
	}
	return nil
}

// PublishDiagnostics records incoming diagnostics. The client has no UI of
// its own; diagnostics are counted and logged for the trace consumer.
func (h *handler) PublishDiagnostics(ctx context.Context, params *protocol.PublishDiagnosticsParams) error {
	h.stats.Counter("diagnostics_published").Inc(1)
	h.logger.Debugw("diagnostics received", "uri", params.URI, "count", len(params.Diagnostics))
	return nil
}

func (h *handler) ShowMessage(ctx context.Context, params *protocol.ShowMessageParams) error {
	h.logger.Infow("server show message", "type", params.Type, "message", params.Message)
	return nil
}

func (h *handler) ShowMessageRequest(ctx context.Context, params *protocol.ShowMessageRequestParams) (*protocol.MessageActionItem, error) {
	// No interactive surface; decline by selecting nothing.
	h.logger.Infow("server show message request", "message", params.Message)
	return nil, nil
}

func (h *handler) Progress(ctx context.Context, params *protocol.ProgressParams) error {
	h.logger.Debugw("server progress", "token", params.Token)
	return nil
}

func (h *handler) WorkDoneProgressCreate(ctx context.Context, params *protocol.WorkDoneProgressCreateParams) error {
	h.logger.Debugw("server work done progress create", "token", params.Token)
	return nil
}

func (h *handler) Telemetry(ctx context.Context, params interface{}) error {
	h.stats.Counter("telemetry_events").Inc(1)
	return nil
}

func (h *handler) RegisterCapability(ctx context.Context, params *protocol.RegistrationParams) error {
	for _, reg := range params.Registrations {
		h.logger.Debugw("server registered capability", "method", reg.Method)
	}
	return nil
}

func (h *handler) UnregisterCapability(ctx context.Context, params *protocol.UnregistrationParams) error {
	for _, unreg := range params.Unregisterations {
		h.logger.Debugw("server unregistered capability", "method", unreg.Method)
	}
	return nil
}

func (h *handler) ApplyEdit(ctx context.Context, params *protocol.ApplyWorkspaceEditParams) (*protocol.ApplyWorkspaceEditResponse, error) {
	// Edits require an editor surface; report them as not applied.
	h.logger.Warnw("server requested workspace edit, no editor surface attached")
	return &protocol.ApplyWorkspaceEditResponse{Applied: false}, nil
}

func (h *handler) Configuration(ctx context.Context, params *protocol.ConfigurationParams) ([]interface{}, error) {
	// Answer each requested item with an empty section.
	return make([]interface{}, len(params.Items)), nil
}

func (h *handler) WorkspaceFolders(ctx context.Context) ([]protocol.WorkspaceFolder, error) {
	return []protocol.WorkspaceFolder{}, nil
}

func (h *handler) ShowDocument(ctx context.Context, params *protocol.ShowDocumentParams) (*protocol.ShowDocumentResult, error) {
	h.logger.Infow("server requested show document", "uri", params.URI)
	return &protocol.ShowDocumentResult{Success: false}, nil
}
