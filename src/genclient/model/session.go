// Package model contains the repository layer models for the gen-lsp-client service.
package model

import (
	"os/exec"

	"github.com/gofrs/uuid"
	"go.lsp.dev/jsonrpc2"
)

// Session is the repository layer model for an individual language server session.
type Session struct {
	UUID          uuid.UUID
	State         int32
	Command       string
	Environ       []string
	Conn          *jsonrpc2.Conn
	Cmd           *exec.Cmd
	PID           int
	WorkspaceRoot string
}
