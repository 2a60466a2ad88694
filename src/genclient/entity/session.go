// Package entity contains the domain types for the gen-lsp-client service.
package entity

import (
	"os/exec"

	"github.com/gofrs/uuid"
	"go.lsp.dev/jsonrpc2"
)

type keyType string

// SessionContextKey indicates the key to be used to identify the session UUID in the context.
const SessionContextKey keyType = "SessionUUID"

// SessionState is the lifecycle state of a session handle.
// A handle only ever moves forward; there is no transition back to SessionUninitialized.
type SessionState int32

const (
	// SessionUninitialized indicates a handle that has been constructed but not started.
	SessionUninitialized SessionState = iota
	// SessionStarting indicates that the server process is being spawned and the handshake is in flight.
	SessionStarting
	// SessionRunning indicates that the handshake completed and the session is live.
	SessionRunning
	// SessionStopping indicates that shutdown has been requested.
	SessionStopping
	// SessionStopped is the terminal state.
	SessionStopped
)

// String implements fmt.Stringer.
func (s SessionState) String() string {
	switch s {
	case SessionUninitialized:
		return "uninitialized"
	case SessionStarting:
		return "starting"
	case SessionRunning:
		return "running"
	case SessionStopping:
		return "stopping"
	case SessionStopped:
		return "stopped"
	}
	return "unknown"
}

// Terminal reports whether no further transitions are possible from this state.
func (s SessionState) Terminal() bool {
	return s == SessionStopped
}

// Session entity representing a single language server session.
type Session struct {
	UUID          uuid.UUID      `json:"uuid" zap:"uuid"`
	State         SessionState   `json:"state" zap:"state"`
	LaunchSpec    LaunchSpec     `json:"launchSpec" zap:"launchSpec"`
	Conn          *jsonrpc2.Conn `json:"-" zap:"-"`
	Cmd           *exec.Cmd      `json:"-" zap:"-"`
	PID           int            `json:"pid" zap:"pid"`
	WorkspaceRoot string         `json:"workspaceRoot" zap:"workspaceRoot"`
}
