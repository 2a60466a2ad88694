// Package mapper converts between the layers of the gen-lsp-client service.
package mapper

import (
	"context"

	"github.com/genlang/gen-lsp-client/src/genclient/entity"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/errors"
	"github.com/genlang/gen-lsp-client/src/genclient/model"
	"github.com/gofrs/uuid"
)

// SessionToModel maps a Session entity to its model equivalent.
func SessionToModel(f *entity.Session) *model.Session {
	return &model.Session{
		UUID:          f.UUID,
		State:         int32(f.State),
		Command:       f.LaunchSpec.Command,
		Environ:       f.LaunchSpec.Environ,
		Conn:          f.Conn,
		Cmd:           f.Cmd,
		PID:           f.PID,
		WorkspaceRoot: f.WorkspaceRoot,
	}
}

// ModelToSession maps a model Session to its entity equivalent.
func ModelToSession(f *model.Session) (*entity.Session, error) {
	return &entity.Session{
		UUID:  f.UUID,
		State: entity.SessionState(f.State),
		LaunchSpec: entity.LaunchSpec{
			Command: f.Command,
			Environ: f.Environ,
		},
		Conn:          f.Conn,
		Cmd:           f.Cmd,
		PID:           f.PID,
		WorkspaceRoot: f.WorkspaceRoot,
	}, nil
}

// ContextToSessionUUID extracts the UUID from a context.
func ContextToSessionUUID(c context.Context) (uuid.UUID, error) {
	s, ok := c.Value(entity.SessionContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, &errors.NoSessionFoundError{}
	}
	return s, nil
}

// ContextWithSessionUUID returns a context carrying the given session UUID.
func ContextWithSessionUUID(c context.Context, id uuid.UUID) context.Context {
	return context.WithValue(c, entity.SessionContextKey, id)
}
