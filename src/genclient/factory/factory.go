// Package factory provides test data factories for the gen-lsp-client service.
package factory

import (
	"github.com/genlang/gen-lsp-client/src/genclient/entity"
	"github.com/gofrs/uuid"
	"go.lsp.dev/jsonrpc2"
)

// UUID is a user-defined factory for a random uuid.UUID.
func UUID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

// JSONRPCRequest is a user-defined factory for a JSON-RPC request containing the specified method and parameters.
func JSONRPCRequest(method string, params interface{}) jsonrpc2.Request {
	req, _ := jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), method, params)
	return req
}

// LaunchSpec is a factory for a valid launch spec.
func LaunchSpec() entity.LaunchSpec {
	return entity.LaunchSpec{
		Command: "gen-language-server",
		Environ: []string{"RUST_LOG=debug"},
	}
}

// Session is a factory for a session entity in the given state.
func Session(state entity.SessionState) *entity.Session {
	return &entity.Session{
		UUID:       UUID(),
		State:      state,
		LaunchSpec: LaunchSpec(),
	}
}
