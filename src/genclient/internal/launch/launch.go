// Package launch resolves how the external language server process is spawned.
package launch

import (
	"strings"

	"github.com/genlang/gen-lsp-client/src/genclient/entity"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// EnvServerPath redirects the spawn to a different server binary.
	EnvServerPath = "GEN_SERVER_PATH"

	// The spawned server always runs at elevated diagnostic verbosity,
	// regardless of what the caller's environment says.
	_envVerbosity   = "RUST_LOG"
	_verbosityValue = "debug"

	_configKeyServerPath = "session.defaultServerPath"
	_defaultServerPath   = "gen-language-server"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Resolver computes launch specs for the external analysis process.
type Resolver interface {
	// Resolve produces the launch spec for the given process environment.
	// The command is not validated to exist; a bad path surfaces when the
	// session attempts to start.
	Resolve(environ []string) entity.LaunchSpec
	// ResolveConfigs produces the run and debug profiles from the same
	// inputs. Both profiles are currently identical.
	ResolveConfigs(environ []string) entity.LaunchConfigs
}

// Params are inbound parameters to initialize a new resolver.
type Params struct {
	fx.In

	Config config.Provider
	Logger *zap.SugaredLogger
}

type resolver struct {
	defaultCommand string
	logger         *zap.SugaredLogger
}

// New constructs a Resolver with the configured default server path.
func New(p Params) (Resolver, error) {
	defaultCommand := _defaultServerPath
	if err := p.Config.Get(_configKeyServerPath).Populate(&defaultCommand); err != nil {
		return nil, err
	}
	if defaultCommand == "" {
		defaultCommand = _defaultServerPath
	}

	return &resolver{
		defaultCommand: defaultCommand,
		logger:         p.Logger,
	}, nil
}

func (r *resolver) Resolve(environ []string) entity.LaunchSpec {
	command := r.defaultCommand
	if override := lookupEnviron(environ, EnvServerPath); override != "" {
		command = override
	}

	spec := entity.LaunchSpec{
		Command: command,
		Environ: withForcedVerbosity(environ),
	}
	r.logger.Infow("resolved launch spec", "command", spec.Command)
	return spec
}

func (r *resolver) ResolveConfigs(environ []string) entity.LaunchConfigs {
	return entity.LaunchConfigs{
		Run:   r.Resolve(environ),
		Debug: r.Resolve(environ),
	}
}

// withForcedVerbosity returns a copy of environ with the verbosity variable
// pinned, overriding any caller-provided value.
func withForcedVerbosity(environ []string) []string {
	merged := make([]string, 0, len(environ)+1)
	for _, kv := range environ {
		if strings.HasPrefix(kv, _envVerbosity+"=") {
			continue
		}
		merged = append(merged, kv)
	}
	return append(merged, _envVerbosity+"="+_verbosityValue)
}

func lookupEnviron(environ []string, key string) string {
	prefix := key + "="
	for _, kv := range environ {
		if strings.HasPrefix(kv, prefix) {
			return strings.TrimPrefix(kv, prefix)
		}
	}
	return ""
}
