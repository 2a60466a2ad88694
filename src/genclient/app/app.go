package app

import (
	"context"
	"time"

	"github.com/genlang/gen-lsp-client/src/genclient/controller/activation"
	filewatch "github.com/genlang/gen-lsp-client/src/genclient/controller/file-watch"
	sessionctrl "github.com/genlang/gen-lsp-client/src/genclient/controller/session"
	langservergw "github.com/genlang/gen-lsp-client/src/genclient/gateway/lang-server"
	langserverhandler "github.com/genlang/gen-lsp-client/src/genclient/handler/lang-server"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/clientinfofile"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/commands"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/core"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/executor"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/fs"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/launch"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/tracefile"
	sessionrepo "github.com/genlang/gen-lsp-client/src/genclient/repository/session"
	tally "github.com/uber-go/tally"
	"go.uber.org/fx"
)

// Module defines the gen-lsp-client application module.
var Module = fx.Options(
	langservergw.Module,      // outbounds
	langserverhandler.Module, // inbounds
	fs.Module,
	executor.Module,
	commands.Module,
	launch.Module,
	clientinfofile.Module,
	tracefile.Module,
	core.ConfigModule,
	core.LoggerModule,
	sessionrepo.Module,
	sessionctrl.Module,
	filewatch.Module,
	activation.Module,
	fx.Provide(func(lc fx.Lifecycle) tally.Scope {
		rs, closer := tally.NewRootScope(tally.ScopeOptions{
			Tags: map[string]string{
				"service": "gen-lsp-client",
			},
		}, 1*time.Second)

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})

		return rs
	}),
	fx.Decorate(decorateEnvContext),
	fx.Decorate(decorateConfigProvider),
	fx.Provide(func() Context {
		return Context{
			Environment:        EnvLocal,
			RuntimeEnvironment: EnvLocal,
		}
	}),
)
