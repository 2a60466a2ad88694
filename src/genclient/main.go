package main

import (
	"github.com/genlang/gen-lsp-client/src/genclient/app"
	"go.uber.org/fx"
)

func opts() fx.Option {
	return fx.Options(
		app.Module,
	)
}

func main() {
	fx.New(opts()).Run()
}
