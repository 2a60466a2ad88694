// Package activation ties the client's startup and shutdown to the
// application lifecycle: it registers host commands, resolves the launch
// profile, starts the session and the file watcher, and tears both down in
// reverse order on exit.
package activation

import (
	"context"
	"fmt"
	"os"
	"strconv"

	filewatch "github.com/genlang/gen-lsp-client/src/genclient/controller/file-watch"
	sessionctrl "github.com/genlang/gen-lsp-client/src/genclient/controller/session"
	"github.com/genlang/gen-lsp-client/src/genclient/entity"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/clientinfofile"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/commands"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/launch"
	"github.com/genlang/gen-lsp-client/src/genclient/repository/session"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	_nameKey = "activation"

	// CommandPlaceholder is the identifier of the auxiliary command exposed
	// to the host. It currently only acknowledges the invocation.
	CommandPlaceholder = "dummy.do_something"

	// Configuration keys
	_sessionConfigKey = "session"

	// Client info file fields
	_infoFieldUUID = "sessionUUID"
	_infoFieldPID  = "pid"
)

// Module invokes the controller so activation runs at startup.
var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(func(Controller) {}),
)

// Controller drives client activation and deactivation.
type Controller interface {
	// Start resolves the launch profile and brings up the session and the
	// file watcher.
	Start(ctx context.Context) error
	// Stop tears down the watcher and the session.
	Stop(ctx context.Context) error
}

// Params are inbound parameters to initialize a new controller.
type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *zap.SugaredLogger
	Config    config.Provider
	Commands  commands.Registry
	Launch    launch.Resolver
	Session   sessionctrl.Controller
	Watcher   filewatch.Controller
	Sessions  session.Repository
	InfoFile  clientinfofile.ClientInfoFile
}

type sessionConfig struct {
	LanguageID    string `yaml:"languageId"`
	Scheme        string `yaml:"scheme"`
	FileExtension string `yaml:"fileExtension"`
}

type controller struct {
	logger   *zap.SugaredLogger
	commands commands.Registry
	launch   launch.Resolver
	session  sessionctrl.Controller
	watcher  filewatch.Controller
	sessions session.Repository
	infoFile clientinfofile.ClientInfoFile

	scope entity.ScopeRule
	watch entity.WatchRule

	releaseCommand func()
}

// New creates the activation controller and hooks it into the lifecycle.
func New(p Params) (Controller, error) {
	cfg := sessionConfig{}
	if err := p.Config.Get(_sessionConfigKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting configuration for %q: %w", _sessionConfigKey, err)
	}

	c := &controller{
		logger:   p.Logger.With("controller", _nameKey),
		commands: p.Commands,
		launch:   p.Launch,
		session:  p.Session,
		watcher:  p.Watcher,
		sessions: p.Sessions,
		infoFile: p.InfoFile,
		scope: entity.ScopeRule{
			Scheme:     cfg.Scheme,
			LanguageID: cfg.LanguageID,
		},
		watch: entity.NewWatchRule(cfg.FileExtension),
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: c.Start,
		OnStop:  c.Stop,
	})
	return c, nil
}

// Start registers the host command, resolves the launch profile from the
// process environment, starts the session, and begins watching the
// workspace.
func (c *controller) Start(ctx context.Context) error {
	release, err := c.commands.Register(CommandPlaceholder, c.handleCommand)
	if err != nil {
		return err
	}
	c.releaseCommand = release

	configs := c.launch.ResolveConfigs(os.Environ())
	id, err := c.session.StartSession(ctx, configs.Run, c.scope)
	if err != nil {
		return err
	}

	sess, err := c.sessions.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := c.watcher.Watch(ctx, sess.WorkspaceRoot, c.watch); err != nil {
		// The session is usable without the watcher; change events from
		// unopened files are simply lost.
		c.logger.Warnw("file watching unavailable", "error", err)
	}

	c.publishInfo(sess.UUID.String(), sess.PID)
	c.logger.Infow("client activated", "uuid", id, "workspaceRoot", sess.WorkspaceRoot)
	return nil
}

// Stop releases the host command and tears down the watcher and session.
func (c *controller) Stop(ctx context.Context) error {
	if c.releaseCommand != nil {
		c.releaseCommand()
		c.releaseCommand = nil
	}

	var result error
	result = multierr.Append(result, c.watcher.Close())
	result = multierr.Append(result, c.session.StopSession(ctx))

	c.logger.Info("client deactivated")
	return result
}

func (c *controller) handleCommand(ctx context.Context, locator string) {
	c.logger.Infow("command invoked", "command", CommandPlaceholder, "locator", locator)
}

func (c *controller) publishInfo(id string, pid int) {
	if err := c.infoFile.UpdateField(_infoFieldUUID, id); err != nil {
		c.logger.Warnw("unable to record session in client info file", "error", err)
	}
	if pid > 0 {
		if err := c.infoFile.UpdateField(_infoFieldPID, strconv.Itoa(pid)); err != nil {
			c.logger.Warnw("unable to record pid in client info file", "error", err)
		}
	}
}
