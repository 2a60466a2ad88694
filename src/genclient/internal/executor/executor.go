// Package executor wraps the execution of "os/exec".Cmd's to allow adding logs to
// each exec and makes it easier to test.
package executor

import (
	"bytes"
	"io"
	"os/exec"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a module to inject using fx.
var Module = fx.Options(
	fx.Provide(func(logger *zap.SugaredLogger) Executor {
		return NewExecutor(WithLogger(logger))
	}),
)

// Executor wraps process launch and execution.
type Executor interface {
	// StartCommand logs and starts the Cmd without waiting for it to exit.
	// The caller owns the resulting process.
	StartCommand(cmd *exec.Cmd, env []string) error
	// RunCommand logs and executes the Cmd, waiting for it to complete.
	RunCommand(cmd *exec.Cmd, env []string) error
}

type executorImpl struct {
	Logger *zap.SugaredLogger
	// ExecFunc and StartFunc may be overridden in tests.
	ExecFunc  func(e *exec.Cmd) error
	StartFunc func(e *exec.Cmd) error
}

// Option defines options to customize the executor's behavior.
type Option func(*executorImpl)

// WithLogger overrides the default noop logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(executor *executorImpl) {
		executor.Logger = logger
	}
}

// WithExecFunc provides customized blocking-exec behavior.
func WithExecFunc(execFunc func(e *exec.Cmd) error) Option {
	return func(executor *executorImpl) {
		executor.ExecFunc = execFunc
	}
}

// WithStartFunc provides customized spawn behavior.
func WithStartFunc(startFunc func(e *exec.Cmd) error) Option {
	return func(executor *executorImpl) {
		executor.StartFunc = startFunc
	}
}

// NewExecutor creates an Executor with the default exec behavior.
func NewExecutor(opts ...Option) Executor {
	executor := &executorImpl{
		Logger:    zap.NewNop().Sugar(),
		ExecFunc:  func(cmd *exec.Cmd) error { return cmd.Run() },
		StartFunc: func(cmd *exec.Cmd) error { return cmd.Start() },
	}
	for _, opt := range opts {
		opt(executor)
	}
	return executor
}

// StartCommand logs the Path/Args and spawns the process. Stdin is left
// untouched; the caller may have wired pipes that must not be drained here.
func (l *executorImpl) StartCommand(cmd *exec.Cmd, env []string) error {
	l.Logger.Infow("Exec",
		"Path", cmd.Path,
		"Dir", cmd.Dir,
		"Args", cmd.Args[1:],
	)

	if l.StartFunc == nil {
		l.Logger.Warn("missing StartFunc - skipped execution")
		return nil
	}

	cmd.Env = env
	return l.StartFunc(cmd)
}

// RunCommand logs the Path/Args and executes the command to completion.
func (l *executorImpl) RunCommand(cmd *exec.Cmd, env []string) error {
	if err := l.logCommand(cmd); err != nil {
		return err
	}

	if l.ExecFunc == nil {
		l.Logger.Warn("missing ExecFunc - skipped execution")
		return nil
	}

	cmd.Env = env
	return l.ExecFunc(cmd)
}

// Logs the command specified: Path, Dir, Args, Stdin (if available).
func (l *executorImpl) logCommand(cmd *exec.Cmd) error {
	logKeysAndValues := []interface{}{
		"Path", cmd.Path,
		"Dir", cmd.Dir,
		"Args", cmd.Args[1:], // First arg is always the command itself
	}

	if cmd.Stdin != nil {
		stdinBytes, err := io.ReadAll(cmd.Stdin)
		if err != nil {
			return err
		}
		logKeysAndValues = append(logKeysAndValues, "Stdin", string(stdinBytes))
		cmd.Stdin = bytes.NewReader(stdinBytes)
	}

	l.Logger.Infow("Exec", logKeysAndValues...)
	return nil
}
