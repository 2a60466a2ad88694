// Package fs wraps the filesystem operations used by gen-lsp-client.
package fs

import (
	"bytes"
	"os"
	"os/exec"

	"github.com/genlang/gen-lsp-client/src/genclient/internal/executor"
	"go.uber.org/fx"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// ClientFS wraps the filesystem operations used by the client.
type ClientFS interface {
	Getwd() (string, error)
	MkdirAll(path string) error
	WorkspaceRoot(path string) ([]byte, error)
	DirExists(path string) (bool, error)
	FileExists(path string) (bool, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data string) error
	TempFile(dir, pattern string) (*os.File, error)
	Remove(name string) error
}

type fsImpl struct {
	executor executor.Executor
}

// New creates a new ClientFS.
func New(exc executor.Executor) ClientFS {
	return fsImpl{executor: exc}
}

// Getwd returns the current working directory.
func (fsImpl) Getwd() (string, error) { return os.Getwd() }

// MkdirAll creates a directory and all its parents.
func (fsImpl) MkdirAll(path string) error { return os.MkdirAll(path, os.ModePerm) }

// WorkspaceRoot returns the enclosing repository root for the given path.
func (f fsImpl) WorkspaceRoot(path string) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = path
	cmd.Stdout = &stdout

	if err := f.executor.RunCommand(cmd, os.Environ()); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

// DirExists reports whether path exists and is a directory.
func (fsImpl) DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// FileExists reports whether path exists and is a regular file.
func (fsImpl) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (fsImpl) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (fsImpl) WriteFile(name string, data string) error {
	return os.WriteFile(name, []byte(data), 0644)
}

func (fsImpl) TempFile(dir, pattern string) (*os.File, error) {
	return os.CreateTemp(dir, pattern)
}

func (fsImpl) Remove(name string) error {
	return os.Remove(name)
}
