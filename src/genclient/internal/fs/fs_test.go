package fs

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/genlang/gen-lsp-client/src/genclient/internal/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFS() ClientFS {
	return New(executor.NewExecutor())
}

func TestMkdirAll(t *testing.T) {
	f := newTestFS()
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, f.MkdirAll(dir))

	exists, err := f.DirExists(dir)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDirExists(t *testing.T) {
	f := newTestFS()
	dir := t.TempDir()

	exists, err := f.DirExists(dir)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = f.DirExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, exists)

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, f.WriteFile(file, "data"))
	exists, err = f.DirExists(file)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileExists(t *testing.T) {
	f := newTestFS()
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")

	exists, err := f.FileExists(file)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, f.WriteFile(file, "data"))
	exists, err = f.FileExists(file)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = f.FileExists(dir)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReadWriteFile(t *testing.T) {
	f := newTestFS()
	file := filepath.Join(t.TempDir(), "file.txt")

	require.NoError(t, f.WriteFile(file, "contents"))
	data, err := f.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "contents", string(data))
}

func TestTempFileAndRemove(t *testing.T) {
	f := newTestFS()
	dir := t.TempDir()

	file, err := f.TempFile(dir, "trace")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	require.NoError(t, f.Remove(file.Name()))
	_, err = os.Stat(file.Name())
	assert.True(t, os.IsNotExist(err))
}

func TestGetwd(t *testing.T) {
	f := newTestFS()
	wd, err := f.Getwd()
	require.NoError(t, err)
	assert.NotEmpty(t, wd)
}

func TestWorkspaceRoot(t *testing.T) {
	t.Run("captures command output", func(t *testing.T) {
		f := New(executor.NewExecutor(executor.WithExecFunc(func(cmd *exec.Cmd) error {
			assert.Equal(t, []string{"rev-parse", "--show-toplevel"}, cmd.Args[1:])
			_, err := cmd.Stdout.Write([]byte("/home/user/project\n"))
			return err
		})))

		out, err := f.WorkspaceRoot(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "/home/user/project\n", string(out))
	})

	t.Run("command failure", func(t *testing.T) {
		f := New(executor.NewExecutor(executor.WithExecFunc(func(cmd *exec.Cmd) error {
			return assert.AnError
		})))

		_, err := f.WorkspaceRoot(t.TempDir())
		assert.Error(t, err)
	})
}
