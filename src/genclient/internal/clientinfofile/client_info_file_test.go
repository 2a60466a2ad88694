package clientinfofile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/config"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func newInfoFile(t *testing.T, path string) (ClientInfoFile, *fxtest.Lifecycle) {
	t.Helper()
	provider, err := config.NewYAML(config.Source(strings.NewReader("clientInfoFilePath: " + path + "\n")))
	require.NoError(t, err)

	lc := fxtest.NewLifecycle(t)
	m, err := New(Params{
		Config:    provider,
		Lifecycle: lc,
		Logger:    zap.NewNop().Sugar(),
	})
	require.NoError(t, err)
	return m, lc
}

func TestUpdateField(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gen-lsp-client.json")
	m, _ := newInfoFile(t, path)

	require.NoError(t, m.UpdateField("trace", "/tmp/trace.log"))
	require.NoError(t, m.UpdateField("pid", "4242"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var contents map[string]string
	require.NoError(t, json.Unmarshal(data, &contents))
	assert.Equal(t, "/tmp/trace.log", contents["trace"])
	assert.Equal(t, "4242", contents["pid"])
}

func TestRemovedOnStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gen-lsp-client.json")
	m, lc := newInfoFile(t, path)

	require.NoError(t, m.UpdateField("pid", "1"))
	lc.RequireStart().RequireStop()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStopWithoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gen-lsp-client.json")
	_, lc := newInfoFile(t, path)

	// Never written; stop must not fail.
	lc.RequireStart().RequireStop()
}

func TestNoPathConfigured(t *testing.T) {
	provider, err := config.NewYAML(config.Source(strings.NewReader("service:\n  name: gen-lsp-client\n")))
	require.NoError(t, err)

	m, err := New(Params{
		Config:    provider,
		Lifecycle: fxtest.NewLifecycle(t),
		Logger:    zap.NewNop().Sugar(),
	})
	require.NoError(t, err)

	// Updates become no-ops rather than errors.
	assert.NoError(t, m.UpdateField("pid", "1"))
}
