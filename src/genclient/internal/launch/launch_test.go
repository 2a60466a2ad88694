package launch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/config"
	"go.uber.org/zap"
)

func newResolver(t *testing.T, yaml string) Resolver {
	t.Helper()
	provider, err := config.NewYAML(config.Source(strings.NewReader(yaml)))
	require.NoError(t, err)

	r, err := New(Params{
		Config: provider,
		Logger: zap.NewNop().Sugar(),
	})
	require.NoError(t, err)
	return r
}

func TestResolve(t *testing.T) {
	r := newResolver(t, "session:\n  defaultServerPath: gen-language-server\n")

	tests := []struct {
		name        string
		environ     []string
		wantCommand string
	}{
		{
			name:        "no override",
			environ:     []string{"HOME=/home/dev", "PATH=/usr/bin"},
			wantCommand: "gen-language-server",
		},
		{
			name:        "override set",
			environ:     []string{"GEN_SERVER_PATH=/opt/bin/custom-server", "HOME=/home/dev"},
			wantCommand: "/opt/bin/custom-server",
		},
		{
			name:        "empty override falls back",
			environ:     []string{"GEN_SERVER_PATH="},
			wantCommand: "gen-language-server",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			spec := r.Resolve(tt.environ)
			assert.Equal(t, tt.wantCommand, spec.Command)
		})
	}
}

func TestResolveForcesVerbosity(t *testing.T) {
	r := newResolver(t, "session:\n  defaultServerPath: gen-language-server\n")

	t.Run("appended when absent", func(t *testing.T) {
		spec := r.Resolve([]string{"HOME=/home/dev"})
		assert.Contains(t, spec.Environ, "RUST_LOG=debug")
		assert.Contains(t, spec.Environ, "HOME=/home/dev")
	})

	t.Run("caller value overridden", func(t *testing.T) {
		spec := r.Resolve([]string{"RUST_LOG=error", "HOME=/home/dev"})
		assert.Contains(t, spec.Environ, "RUST_LOG=debug")
		assert.NotContains(t, spec.Environ, "RUST_LOG=error")
	})

	t.Run("input not mutated", func(t *testing.T) {
		environ := []string{"RUST_LOG=error"}
		r.Resolve(environ)
		assert.Equal(t, []string{"RUST_LOG=error"}, environ)
	})
}

func TestResolveConfigs(t *testing.T) {
	r := newResolver(t, "session:\n  defaultServerPath: gen-language-server\n")

	environ := []string{"GEN_SERVER_PATH=/opt/bin/custom-server", "HOME=/home/dev"}
	configs := r.ResolveConfigs(environ)

	// Run and debug profiles are produced by the same code path and must be
	// structurally identical.
	assert.Equal(t, configs.Run, configs.Debug)
	assert.Equal(t, "/opt/bin/custom-server", configs.Run.Command)
}

func TestNewDefaults(t *testing.T) {
	t.Run("missing config key uses built-in default", func(t *testing.T) {
		r := newResolver(t, "session: {}\n")
		spec := r.Resolve(nil)
		assert.Equal(t, "gen-language-server", spec.Command)
	})

	t.Run("configured default", func(t *testing.T) {
		r := newResolver(t, "session:\n  defaultServerPath: /usr/local/bin/gen-ls\n")
		spec := r.Resolve(nil)
		assert.Equal(t, "/usr/local/bin/gen-ls", spec.Command)
	})
}
