package app

import (
	"testing"

	"github.com/genlang/gen-lsp-client/src/genclient/internal/fs/fsmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/config"
	"go.uber.org/mock/gomock"
)

func TestDecorateEnvContext(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     string
	}{
		{
			name:     "default",
			envValue: "",
			want:     EnvLocal,
		},
		{
			name:     "development",
			envValue: EnvDevelopment,
			want:     EnvDevelopment,
		},
		{
			name:     "unknown value falls back to local",
			envValue: "staging",
			want:     EnvLocal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(_envGenClientEnvironment, tt.envValue)

			result := decorateEnvContext(Context{})
			assert.Equal(t, tt.want, result.Environment)
			assert.Equal(t, tt.want, result.RuntimeEnvironment)
		})
	}
}

func TestDecorateConfigProvider(t *testing.T) {
	ctrl := gomock.NewController(t)

	t.Run("creates log directories", func(t *testing.T) {
		fsMock := fsmock.NewMockClientFS(ctrl)
		fsMock.EXPECT().MkdirAll("/tmp/gen-lsp-client/logs").Return(nil)

		p, _ := config.NewStaticProvider(map[string]interface{}{
			"logging": map[string]interface{}{
				"outputPaths": []string{"stdout", "/tmp/gen-lsp-client/logs/output.log"},
			},
		})

		result, err := decorateConfigProvider(DecorateConfigParams{
			Env: Context{Environment: EnvLocal},
			Cfg: p,
			FS:  fsMock,
		})
		require.NoError(t, err)
		assert.Equal(t, p, result)
	})

	t.Run("stdout only requires no directories", func(t *testing.T) {
		fsMock := fsmock.NewMockClientFS(ctrl)

		p, _ := config.NewStaticProvider(map[string]interface{}{
			"logging": map[string]interface{}{
				"outputPaths": []string{"stdout"},
			},
		})

		_, err := decorateConfigProvider(DecorateConfigParams{
			Env: Context{Environment: EnvLocal},
			Cfg: p,
			FS:  fsMock,
		})
		assert.NoError(t, err)
	})

	t.Run("directory creation failure", func(t *testing.T) {
		fsMock := fsmock.NewMockClientFS(ctrl)
		fsMock.EXPECT().MkdirAll(gomock.Any()).Return(assert.AnError)

		p, _ := config.NewStaticProvider(map[string]interface{}{
			"logging": map[string]interface{}{
				"outputPaths": []string{"/var/log/gen-lsp-client/output.log"},
			},
		})

		_, err := decorateConfigProvider(DecorateConfigParams{
			Env: Context{Environment: EnvLocal},
			Cfg: p,
			FS:  fsMock,
		})
		assert.Error(t, err)
	})
}
