package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/interpose/internal/adapters/config"
	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "interpose.yaml", `
resolver:
  shards: 32
selection:
  cache: false
logging:
  level: debug
telemetry:
  enabled: true
  backend: otel
snapshot:
  path: out/snapshot.json
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Resolver.Shards)
	assert.Equal(t, domain.DefaultWarmParallelism, cfg.Resolver.WarmParallelism, "unset keys keep their defaults")
	assert.False(t, cfg.Selection.Cache)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, domain.TelemetryOTel, cfg.Telemetry.Backend)
	assert.Equal(t, "out/snapshot.json", cfg.Snapshot.Path)
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "interpose.toml", `
[resolver]
shards = 8
warm_parallelism = 2

[logging]
level = "warn"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Resolver.Shards)
	assert.Equal(t, 2, cfg.Resolver.WarmParallelism)
	assert.True(t, cfg.Selection.Cache)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EmptyFileYieldsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "interpose.yml", "")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), *cfg)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{
			name:    "shards not a power of two",
			file:    "a.yaml",
			content: "resolver:\n  shards: 12\n",
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "unknown yaml key",
			file:    "b.yaml",
			content: "resolver:\n  shard: 16\n",
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "unknown toml key",
			file:    "c.toml",
			content: "[selection]\ncached = true\n",
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "malformed yaml",
			file:    "d.yaml",
			content: "resolver: [\n",
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "unknown level",
			file:    "e.toml",
			content: "[logging]\nlevel = \"loud\"\n",
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "unsupported extension",
			file:    "f.json",
			content: "{}",
			wantErr: domain.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, dir, tt.file, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.True(t, errors.Is(err, domain.ErrConfiguration))
		})
	}
}

func TestLoad_DecodeErrorIsKept(t *testing.T) {
	dir := t.TempDir()

	_, err := config.Load(writeConfig(t, dir, "unknown.yaml", "resolver:\n  shard: 16\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
	var typeErr *yaml.TypeError
	require.True(t, errors.As(err, &typeErr), "got %v", err)
	assert.Contains(t, typeErr.Error(), "shard")

	_, err = config.Load(writeConfig(t, dir, "broken.toml", "[selection\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
	var parseErr toml.ParseError
	assert.True(t, errors.As(err, &parseErr), "got %v", err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFileConfigLoader(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	loader := config.NewLoader(log)

	t.Run("empty path", func(t *testing.T) {
		cfg, err := loader.Load("")
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultConfig(), *cfg)
	})

	t.Run("directory without config", func(t *testing.T) {
		cfg, err := loader.Load(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultConfig(), *cfg)
	})

	t.Run("directory discovery prefers yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "interpose.toml", "[resolver]\nshards = 4\n")
		writeConfig(t, dir, "interpose.yaml", "resolver:\n  shards: 64\n")

		cfg, err := loader.Load(dir)
		require.NoError(t, err)
		assert.Equal(t, 64, cfg.Resolver.Shards)
	})

	t.Run("explicit file", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "custom.toml", "[telemetry]\nenabled = true\n")
		cfg, err := loader.Load(path)
		require.NoError(t, err)
		assert.True(t, cfg.Telemetry.Enabled)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := loader.Load(filepath.Join(t.TempDir(), "nope"))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	_, ok := config.Discover(dir)
	assert.False(t, ok)

	want := writeConfig(t, dir, "interpose.yml", "")
	got, ok := config.Discover(dir)
	require.True(t, ok)
	assert.Equal(t, want, got)
}
