// Package config provides the configuration loader for interpose.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Filenames are the configuration files looked up when Load is given a directory, in order.
var Filenames = []string{"interpose.yaml", "interpose.yml", "interpose.toml"}

// FileConfigLoader implements ports.ConfigLoader for YAML and TOML files.
type FileConfigLoader struct {
	logger ports.Logger
}

// NewLoader creates a new FileConfigLoader.
func NewLoader(log ports.Logger) *FileConfigLoader {
	return &FileConfigLoader{logger: log}
}

// Load reads the configuration at path. A directory is searched for one of
// Filenames; an empty path, or a directory without a config file, yields the defaults.
func (l *FileConfigLoader) Load(path string) (*domain.Config, error) {
	if path == "" {
		cfg := domain.DefaultConfig()
		return &cfg, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}
	if info.IsDir() {
		found, ok := Discover(path)
		if !ok {
			l.logger.Debug("no config file in " + path + ", using defaults")
			cfg := domain.DefaultConfig()
			return &cfg, nil
		}
		path = found
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loaded config from " + path)
	return cfg, nil
}

// Discover returns the first of Filenames present in dir.
func Discover(dir string) (string, bool) {
	for _, name := range Filenames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// Load reads a configuration file, decoding it by extension over the defaults,
// and validates the result. Unknown keys are rejected.
func Load(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}

	cfg := domain.DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	case ".toml":
		err = decodeTOML(data, &cfg)
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unsupported config format"), "extension", ext)
	}
	if err != nil {
		err = zerr.Wrap(errors.Join(domain.ErrInvalidConfig, err), "failed to parse config file")
		return nil, zerr.With(err, "path", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return &cfg, nil
}

func decodeYAML(data []byte, cfg *domain.Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeTOML(data []byte, cfg *domain.Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return zerr.With(zerr.New("unknown config key"), "key", undecoded[0].String())
	}
	return nil
}
