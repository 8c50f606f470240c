package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name         string
		config       string
		args         []string
		expectedExit int
	}{
		{
			name:         "Demo with defaults",
			args:         []string{"demo"},
			expectedExit: 0,
		},
		{
			name: "Inspect with valid config",
			config: `resolver:
  shards: 8
logging:
  level: warn
`,
			args:         []string{"inspect"},
			expectedExit: 0,
		},
		{
			name: "Invalid config",
			config: `resolver:
  shards: 3
`,
			args:         []string{"demo"},
			expectedExit: 2,
		},
		{
			name:         "Unknown command",
			args:         []string{"explode"},
			expectedExit: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.config != "" {
				path := filepath.Join(t.TempDir(), "interpose.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.config), 0o600))
				args = append([]string{"--config", path}, args...)
			}

			exitCode := run(args)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}
