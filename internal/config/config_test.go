package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cell.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[serve]
addr = ":9000"
debounce = "250ms"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.LogLevel = "debug"
	want.Serve.Addr = ":9000"
	want.Serve.Debounce = 250 * time.Millisecond
	assert.Equal(t, want, cfg)
}

func TestLoadFalseOverridesDefault(t *testing.T) {
	path := writeConfig(t, `
pretty = true
[serve]
hot_reload = false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Pretty)
	assert.False(t, cfg.Serve.HotReload)
	assert.Equal(t, Default().Serve.Addr, cfg.Serve.Addr)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		invalid bool
	}{
		{"unknown key", `colour = "red"`, true},
		{"bad level", `log_level = "loud"`, true},
		{"bad debounce", "[serve]\ndebounce = \"soon\"", true},
		{"empty addr", "[serve]\naddr = \" \"", true},
		{"syntax", `log_level = `, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	cfg := Default()
	cfg.Serve.Debounce = -time.Second
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}
