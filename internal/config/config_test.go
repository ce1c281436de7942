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
	path := filepath.Join(t.TempDir(), "pingtray.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	v, err := Load("")
	require.NoError(t, err)

	cfg, err := Decode(v)
	require.NoError(t, err)

	assert.Equal(t, "google.com", cfg.Probe.Host)
	assert.Equal(t, 1500*time.Millisecond, cfg.Probe.Interval)
	assert.Equal(t, time.Second, cfg.Probe.Timeout)
	assert.False(t, cfg.Probe.Privileged)
	assert.Equal(t, 80, cfg.Thresholds.Good)
	assert.Equal(t, 110, cfg.Thresholds.Warning)
	assert.Equal(t, 64, cfg.Icon.Size)
	assert.Equal(t, 40.0, cfg.Icon.FontSize)
	assert.Empty(t, cfg.Icon.FontPath)
	assert.Empty(t, cfg.Metrics.Listen)
}

func TestLoad_MissingFile(t *testing.T) {
	v, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, "google.com", cfg.Probe.Host)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
probe:
  host: 1.1.1.1
  interval: 3s
thresholds:
  good_ms: 30
  warning_ms: 60
metrics:
  listen: 127.0.0.1:9464
`)
	v, err := Load(path)
	require.NoError(t, err)

	cfg, err := Decode(v)
	require.NoError(t, err)

	assert.Equal(t, "1.1.1.1", cfg.Probe.Host)
	assert.Equal(t, 3*time.Second, cfg.Probe.Interval)
	assert.Equal(t, time.Second, cfg.Probe.Timeout, "unset keys keep defaults")
	assert.Equal(t, 30, cfg.Thresholds.Good)
	assert.Equal(t, 60, cfg.Thresholds.Warning)
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Listen)

	mc := cfg.Monitor()
	assert.Equal(t, "1.1.1.1", mc.Host)
	assert.Equal(t, 3*time.Second, mc.Interval)
	assert.Equal(t, cfg.Thresholds, mc.Thresholds)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "probe: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_IgnoresEnvironment(t *testing.T) {
	t.Setenv("PROBE_HOST", "example.org")
	t.Setenv("NV_PROBE_HOST", "example.org")

	v, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "google.com", v.GetString("probe.host"))
}

func TestDecode_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty host", "probe:\n  host: \"\"\n"},
		{"zero interval", "probe:\n  interval: 0s\n"},
		{"zero timeout", "probe:\n  timeout: 0s\n"},
		{"inverted thresholds", "thresholds:\n  good_ms: 120\n  warning_ms: 100\n"},
		{"tiny icon", "icon:\n  size: 8\n"},
		{"zero font size", "icon:\n  font_size: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Load(writeConfig(t, tt.body))
			require.NoError(t, err)

			_, err = Decode(v)
			assert.Error(t, err)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	p := DefaultPath()
	if p == "" {
		t.Skip("no user config dir on this host")
	}
	assert.Equal(t, "pingtray.yaml", filepath.Base(p))
	assert.Equal(t, "pingtray", filepath.Base(filepath.Dir(p)))
}
