package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "envi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, filepath.Join("envi", "identity.json"), cfg.IdentityFile())
}

func TestLoadFileOverDefaults(t *testing.T) {
	path := writeFile(t, `
workdir: /tmp/run
energyplus_version: "22.2.0"
tolerances:
  merge: 0.001
log:
  level: debug
  format: json
metrics:
  textfile: /var/lib/node_exporter/envi.prom
identity:
  file: ids.json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/run", cfg.Workdir)
	assert.Equal(t, "22.2.0", cfg.EPVersion)
	assert.Equal(t, 0.001, cfg.Tolerances.Merge)
	assert.Equal(t, 0.005, cfg.Tolerances.Degenerate, "untouched default kept")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/lib/node_exporter/envi.prom", cfg.Metrics.Textfile)
	assert.Equal(t, "ids.json", cfg.IdentityFile())

	opts := cfg.Export()
	assert.Equal(t, "/tmp/run", opts.Workdir)
	assert.Equal(t, 0.001, opts.Canon.Merge)
	assert.Equal(t, 0.01, opts.Boundary)
	assert.Equal(t, "ids.json", opts.IdentityFile)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvWorkdir, "/srv/envi")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvExpandObjects, "/opt/ep/ExpandObjects")
	t.Setenv(EnvEPVersion, "9.5.0")

	cfg, err := Load(writeFile(t, "workdir: ignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/envi", cfg.Workdir)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/opt/ep/ExpandObjects", cfg.ExpandObjects)
	assert.Equal(t, "9.5.0", cfg.EPVersion)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "tolerances: [1, 2]\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "workdir: \"\"\ntolerances:\n  merge: 0\n  boundary: -1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workdir is empty")
	assert.Contains(t, err.Error(), "tolerances.merge")
	assert.Contains(t, err.Error(), "tolerances.boundary")
}
