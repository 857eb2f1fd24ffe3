package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dtengine/internal/coerce"
	"github.com/roach88/dtengine/internal/dtype"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// isolate runs the test in an empty working directory and home so no
// ambient config file is picked up.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, "text", cfg.Format)
	assert.Empty(t, cfg.DB)
	assert.Equal(t, coerce.DefaultParallelThreshold, cfg.Parallel.Threshold)
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
db: reports.db
format: json
aliases:
  int64: [bigint]
  decimal(10,2): [money]
parallel:
  workers: 3
  threshold: 100
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "reports.db", cfg.DB)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{"bigint"}, cfg.Aliases["int64"])
	assert.Equal(t, []string{"money"}, cfg.Aliases["decimal(10,2)"])
	assert.Equal(t, ParallelConfig{Workers: 3, Threshold: 100}, cfg.Parallel)
}

func TestLoad_LocalConfig(t *testing.T) {
	isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(LocalConfigPath), 0o755))
	require.NoError(t, os.WriteFile(LocalConfigPath, []byte("db: local.db\n"), 0o644))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "local.db", cfg.DB)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "db: file.db\nparallel:\n  workers: 2\n")

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("DTENGINE_DB", "env.db")
		t.Setenv("DTENGINE_PARALLEL_WORKERS", "7")

		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "env.db", cfg.DB)
		assert.Equal(t, 7, cfg.Parallel.Workers)
	})

	t.Run("changed flag over env", func(t *testing.T) {
		t.Setenv("DTENGINE_DB", "env.db")
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("db", "", "")
		flags.String("format", "text", "")
		require.NoError(t, flags.Set("db", "flag.db"))

		cfg, err := Load(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "flag.db", cfg.DB)
		assert.Equal(t, "text", cfg.Format)
	})

	t.Run("unchanged flag keeps file value", func(t *testing.T) {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("db", "", "")

		cfg, err := Load(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "file.db", cfg.DB)
	})
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"format", "format: xml\n", "invalid format"},
		{"workers", "parallel:\n  workers: -1\n", "parallel.workers"},
		{"threshold", "parallel:\n  threshold: -5\n", "parallel.threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRegistryOptions(t *testing.T) {
	packPath := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(packPath, []byte("aliases:\n  'decimal(10,2)': [money]\n"), 0o644))

	cfg := Defaults()
	cfg.Aliases = map[string][]string{"int64": {"bigint"}}
	cfg.AliasFiles = []string{packPath}

	opts, err := cfg.RegistryOptions()
	require.NoError(t, err)
	require.Len(t, opts, 2)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg, err := dtype.InitializeRegistry(append(opts, dtype.WithLogger(logger))...)
	require.NoError(t, err)

	assert.Equal(t, dtype.Int64, reg.MustResolve("bigint"))
	money, err := dtype.NewDecimal(10, 2)
	require.NoError(t, err)
	assert.Equal(t, money, reg.MustResolve("money"))
}

func TestRegistryOptions_MissingFile(t *testing.T) {
	cfg := Defaults()
	cfg.AliasFiles = []string{filepath.Join(t.TempDir(), "nope.yaml")}

	_, err := cfg.RegistryOptions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open alias file")
}
