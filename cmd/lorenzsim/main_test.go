package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lorenzsim/internal/config"
	"github.com/san-kum/lorenzsim/internal/storage"
)

// parsed returns the subcommand at path of a fresh command tree with args
// parsed into its flags.
func parsed(t *testing.T, path []string, args ...string) *cobra.Command {
	t.Helper()
	cmd, _, err := newRootCmd().Find(path)
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

const fileConfig = "system:\n  sigma: 10\n  rho: 20\n  beta: 2.6666666666666665\nduration: 5\ndt: 0.05\n"

func TestResolveConfigPrecedence(t *testing.T) {
	path := writeConfig(t, fileConfig)

	t.Run("defaults", func(t *testing.T) {
		cfg, err := resolveConfig(parsed(t, []string{"solve"}))
		require.NoError(t, err)
		assert.Equal(t, config.DefaultConfig().System, cfg.System)
		assert.Equal(t, config.DefaultDt, cfg.Dt)
	})

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := resolveConfig(parsed(t, []string{"solve"}, "--config", path))
		require.NoError(t, err)
		assert.Equal(t, 20.0, cfg.System.Rho)
		assert.Equal(t, 0.05, cfg.Dt)
		assert.Equal(t, config.DefaultFPS, cfg.Render.FPS)
	})

	t.Run("file over preset, changed flags over file", func(t *testing.T) {
		cfg, err := resolveConfig(parsed(t, []string{"solve"}, "--preset", "transient", "--config", path, "--dt", "0.02"))
		require.NoError(t, err)
		assert.Equal(t, 20.0, cfg.System.Rho, "file rho wins over the preset and the unchanged --rho default")
		assert.Equal(t, 5.0, cfg.Duration, "file duration wins over the preset")
		assert.Equal(t, 0.02, cfg.Dt, "changed --dt wins over the file")
		assert.Equal(t, []float64{10, 10, 10}, cfg.Initial)
	})

	t.Run("flags over preset", func(t *testing.T) {
		cfg, err := resolveConfig(parsed(t, []string{"render"}, "--preset", "transient", "--x0", "1,2,3", "--workers", "3", "--fps", "24"))
		require.NoError(t, err)
		assert.Equal(t, 14.0, cfg.System.Rho)
		assert.Equal(t, []float64{1, 2, 3}, cfg.Initial)
		assert.Equal(t, 3, cfg.Render.Workers)
		assert.Equal(t, 24.0, cfg.Render.FPS)
	})

	t.Run("unknown preset", func(t *testing.T) {
		_, err := resolveConfig(parsed(t, []string{"solve"}, "--preset", "butterfly"))
		assert.ErrorContains(t, err, "unknown preset")
	})

	t.Run("invalid result", func(t *testing.T) {
		_, err := resolveConfig(parsed(t, []string{"solve"}, "--dt", "50"))
		assert.ErrorContains(t, err, "invalid configuration")
	})
}

func TestAnalyzeAxisDefaults(t *testing.T) {
	tests := map[string]int{
		"spectrum":    0,
		"returnmap":   2,
		"bifurcation": 2,
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			cmd := parsed(t, []string{"analyze", name})
			assert.Equal(t, "axis", cmd.Flags().Lookup("axis").Name)
			assert.Equal(t, want, must(axisFlag(cmd)))
			assert.Equal(t, cmd.Flags().Lookup("axis").DefValue, []string{"0", "1", "2"}[want])
		})
	}
}

func TestAnalyzeAxisFlagsAreIndependent(t *testing.T) {
	root := newRootCmd()
	spectrum, _, err := root.Find([]string{"analyze", "spectrum"})
	require.NoError(t, err)
	returnMap, _, err := root.Find([]string{"analyze", "returnmap"})
	require.NoError(t, err)

	require.NoError(t, spectrum.ParseFlags([]string{"--axis", "1"}))
	require.NoError(t, returnMap.ParseFlags(nil))
	assert.Equal(t, 1, must(axisFlag(spectrum)))
	assert.Equal(t, 2, must(axisFlag(returnMap)))

	require.NoError(t, returnMap.ParseFlags([]string{"--axis", "5"}))
	_, err = axisFlag(returnMap)
	assert.ErrorContains(t, err, "axis must be")
}

func TestDumpConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	root := newRootCmd()
	root.SetArgs([]string{"dump-config", path, "--preset", "periodic", "--rho", "21"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 21.0, cfg.System.Rho)
	assert.Equal(t, config.Presets["periodic"].Dt, cfg.Dt)
}

func TestLyapunovStoredOnRun(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	root := newRootCmd()
	root.SetArgs([]string{"solve", "--time", "2", "--data", dir})
	require.NoError(t, root.ExecuteContext(ctx))

	runs, err := storage.New(dir).List()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	root = newRootCmd()
	root.SetArgs([]string{"analyze", "lyapunov", shortID(runs[0].ID), "--horizon", "1", "--data", dir})
	require.NoError(t, root.ExecuteContext(ctx))

	meta, err := storage.New(dir).Load(runs[0].ID)
	require.NoError(t, err)
	assert.Contains(t, meta.Metrics, "lyapunov")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123abcd", shortID("0123abcd-ef45-6789-abcd-ef0123456789"))
	assert.Equal(t, "run1", shortID("run1"))
	assert.Equal(t, "", shortID(""))
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
