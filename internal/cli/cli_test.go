package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("positional path", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse([]string{"graphs/demo.hcl"}, &out)
		require.NoError(t, err)
		assert.False(t, exit)
		require.NotNil(t, cfg)
		assert.Equal(t, "graphs/demo.hcl", cfg.GraphPath)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("flags", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse([]string{
			"-graph", "g.hcl",
			"-types-path", "types",
			"-snapshot", "out.json",
			"-relaxed-fan-in",
			"-log-format", "text",
			"-log-level", "debug",
		}, &out)
		require.NoError(t, err)
		assert.False(t, exit)
		assert.Equal(t, "g.hcl", cfg.GraphPath)
		assert.Equal(t, "types", cfg.TypesPath)
		assert.Equal(t, "out.json", cfg.SnapshotPath)
		assert.True(t, cfg.RelaxedFanIn)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("shorthand wins over positional", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"-g", "short.hcl", "ignored.hcl"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "short.hcl", cfg.GraphPath)
	})

	t.Run("no path prints usage and exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse(nil, &out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("invalid log format", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-log-format", "xml", "g.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("invalid log level", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-log-level", "loud", "g.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("unknown flag", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-definitely-not-a-flag"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})
}
