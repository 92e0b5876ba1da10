package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, fileName)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.cfg"), nil)
	require.NoError(t, err)
	assert.True(t, cfg.ChromaKeyEnabled)
	assert.Equal(t, 100, cfg.LateThresholdMS)
}

func TestLoadParsesKnownKeysAndSkipsComments(t *testing.T) {
	path := writeTemp(t, "# comment\nchroma_key = false\nlate_threshold_ms = 250\n\nstart_paused=true\n")
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.False(t, cfg.ChromaKeyEnabled)
	assert.Equal(t, 250, cfg.LateThresholdMS)
	assert.True(t, cfg.StartPaused)
}

func TestLoadWarnsOnUnknownKeyButKeepsGoing(t *testing.T) {
	path := writeTemp(t, "bogus_key = 1\nvolume_bars_height = 12\n")
	var logs bytes.Buffer
	cfg, err := Load(path, log.New(&logs))
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.VolumeBarsHeight)
	assert.Equal(t, "1", cfg.Raw["bogus_key"])
	assert.Contains(t, logs.String(), "unknown key")
}

func TestLoadWarnsOnMalformedLine(t *testing.T) {
	path := writeTemp(t, "not a key value line\nchroma_key = true\n")
	var logs bytes.Buffer
	cfg, err := Load(path, log.New(&logs))
	require.NoError(t, err)
	assert.True(t, cfg.ChromaKeyEnabled)
	assert.Contains(t, logs.String(), "invalid config line")
}
