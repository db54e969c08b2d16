package cherentrace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"file_in": "/data/run123.dump",
		"file_out": "/data/run123.h5",
		"output_format": "sqlite",
		"telescope_frame": true,
		"max_events": 50,
		"skip": 2,
		"num_workers": 4,
		"parallel": true,
		"no_db": true,
		"focal_length": 16.0,
		"pointing_alt": 70.0
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfiguration(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/run123.dump", config.FileIn)
	assert.Equal(t, "sqlite", config.OutputFormat)
	assert.True(t, config.TelescopeFrame)
	assert.Equal(t, 50, config.MaxEvents)
	assert.Equal(t, 2, config.Skip)
	assert.Equal(t, 4, config.NumWorkers)
	assert.True(t, config.Parallel)
	assert.True(t, config.NoDB)
	assert.Equal(t, 16.0, config.FocalLength)

	// Fields absent from the file keep their defaults.
	assert.True(t, config.ReadPhotons)
	assert.True(t, config.ReadParticles)
	assert.True(t, config.WriteData)
	assert.Equal(t, 4, config.Compression)
	assert.Equal(t, "localhost", config.Host)
}

func TestLoadConfiguration_MissingFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.json")
	require.Error(t, err)
}

func TestLoadConfiguration_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadConfiguration(path)
	require.Error(t, err)
}
