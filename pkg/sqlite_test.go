package cherentrace

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sqlite")
	writer, err := NewSQLiteWriter(path)
	require.NoError(t, err)

	require.NoError(t, writer.WriteRunInfo(123))

	photons := &PhotonTable{
		Event:     42,
		Telescope: 1,
		Records: []PhotonRecord{
			{X: 1.5, Y: -2.0, Time: 12.5, Pixel: 104, Wavelength: 420,
				RawParticleID: 5, RawGeneration: 312, IsMuon: true},
			{X: -0.3, Y: 0.1, Time: 13.1, Pixel: -1, Wavelength: 355},
		},
	}
	require.NoError(t, writer.WritePhotonTable(photons))

	particles := &ParticleTable{
		Event: 42,
		Records: []ParticleRecord{
			{X: 1.0, Y: 2.0, Z: 0, Cz: -1, Momentum: 4.2, Weight: 1.0,
				RawParticleID: 5, ObsLevel: 2, Fate: FateNone, RawGeneration: 12, IsMuon: true},
		},
	}
	require.NoError(t, writer.WriteParticleTable(particles))

	var runNumber int
	require.NoError(t, writer.db.QueryRow(`SELECT run_number FROM runs`).Scan(&runNumber))
	assert.Equal(t, 123, runNumber)

	var photonCount int
	require.NoError(t, writer.db.QueryRow(`SELECT COUNT(*) FROM photons WHERE event_number = 42`).Scan(&photonCount))
	assert.Equal(t, 2, photonCount)

	var pixel int
	var isMuon bool
	require.NoError(t, writer.db.QueryRow(
		`SELECT pixel_id, is_muon FROM photons WHERE particle_id = 5`).Scan(&pixel, &isMuon))
	assert.Equal(t, 104, pixel)
	assert.True(t, isMuon)

	var obsLevel, fate int
	require.NoError(t, writer.db.QueryRow(
		`SELECT obs_level, fate_index FROM particles WHERE event_number = 42`).Scan(&obsLevel, &fate))
	assert.Equal(t, 2, obsLevel)
	assert.Equal(t, int(FateNone), fate)

	require.NoError(t, writer.Close())
}

func TestSQLiteWriter_BadPath(t *testing.T) {
	_, err := NewSQLiteWriter("/nonexistent/dir/out.sqlite")
	require.Error(t, err)
}
