package cherentrace

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendBlock(t *testing.T, buf *bytes.Buffer, blockType uint16, telescope int16, nRows, nCols uint32, data []float32) {
	t.Helper()
	h := blockHeaderStruct{BlockType: blockType, Telescope: telescope, NRows: nRows, NCols: nCols}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, h))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, data))
}

func TestReadEventBlocks(t *testing.T) {
	var buf bytes.Buffer

	// Two photons on telescope 1, row major.
	appendBlock(t, &buf, blockPhotons, 1, 2, photonCols, []float32{
		150, -200, 0.01, 0.02, 12.5, 104, 420,
		-30, 10, -0.02, 0.01, 13.1, -1, 355,
	})
	appendBlock(t, &buf, blockGeometry, 1, 1, geometryCols, []float32{1600, 70, 180})
	appendBlock(t, &buf, blockParticles, -1, 1, particleColsMin, []float32{
		100, 200, 0.1, 0.2, 75000, 4.2, 5122,
	})
	appendBlock(t, &buf, blockObsLevels, -1, 2, 1, []float32{200000, 0})

	header := EventHeaderStruct{
		Marker:    EventMarker,
		RunNumber: 7,
		EventID:   42,
		NBlocks:   4,
		ShowerAlt: 1.2,
		ShowerAz:  0.3,
	}

	event, err := ReadEventBlocks(buf.Bytes(), header)
	require.NoError(t, err)
	assert.Equal(t, 7, event.Run)
	assert.Equal(t, 42, event.Event)

	cols, err := event.PhotonColumns(42, 1)
	require.NoError(t, err)
	require.Len(t, cols.X, 2)
	assert.Equal(t, 150.0, cols.X[0])
	assert.Equal(t, []int{104, -1}, cols.Pixel)
	assert.Equal(t, 355.0, cols.Wavelength[1])
	require.NotNil(t, cols.Geometry)
	assert.Equal(t, 16.0, cols.Geometry.FocalLength)
	assert.Equal(t, 70.0, cols.Geometry.PointingAlt)

	particles, err := event.ParticleColumns(42)
	require.NoError(t, err)
	assert.Equal(t, []int{5122}, particles.PackedID)
	assert.Nil(t, particles.Weight)
	assert.Equal(t, []float64{200000, 0}, particles.ObsLevels)
	assert.InDelta(t, 1.2, particles.ShowerAlt, 1e-6)
}

func TestReadEventBlocks_WeightColumn(t *testing.T) {
	var buf bytes.Buffer
	appendBlock(t, &buf, blockParticles, -1, 1, particleColsMax, []float32{
		100, 200, 0.1, 0.2, 75000, 4.2, 5122, 3.5,
	})

	header := EventHeaderStruct{Marker: EventMarker, EventID: 1, NBlocks: 1}
	event, err := ReadEventBlocks(buf.Bytes(), header)
	require.NoError(t, err)

	particles, err := event.ParticleColumns(1)
	require.NoError(t, err)
	require.NotNil(t, particles.Weight)
	assert.Equal(t, 3.5, particles.Weight[0])
}

func TestReadEventBlocks_UnknownBlockSkipped(t *testing.T) {
	var buf bytes.Buffer
	appendBlock(t, &buf, 99, -1, 1, 2, []float32{1, 2})
	appendBlock(t, &buf, blockObsLevels, -1, 1, 1, []float32{0})

	header := EventHeaderStruct{Marker: EventMarker, EventID: 1, NBlocks: 2}
	event, err := ReadEventBlocks(buf.Bytes(), header)
	require.NoError(t, err)
	require.NotNil(t, event.Particles)
	assert.Equal(t, []float64{0}, event.Particles.ObsLevels)
}

func TestReadEventBlocks_BadColumnCount(t *testing.T) {
	var buf bytes.Buffer
	appendBlock(t, &buf, blockPhotons, 1, 1, 3, []float32{1, 2, 3})

	header := EventHeaderStruct{Marker: EventMarker, EventID: 1, NBlocks: 1}
	_, err := ReadEventBlocks(buf.Bytes(), header)
	require.Error(t, err)
}

func TestReadEventBlocks_Truncated(t *testing.T) {
	var buf bytes.Buffer
	appendBlock(t, &buf, blockPhotons, 1, 2, photonCols, make([]float32, 2*photonCols))

	header := EventHeaderStruct{Marker: EventMarker, EventID: 1, NBlocks: 1}
	_, err := ReadEventBlocks(buf.Bytes()[:10], header)
	require.Error(t, err)
}

func TestEventColumnsSourceErrors(t *testing.T) {
	event := &EventColumns{Event: 5, Photons: map[int]*PhotonColumns{}}

	_, err := event.PhotonColumns(5, 3)
	require.Error(t, err)

	_, err = event.ParticleColumns(5)
	require.Error(t, err)

	_, err = event.PhotonColumns(6, 1)
	var mismatch *EventMismatchError
	require.True(t, errors.As(err, &mismatch))
}

func TestValidEvent(t *testing.T) {
	assert.True(t, ValidEvent(EventHeaderStruct{Marker: EventMarker}))
	assert.False(t, ValidEvent(EventHeaderStruct{Marker: 0xDEADBEEF}))
}
