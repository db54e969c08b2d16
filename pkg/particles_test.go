package cherentrace

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// particleEvent wraps raw particle columns in a one-event source with a
// vertical shower, so level offsets vanish unless a test tilts the axis.
func particleEvent(cols *ParticleColumns) *EventColumns {
	if cols.ObsLevels == nil {
		cols.ObsLevels = []float64{200000, 0} // cm
	}
	if cols.ShowerAlt == 0 {
		cols.ShowerAlt = math.Pi / 2
	}
	return &EventColumns{Event: 42, Particles: cols}
}

// particleRow builds single-row columns for one packed ID.
func particleRows(packed ...int) *ParticleColumns {
	n := len(packed)
	cols := &ParticleColumns{
		X:        make([]float64, n),
		Y:        make([]float64, n),
		Cx:       make([]float64, n),
		Cy:       make([]float64, n),
		Time:     make([]float64, n),
		Momentum: make([]float64, n),
		PackedID: packed,
	}
	for i := range cols.Momentum {
		cols.Momentum[i] = 1.0
	}
	return cols
}

func TestGetParticles_CrossingRow(t *testing.T) {
	// mu+ (5), generation 12, level 2: 5000 + 12*10 + 2.
	cols := particleRows(5122)
	cols.X[0] = 150
	cols.Y[0] = -300
	cols.Cx[0] = 0.1
	cols.Cy[0] = 0.2
	cols.Time[0] = 7.5e4
	cols.Momentum[0] = 4.2
	source := particleEvent(cols)

	table, err := GetParticles(source, 42)
	require.NoError(t, err)
	require.Len(t, table.Records, 1)

	rec := table.Records[0]
	assert.Equal(t, 5, rec.RawParticleID)
	assert.True(t, rec.IsMuon)
	assert.Equal(t, RoleCrossing, rec.ParticleID.Role)
	assert.Equal(t, 2, rec.ObsLevel)
	assert.Equal(t, FateNone, rec.Fate)
	assert.Equal(t, 12, rec.RawGeneration)
	assert.Equal(t, 0, rec.Generation.Hadronic)
	assert.Equal(t, 12, rec.Generation.EMLepton)

	assert.Equal(t, 1.5, rec.X)
	assert.Equal(t, -3.0, rec.Y)
	assert.Equal(t, 0.0, rec.Z) // level 2 is the ground level
	assert.Equal(t, 7.5e4, rec.Time)
	assert.Equal(t, 4.2, rec.Momentum)
	assert.Equal(t, 1.0, rec.Weight)
	assert.Less(t, rec.Cz, 0.0)
	assert.InDelta(t, 1.0, rec.Cx*rec.Cx+rec.Cy*rec.Cy+rec.Cz*rec.Cz, 1e-12)
}

func TestGetParticles_LevelDigitZeroIsLevelTen(t *testing.T) {
	cols := particleRows(1050) // gamma, generation 5, level digit 0
	cols.ObsLevels = make([]float64, 10)
	for i := range cols.ObsLevels {
		cols.ObsLevels[i] = float64((10 - i) * 100000)
	}
	source := particleEvent(cols)

	table, err := GetParticles(source, 42)
	require.NoError(t, err)
	assert.Equal(t, 10, table.Records[0].ObsLevel)
	assert.Equal(t, 1000.0, table.Records[0].Z)
}

func TestGetParticles_LevelBeyondTable(t *testing.T) {
	cols := particleRows(1053) // level 3, but only 2 levels defined
	source := particleEvent(cols)

	_, err := GetParticles(source, 42)
	require.Error(t, err)
	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "obs_levels", missing.Field)
}

func TestGetParticles_LevelOffsets(t *testing.T) {
	// 45 deg shower from the north: level 1 sits 2000 m above ground, so its
	// axis intersection is displaced by 2000 m.
	cols := particleRows(1051) // crossing at level 1
	cols.ShowerAlt = math.Pi / 4
	cols.ShowerAz = 0
	source := particleEvent(cols)

	table, err := GetParticles(source, 42)
	require.NoError(t, err)
	rec := table.Records[0]
	assert.InDelta(t, 2000.0, rec.X, 1e-9)
	assert.InDelta(t, 0.0, rec.Y, 1e-9)
	assert.Equal(t, 2000.0, rec.Z)
}

func TestGetParticles_FateEndRow(t *testing.T) {
	// mu+ track end (95): generation 12, fate 3 (cut): 95000 + 12*10 + 3.
	cols := particleRows(95123)
	cols.Time[0] = 650000 // z in cm for auxiliary rows
	source := particleEvent(cols)

	table, err := GetParticles(source, 42)
	require.NoError(t, err)
	rec := table.Records[0]
	assert.Equal(t, 95, rec.RawParticleID)
	assert.Equal(t, RoleFateEnd, rec.ParticleID.Role)
	assert.Equal(t, FateCut, rec.Fate)
	assert.Equal(t, 12, rec.RawGeneration)
	assert.Equal(t, ObsLevelAuxiliary, rec.ObsLevel)
	assert.Equal(t, 6500.0, rec.Z)
	assert.True(t, math.IsNaN(rec.Time))
	assert.True(t, rec.IsMuon)
}

func TestGetParticles_BirthRowGeneration(t *testing.T) {
	// Survived-birth rows carry three generation digits, so the hadronic
	// tally survives truncation.
	cols := particleRows(75312)
	cols.Time[0] = 800000
	source := particleEvent(cols)

	table, err := GetParticles(source, 42)
	require.NoError(t, err)
	rec := table.Records[0]
	assert.Equal(t, RoleSurvivedBirth, rec.ParticleID.Role)
	assert.Equal(t, 312, rec.RawGeneration)
	assert.Equal(t, 3, rec.Generation.Hadronic)
	assert.Equal(t, 12, rec.Generation.EMLepton)
	assert.Equal(t, 8000.0, rec.Z)
	assert.Equal(t, FateNone, rec.Fate)
}

func TestGetParticles_BirthPairing(t *testing.T) {
	// A 75 row followed by its 5 crossing inherits the crossing's level.
	cols := particleRows(75312, 5122)
	cols.Time[0] = 800000
	source := particleEvent(cols)

	table, err := GetParticles(source, 42)
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	assert.Equal(t, 2, table.Records[0].ObsLevel)
	assert.Equal(t, 2, table.Records[1].ObsLevel)
	// The birth row keeps its own z and three-digit generation.
	assert.Equal(t, 8000.0, table.Records[0].Z)
	assert.Equal(t, 3, table.Records[0].Generation.Hadronic)
}

func TestGetParticles_BirthPairingChargeMismatch(t *testing.T) {
	// A mu- crossing does not resolve a mu+ birth row.
	cols := particleRows(75312, 6122)
	source := particleEvent(cols)

	table, err := GetParticles(source, 42)
	require.NoError(t, err)
	assert.Equal(t, ObsLevelAuxiliary, table.Records[0].ObsLevel)
	assert.Equal(t, 2, table.Records[1].ObsLevel)
}

func TestGetParticles_UnmatchedBirthKept(t *testing.T) {
	cols := particleRows(75312)
	source := particleEvent(cols)

	table, err := GetParticles(source, 42)
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, ObsLevelAuxiliary, table.Records[0].ObsLevel)
}

func TestGetParticles_DuplicateRowsKept(t *testing.T) {
	// Nothing is deduplicated, identical rows come out twice.
	cols := particleRows(5122, 5122)
	source := particleEvent(cols)

	table, err := GetParticles(source, 42)
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	assert.Equal(t, table.Records[0], table.Records[1])
}

func TestGetParticles_ThinningWeight(t *testing.T) {
	cols := particleRows(5122, 5122)
	cols.Weight = []float64{3.5, 1.0}
	source := particleEvent(cols)

	table, err := GetParticles(source, 42)
	require.NoError(t, err)
	assert.Equal(t, 3.5, table.Records[0].Weight)
	assert.Equal(t, 1.0, table.Records[1].Weight)
}

func TestGetParticles_DegenerateDirection(t *testing.T) {
	cols := particleRows(5122)
	cols.Cx[0] = 0.9
	cols.Cy[0] = 0.9
	source := particleEvent(cols)

	_, err := GetParticles(source, 42)
	require.Error(t, err)
	var dirErr *DegenerateDirectionError
	assert.True(t, errors.As(err, &dirErr))
}

func TestGetParticles_NegativePackedIDPassedThrough(t *testing.T) {
	cols := particleRows(-5122)
	source := particleEvent(cols)

	table, err := GetParticles(source, 42)
	require.NoError(t, err)
	rec := table.Records[0]
	assert.Equal(t, -5122, rec.RawParticleID)
	assert.False(t, rec.IsMuon)
	assert.Equal(t, ObsLevelAuxiliary, rec.ObsLevel)
}

func TestGetParticles_ColumnLengthMismatch(t *testing.T) {
	cols := particleRows(5122, 5122)
	cols.Momentum = cols.Momentum[:1]
	source := particleEvent(cols)

	_, err := GetParticles(source, 42)
	require.Error(t, err)
	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "momentum", missing.Field)
}

func TestGetParticles_EventMismatch(t *testing.T) {
	source := particleEvent(particleRows(5122))

	_, err := GetParticles(source, 9)
	require.Error(t, err)
	var mismatch *EventMismatchError
	assert.True(t, errors.As(err, &mismatch))
}
