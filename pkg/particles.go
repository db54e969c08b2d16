package cherentrace

import (
	"fmt"
	"math"
)

// ParticleRecord is one observation-level crossing or auxiliary muon
// lifecycle entry.
type ParticleRecord struct {
	X float64 // m, level offset removed for crossings
	Y float64 // m
	Z float64 // m, level altitude for crossings, NaN when unknown

	Cx float64
	Cy float64
	Cz float64 // negative, tracked particles travel downward

	Time     float64 // ns since shower start, NaN for auxiliary rows
	Momentum float64 // GeV
	Weight   float64 // thinning weight, 1.0 when thinning was off

	RawParticleID int
	ParticleID    ParticleID
	ObsLevel      int       // 1..N, highest to ground, or -1 for auxiliary rows
	Fate          FateIndex // 1..3 for fate-end rows, -1 otherwise
	RawGeneration int       // truncated counter as carried by the table
	Generation    Generation
	IsMuon        bool
}

// ParticleTable is the decoded particle record set of one event, across all
// observation levels, in the row order supplied by the source.
type ParticleTable struct {
	Event   int
	Records []ParticleRecord
}

// The particle-ID column overloads one integer: species ID x1000 plus three
// packed digits. For ordinary crossings the digits are generation x10 +
// observation level (level digit 0 standing in for level 10); for fate-end
// rows generation x10 + fate index; for birth rows the three digits are the
// truncated generation counter itself.
const (
	packedDigits   = 1000
	auxiliaryIDMin = 75
	auxiliaryIDMax = 96
	maxLevels      = 10
)

// GetParticles decodes the particle table of one event. Records come out one
// per input row, in input row order; nothing is deduplicated or reordered.
func GetParticles(source Source, event int) (*ParticleTable, error) {
	cols, err := source.ParticleColumns(event)
	if err != nil {
		return nil, err
	}
	if err := cols.validate(); err != nil {
		return nil, err
	}

	levels := make([]float64, len(cols.ObsLevels))
	for i, z := range cols.ObsLevels {
		levels[i] = CmToM(z)
	}
	xoff, yoff := levelOffsets(levels, cols.ShowerAlt, cols.ShowerAz)

	recs := make([]ParticleRecord, len(cols.X))
	for i := range cols.X {
		rec, err := decodeParticleRow(cols, i, levels, xoff, yoff)
		if err != nil {
			return nil, fmt.Errorf("particle row %d: %w", i, err)
		}
		recs[i] = rec
	}

	attachBirthLevels(recs, xoff, yoff)

	return &ParticleTable{Event: event, Records: recs}, nil
}

func decodeParticleRow(cols *ParticleColumns, i int, levels, xoff, yoff []float64) (ParticleRecord, error) {
	rec := ParticleRecord{
		X:        CmToM(cols.X[i]),
		Y:        CmToM(cols.Y[i]),
		Z:        math.NaN(),
		Cx:       cols.Cx[i],
		Cy:       cols.Cy[i],
		Time:     cols.Time[i],
		Momentum: cols.Momentum[i],
		Weight:   1.0,
		ObsLevel: ObsLevelAuxiliary,
		Fate:     FateNone,
	}
	if cols.Weight != nil {
		rec.Weight = cols.Weight[i]
	}

	cz, err := DownwardCz(rec.Cx, rec.Cy)
	if err != nil {
		return rec, err
	}
	rec.Cz = cz

	packed := cols.PackedID[i]
	if packed < 0 {
		// TODO: decode EHISTORY mother/grandmother rows, which carry
		// negative packed IDs.
		logger.Warn(fmt.Sprintf("unsupported negative packed particle ID %d", packed), "particles")
		rec.RawParticleID = packed
		rec.ParticleID = DecodeParticleID(packed)
		return rec, nil
	}

	pid := packed / packedDigits
	rest := packed % packedDigits
	rec.RawParticleID = pid
	rec.ParticleID = DecodeParticleID(pid)
	rec.IsMuon = ParticleIsMuon(rec.ParticleID)

	switch {
	case pid >= auxiliaryIDMin && pid <= auxiliaryIDMax:
		// Auxiliary muon rows store z (cm) in the time column.
		rec.Z = CmToM(cols.Time[i])
		rec.Time = math.NaN()

		if rec.ParticleID.Role == RoleFateEnd {
			rec.Fate = FateIndex(rest % 10)
			rec.RawGeneration = rest / 10
		} else {
			rec.RawGeneration = rest
		}

	default:
		// Ordinary level crossing: generation x10 + observation level.
		level := rest % 10
		if level == 0 {
			level = maxLevels
		}
		if level > len(levels) {
			return rec, &MissingFieldError{Field: "obs_levels"}
		}
		rec.ObsLevel = level
		rec.RawGeneration = rest / 10
		rec.X -= xoff[level-1]
		rec.Y -= yoff[level-1]
		rec.Z = levels[level-1]
	}

	width := 2
	if rec.ObsLevel == ObsLevelAuxiliary {
		width = 3
	}
	rec.Generation, err = DecodeGeneration(rec.RawGeneration, GenerationTruncated, width)
	if err != nil {
		return rec, err
	}
	return rec, nil
}

// attachBirthLevels resolves the observation level of survived-birth rows
// (75/76) from the matching crossing row written immediately after them, and
// removes the level offset from their position. Rows without a match are kept
// with the auxiliary sentinel; the upstream occasionally fails to write the
// pair and there are usually only a handful of these.
func attachBirthLevels(recs []ParticleRecord, xoff, yoff []float64) {
	for i := range recs {
		if recs[i].ParticleID.Role != RoleSurvivedBirth {
			continue
		}
		expected := recs[i].RawParticleID - birthOffset

		if i+1 >= len(recs) ||
			recs[i+1].RawParticleID != expected ||
			recs[i+1].ObsLevel == ObsLevelAuxiliary {
			logger.Warn(fmt.Sprintf("no matching crossing row for muon entry ID=%d at row %d",
				recs[i].RawParticleID, i), "particles")
			continue
		}

		level := recs[i+1].ObsLevel
		recs[i].ObsLevel = level
		recs[i].X -= xoff[level-1]
		recs[i].Y -= yoff[level-1]
	}
}

// levelOffsets projects each observation level's displacement along the
// shower axis, relative to the ground level, onto the x/y plane. Crossing
// positions are recorded relative to the axis intersection at their own
// level, so the offset is removed to put all levels in one frame.
func levelOffsets(levels []float64, showerAlt, showerAz float64) ([]float64, []float64) {
	xoff := make([]float64, len(levels))
	yoff := make([]float64, len(levels))
	if len(levels) == 0 {
		return xoff, yoff
	}
	ground := levels[len(levels)-1]
	tanZenith := math.Tan(math.Pi/2 - showerAlt)
	for i, z := range levels {
		xoff[i] = -(z - ground) * tanZenith * math.Cos(showerAz)
		yoff[i] = (z - ground) * tanZenith * math.Sin(showerAz)
	}
	return xoff, yoff
}
