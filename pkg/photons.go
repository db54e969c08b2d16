package cherentrace

import "math"

// PhotonRecord is one Cherenkov photon that reached the camera plane, with
// its emitter information when available.
type PhotonRecord struct {
	// Camera-plane position: meters, or field-of-view degrees when the table
	// was assembled in the telescope frame.
	X float64
	Y float64

	// Reconstructed arrival direction (deg, CORSIKA convention). NaN unless
	// assembled in the telescope frame.
	Alt float64
	Az  float64

	Cx         float64 // unit momentum at the camera
	Cy         float64
	Time       float64 // ns, relative to the reference plane
	Pixel      int     // -1 when the photon registered on no pixel
	Wavelength float64 // nm

	// Emitter block, zero-valued when the source carried none.
	Xem           float64 // m, relative to the shower core
	Yem           float64 // m
	Zem           float64 // m
	EmissionTime  float64 // ns since shower start
	Energy        float64 // GeV
	RawParticleID int
	ParticleID    ParticleID
	RawGeneration int
	Generation    Generation
	IsMuon        bool
}

// PhotonTable is the decoded photon record set of one event/telescope, in
// the row order supplied by the source.
type PhotonTable struct {
	Event          int
	Telescope      int
	TelescopeFrame bool
	HasEmitter     bool
	Records        []PhotonRecord
}

// PhotonOptions selects the coordinate representation of the assembled table.
type PhotonOptions struct {
	// ToTelescopeFrame converts camera x/y to field-of-view degrees and adds
	// the absolute alt/az arrival direction. Requires the source to supply
	// the telescope geometry.
	ToTelescopeFrame bool
}

const nanosPerSecond = 1e9

// GetPhotons decodes the photon table of one event/telescope. Records come
// out one per surviving photon in input row order. With
// opts.ToTelescopeFrame false, x/y stay camera-plane coordinates in meters
// and no angular reconstruction occurs.
func GetPhotons(source Source, event, telescope int, opts PhotonOptions) (*PhotonTable, error) {
	cols, err := source.PhotonColumns(event, telescope)
	if err != nil {
		return nil, err
	}
	if err := cols.validate(); err != nil {
		return nil, err
	}

	var geom TelescopeGeometry
	if opts.ToTelescopeFrame {
		if cols.Geometry == nil {
			return nil, &MissingFieldError{Field: "telescope_geometry"}
		}
		if cols.Geometry.FocalLength <= 0 {
			return nil, &MissingFieldError{Field: "focal_length"}
		}
		geom = *cols.Geometry
	}

	table := &PhotonTable{
		Event:          event,
		Telescope:      telescope,
		TelescopeFrame: opts.ToTelescopeFrame,
		HasEmitter:     cols.Emitter != nil,
		Records:        make([]PhotonRecord, len(cols.X)),
	}

	for i := range cols.X {
		rec := PhotonRecord{
			X:          CmToM(cols.X[i]),
			Y:          CmToM(cols.Y[i]),
			Alt:        math.NaN(),
			Az:         math.NaN(),
			Cx:         cols.Cx[i],
			Cy:         cols.Cy[i],
			Time:       cols.Time[i],
			Pixel:      cols.Pixel[i],
			Wavelength: cols.Wavelength[i],
		}

		if opts.ToTelescopeFrame {
			alt, az, err := ArrivalDirection(rec.Cx, rec.Cy, geom)
			if err != nil {
				return nil, err
			}
			rec.Alt = alt
			rec.Az = az
			rec.X, rec.Y = FieldAngles(rec.X, rec.Y, geom.FocalLength)
		}

		if e := cols.Emitter; e != nil {
			rec.Xem = CmToM(e.Xem[i])
			rec.Yem = CmToM(e.Yem[i])
			rec.Zem = CmToM(e.Zem[i])
			rec.EmissionTime = e.EmissionTime[i] * nanosPerSecond
			rec.Energy = e.Energy[i]
			rec.RawParticleID = e.ParticleID[i]
			rec.ParticleID = DecodeParticleID(e.ParticleID[i])
			rec.RawGeneration = e.Generation[i]
			rec.Generation, err = DecodeGeneration(e.Generation[i], GenerationFull, 0)
			if err != nil {
				return nil, err
			}
			rec.IsMuon = EmitterIsMuon(rec.ParticleID)
		}

		table.Records[i] = rec
	}

	return table, nil
}
