package cherentrace

// Source yields the raw numeric columns of one event, in simulation-native
// units and encodings. Implementations wrap whatever container the upstream
// chain produced; the decoding layer only sees typed columns.
type Source interface {
	// PhotonColumns returns the photon block for one telescope of the given
	// event, or an error when the source holds a different event or no
	// photon data for that telescope.
	PhotonColumns(event, telescope int) (*PhotonColumns, error)

	// ParticleColumns returns the particle block for the given event, across
	// all observation levels.
	ParticleColumns(event int) (*ParticleColumns, error)
}

// PhotonColumns is the raw photon block of one event/telescope. Lengths are
// centimeters, positions on the camera plane, emission points relative to the
// shower core.
type PhotonColumns struct {
	X          []float64 // cm, camera plane
	Y          []float64 // cm
	Cx         []float64 // unit momentum at the camera
	Cy         []float64
	Time       []float64 // ns, relative to the reference plane
	Pixel      []int     // detector pixel, -1 when unregistered
	Wavelength []float64 // nm

	// Emitter block, present only when the upstream chain stored per-photon
	// emitter information.
	Emitter *EmitterColumns

	// Geometry is required for the telescope-frame projection and otherwise
	// unused. nil when the source has none for this telescope.
	Geometry *TelescopeGeometry
}

// EmitterColumns is the per-photon emitter block zipped against the photon
// block row by row.
type EmitterColumns struct {
	Xem          []float64 // cm, emission point relative to the shower core
	Yem          []float64 // cm
	Zem          []float64 // cm
	EmissionTime []float64 // s since shower start
	Energy       []float64 // GeV
	ParticleID   []int
	Generation   []int // full packed counter
}

// ParticleColumns is the raw particle block of one event. PackedID carries
// the overloaded particle-ID column: species ID x1000 plus the packed
// generation/level (or generation/fate) digits.
type ParticleColumns struct {
	X        []float64 // cm
	Y        []float64 // cm
	Cx       []float64
	Cy       []float64
	Time     []float64 // ns since shower start; z in cm for auxiliary muon rows
	Momentum []float64 // GeV
	PackedID []int
	Weight   []float64 // thinning weight, nil when thinning was off

	// ObsLevels are the observation-level altitudes (cm), level 1 first
	// (highest) down to the ground level.
	ObsLevels []float64

	// Shower axis direction, native radians, used to project level offsets.
	ShowerAlt float64
	ShowerAz  float64
}

func (c *PhotonColumns) validate() error {
	n := len(c.X)
	switch {
	case c.X == nil:
		return &MissingFieldError{Field: "x"}
	case c.Y == nil || len(c.Y) != n:
		return &MissingFieldError{Field: "y"}
	case c.Cx == nil || len(c.Cx) != n:
		return &MissingFieldError{Field: "cx"}
	case c.Cy == nil || len(c.Cy) != n:
		return &MissingFieldError{Field: "cy"}
	case c.Time == nil || len(c.Time) != n:
		return &MissingFieldError{Field: "time"}
	case c.Pixel == nil || len(c.Pixel) != n:
		return &MissingFieldError{Field: "pixel"}
	case c.Wavelength == nil || len(c.Wavelength) != n:
		return &MissingFieldError{Field: "wavelength"}
	}
	if e := c.Emitter; e != nil {
		switch {
		case len(e.Xem) != n:
			return &MissingFieldError{Field: "xem"}
		case len(e.Yem) != n:
			return &MissingFieldError{Field: "yem"}
		case len(e.Zem) != n:
			return &MissingFieldError{Field: "zem"}
		case len(e.EmissionTime) != n:
			return &MissingFieldError{Field: "emission_time"}
		case len(e.Energy) != n:
			return &MissingFieldError{Field: "energy"}
		case len(e.ParticleID) != n:
			return &MissingFieldError{Field: "particle_id"}
		case len(e.Generation) != n:
			return &MissingFieldError{Field: "generation"}
		}
	}
	return nil
}

func (c *ParticleColumns) validate() error {
	n := len(c.X)
	switch {
	case c.X == nil:
		return &MissingFieldError{Field: "x"}
	case c.Y == nil || len(c.Y) != n:
		return &MissingFieldError{Field: "y"}
	case c.Cx == nil || len(c.Cx) != n:
		return &MissingFieldError{Field: "cx"}
	case c.Cy == nil || len(c.Cy) != n:
		return &MissingFieldError{Field: "cy"}
	case c.Time == nil || len(c.Time) != n:
		return &MissingFieldError{Field: "time"}
	case c.Momentum == nil || len(c.Momentum) != n:
		return &MissingFieldError{Field: "momentum"}
	case c.PackedID == nil || len(c.PackedID) != n:
		return &MissingFieldError{Field: "particle_id"}
	case c.Weight != nil && len(c.Weight) != n:
		return &MissingFieldError{Field: "weight"}
	}
	return nil
}
