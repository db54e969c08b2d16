package cherentrace

import "math"

// All simulation-native lengths are centimeters.
const cmPerMeter = 100.0

// Direction cosines are stored as float32 upstream, so allow a little slack
// on the unit-norm check before declaring a row corrupt.
const directionTolerance = 1e-6

const (
	degPerRad = 180.0 / math.Pi
	radPerDeg = math.Pi / 180.0
)

// CmToM converts a simulation-native length to meters.
func CmToM(v float64) float64 {
	return v / cmPerMeter
}

// MToCm converts back to the simulation-native unit.
func MToCm(v float64) float64 {
	return v * cmPerMeter
}

// TelescopeGeometry carries the caller-supplied parameters needed to project
// camera-plane photons into the telescope frame. It is passed explicitly into
// the photon query, never taken from shared configuration.
type TelescopeGeometry struct {
	FocalLength float64 `db:"FocalLength"` // m
	PointingAlt float64 `db:"PointingAlt"` // deg
	PointingAz  float64 `db:"PointingAz"`  // deg
}

// ReconstructDirection solves the unit-norm constraint for the missing z
// component of a direction cosine pair, returned as a positive magnitude.
// Rows violating the constraint beyond tolerance are rejected with
// DegenerateDirectionError rather than clamped, so callers can detect
// upstream data corruption.
func ReconstructDirection(cx, cy float64) (float64, error) {
	s := cx*cx + cy*cy
	if s > 1+directionTolerance {
		return 0, &DegenerateDirectionError{Cx: cx, Cy: cy}
	}
	if s > 1 {
		s = 1
	}
	return math.Sqrt(1 - s), nil
}

// DownwardCz is ReconstructDirection with the sign convention of the particle
// table, where tracked particles travel toward the ground.
func DownwardCz(cx, cy float64) (float64, error) {
	cz, err := ReconstructDirection(cx, cy)
	if err != nil {
		return 0, err
	}
	return -cz, nil
}

// FieldAngles converts a camera-plane position (m) into field-of-view angles
// (deg) about the optical axis using the focal length.
func FieldAngles(x, y, focalLength float64) (lon, lat float64) {
	lon = math.Atan2(x, focalLength) * degPerRad
	lat = math.Atan2(y, focalLength) * degPerRad
	return lon, lat
}

// ArrivalDirection reconstructs the absolute arrival direction of a photon
// from its unit momentum at the camera. The incoming momentum in the camera
// frame is (cx, cy, -cz) with +z along the optical axis pointing out of the
// mirror; the reconstructed source direction is its reverse. The camera frame
// is rotated into the ground frame by the telescope pointing, and the result
// is expressed in the CORSIKA angular convention: x north, y west, z up,
// azimuth anti-clockwise from north, normalized to [0, 360) deg.
func ArrivalDirection(cx, cy float64, geom TelescopeGeometry) (alt, az float64, err error) {
	cz, err := ReconstructDirection(cx, cy)
	if err != nil {
		return 0, 0, err
	}

	// Back toward the source.
	vx, vy, vz := -cx, -cy, cz

	// Tilt the optical axis down from the zenith, then rotate to the
	// pointing azimuth.
	theta := (90 - geom.PointingAlt) * radPerDeg
	phi := geom.PointingAz * radPerDeg

	x1 := vx*math.Cos(theta) + vz*math.Sin(theta)
	y1 := vy
	z1 := -vx*math.Sin(theta) + vz*math.Cos(theta)

	x2 := x1*math.Cos(phi) - y1*math.Sin(phi)
	y2 := x1*math.Sin(phi) + y1*math.Cos(phi)

	alt = math.Asin(clampUnit(z1)) * degPerRad
	az = normalizeAz(math.Atan2(y2, x2) * degPerRad)
	return alt, az, nil
}

func normalizeAz(az float64) float64 {
	az = math.Mod(az, 360)
	if az < 0 {
		az += 360
	}
	return az
}

// clampUnit guards Asin against values a tick outside [-1, 1] from rounding.
func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
