package cherentrace

// GenerationMode selects how much of the packed generation counter is
// meaningful. The photon table carries the full counter; the particle table
// carries only its lowest two or three decimal digits, depending on whether
// the row is an observation-level crossing (width 2) or an auxiliary muon
// lifecycle entry (width 3).
type GenerationMode int

const (
	GenerationFull GenerationMode = iota
	GenerationTruncated
)

// Place-value layout of the counter: the two lowest decimal digits tally
// electromagnetic/leptonic sub-events, everything from the hundreds digit up
// tallies hadronic interactions. A width-2 truncated counter therefore never
// carries hadronic digits and always decodes to hadronic tally 0.
const emDigits = 100

// Generation is the decoded form of a packed generation counter.
type Generation struct {
	Raw      int
	Hadronic int
	EMLepton int
}

// DecodeGeneration unpacks a raw generation counter. A raw value of 0 decodes
// to "no interactions recorded". Negative raw values are outside the domain
// of the encoding and fail with InvalidEncodingError. The width argument is
// only consulted in truncated mode and must be 2 or 3.
func DecodeGeneration(raw int, mode GenerationMode, width int) (Generation, error) {
	if raw < 0 {
		return Generation{}, &InvalidEncodingError{Field: "generation", Value: raw}
	}

	value := raw
	if mode == GenerationTruncated {
		switch width {
		case 2:
			value = raw % 100
		case 3:
			value = raw % 1000
		default:
			return Generation{}, &InvalidEncodingError{Field: "generation width", Value: width}
		}
	}

	return Generation{
		Raw:      raw,
		Hadronic: value / emDigits,
		EMLepton: value % emDigits,
	}, nil
}

// TruncateTo reduces a full counter to the particle table's width convention.
// Callers joining photon records against particle records must truncate the
// photon table's full counter with the same width used for the particle row
// before comparing raw values.
func (g Generation) TruncateTo(width int) int {
	mod := 1
	for i := 0; i < width; i++ {
		mod *= 10
	}
	return g.Raw % mod
}
