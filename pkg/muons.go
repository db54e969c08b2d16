package cherentrace

// FateIndex enumerates why a tracked muon stopped being followed. It is a
// flat code in the particle table, not packed, and is retained verbatim.
type FateIndex int

const (
	FateNone        FateIndex = -1
	FateDecay       FateIndex = 1
	FateInteraction FateIndex = 2
	FateCut         FateIndex = 3
)

func (f FateIndex) String() string {
	switch f {
	case FateDecay:
		return "decay"
	case FateInteraction:
		return "nuclear interaction"
	case FateCut:
		return "energy/angle cut"
	default:
		return "none"
	}
}

// ObsLevelAuxiliary is the observation-level sentinel for rows that are not
// level crossings (muon birth/fate entries). It overloads -1 the same way the
// upstream tables do and is passed through, never reinterpreted.
const ObsLevelAuxiliary = -1

// EmitterIsMuon is the photon-table muon tag. The emitter record can only
// carry the crossing IDs {5, 6} for muons, so the tag is true exactly for
// decoded crossing muons.
func EmitterIsMuon(id ParticleID) bool {
	return id.Species == SpeciesMuon && id.Role == RoleCrossing
}

// ParticleIsMuon is the particle-table muon tag: true for any of the eight
// muon IDs, whatever the lifecycle role.
func ParticleIsMuon(id ParticleID) bool {
	return id.Species == SpeciesMuon
}
