package cherentrace

// Particle IDs follow the CORSIKA numbering. Ordinary muons crossing an
// observation level are written as 5 (mu+) and 6 (mu-). The muon lifecycle
// entries produced by the MUADDI/MUPROD options reuse the same pair shifted
// into three further buckets: 75/76 for muons born that survive to ground,
// 85/86 for muons born that will not, and 95/96 for the point where a muon
// track ends.
const (
	idMuonPlus  = 5
	idMuonMinus = 6

	birthOffset = 70
	fatedOffset = 80
	fateOffset  = 90
)

type Species int

const (
	SpeciesOther Species = iota
	SpeciesMuon
)

func (s Species) String() string {
	switch s {
	case SpeciesMuon:
		return "muon"
	default:
		return "other"
	}
}

type ChargeSign int

const (
	ChargeUnknown ChargeSign = iota
	ChargePositive
	ChargeNegative
)

func (c ChargeSign) String() string {
	switch c {
	case ChargePositive:
		return "+"
	case ChargeNegative:
		return "-"
	default:
		return "?"
	}
}

// MuonRole is the lifecycle role encoded by the ID bucket a raw particle ID
// falls into.
type MuonRole int

const (
	RoleNonMuon MuonRole = iota
	RoleCrossing
	RoleSurvivedBirth
	RoleFatedBirth
	RoleFateEnd
)

func (r MuonRole) String() string {
	switch r {
	case RoleCrossing:
		return "crossing"
	case RoleSurvivedBirth:
		return "survived-birth"
	case RoleFatedBirth:
		return "fated-birth"
	case RoleFateEnd:
		return "fate-end"
	default:
		return "non-muon"
	}
}

// ParticleID is the decoded form of a raw particle ID.
type ParticleID struct {
	Raw     int
	Species Species
	Charge  ChargeSign
	Role    MuonRole
}

func (p ParticleID) IsMuon() bool {
	return p.Species == SpeciesMuon
}

// DecodeParticleID classifies a raw particle ID. Only the four muon ID pairs
// are decoded beyond muon detection; any other value (including 7 and 77,
// which sit next to muon IDs but are not muons) gets role non-muon. This is
// a total function, every integer has a defined classification.
func DecodeParticleID(raw int) ParticleID {
	id := ParticleID{Raw: raw}

	var base int
	switch raw {
	case idMuonPlus, idMuonMinus:
		id.Role = RoleCrossing
		base = raw
	case idMuonPlus + birthOffset, idMuonMinus + birthOffset:
		id.Role = RoleSurvivedBirth
		base = raw - birthOffset
	case idMuonPlus + fatedOffset, idMuonMinus + fatedOffset:
		id.Role = RoleFatedBirth
		base = raw - fatedOffset
	case idMuonPlus + fateOffset, idMuonMinus + fateOffset:
		id.Role = RoleFateEnd
		base = raw - fateOffset
	default:
		id.Role = RoleNonMuon
		return id
	}

	id.Species = SpeciesMuon
	if base == idMuonPlus {
		id.Charge = ChargePositive
	} else {
		id.Charge = ChargeNegative
	}
	return id
}
