package cherentrace

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unsafe"
)

// Dump files carry one little-endian EventHeaderStruct per event followed by
// EventSize-header bytes of column blocks.
type EventHeaderStruct struct {
	Marker    uint32
	EventSize uint32 // header + payload, bytes
	RunNumber int32
	EventID   int32
	NBlocks   int32
	ShowerAlt float32 // rad
	ShowerAz  float32 // rad
}

const EventMarker uint32 = 0xC4E47E1A

// Block types inside an event payload.
const (
	blockPhotons   uint16 = 1
	blockEmitter   uint16 = 2
	blockParticles uint16 = 3
	blockObsLevels uint16 = 4
	blockGeometry  uint16 = 5
)

type blockHeaderStruct struct {
	BlockType uint16
	Telescope int16 // -1 for array-wide blocks
	NRows     uint32
	NCols     uint32
}

// Expected column counts per block type, in on-disk order.
const (
	photonCols      = 7 // x, y, cx, cy, time, pixel, wavelength
	emitterCols     = 7 // xem, yem, zem, emission_time, energy, particle_id, generation
	particleColsMin = 7 // x, y, cx, cy, time, momentum, packed_id[, weight]
	particleColsMax = 8
	geometryCols    = 3 // focal_length (cm), pointing alt (deg), pointing az (deg)
)

// EventColumns is one fully parsed event. It implements Source, guarding
// queries against event mismatch the way the upstream loop does.
type EventColumns struct {
	Run       int
	Event     int
	Photons   map[int]*PhotonColumns
	Particles *ParticleColumns
}

func (e *EventColumns) PhotonColumns(event, telescope int) (*PhotonColumns, error) {
	if event != e.Event {
		return nil, &EventMismatchError{Requested: event, Current: e.Event}
	}
	cols, ok := e.Photons[telescope]
	if !ok {
		return nil, fmt.Errorf("no photon data for telescope %d in event %d", telescope, event)
	}
	return cols, nil
}

func (e *EventColumns) ParticleColumns(event int) (*ParticleColumns, error) {
	if event != e.Event {
		return nil, &EventMismatchError{Requested: event, Current: e.Event}
	}
	if e.Particles == nil {
		return nil, fmt.Errorf("no particle data in event %d", event)
	}
	return e.Particles, nil
}

// ValidEvent reports whether a header opens an event this decoder handles.
func ValidEvent(header EventHeaderStruct) bool {
	return header.Marker == EventMarker
}

// ReadEventFromFile reads the next event header and payload from a dump file.
func ReadEventFromFile(file *os.File) (EventHeaderStruct, []byte, error) {
	var header EventHeaderStruct
	headerSize := unsafe.Sizeof(header)
	headerBinary := make([]byte, headerSize)
	nRead, err := io.ReadFull(file, headerBinary)
	if err != nil {
		return header, nil, err
	}
	if nRead == 0 {
		return header, nil, io.EOF
	}

	headerReader := bytes.NewReader(headerBinary)
	if err := binary.Read(headerReader, binary.LittleEndian, &header); err != nil {
		return header, nil, err
	}

	payloadSize := header.EventSize - uint32(headerSize)
	eventData := make([]byte, payloadSize)
	if _, err := io.ReadFull(file, eventData); err != nil {
		return header, nil, err
	}
	return header, eventData, nil
}

// ReadEventBlocks parses an event payload into typed columns.
func ReadEventBlocks(eventData []byte, header EventHeaderStruct) (*EventColumns, error) {
	event := &EventColumns{
		Run:     int(header.RunNumber),
		Event:   int(header.EventID),
		Photons: make(map[int]*PhotonColumns),
	}

	reader := bytes.NewReader(eventData)
	for b := int32(0); b < header.NBlocks; b++ {
		var blockHeader blockHeaderStruct
		if err := binary.Read(reader, binary.LittleEndian, &blockHeader); err != nil {
			return nil, fmt.Errorf("error reading block %d header: %w", b, err)
		}

		data := make([]float32, blockHeader.NRows*blockHeader.NCols)
		if err := binary.Read(reader, binary.LittleEndian, &data); err != nil {
			return nil, fmt.Errorf("error reading block %d payload: %w", b, err)
		}

		var err error
		switch blockHeader.BlockType {
		case blockPhotons:
			err = event.readPhotonBlock(blockHeader, data)
		case blockEmitter:
			err = event.readEmitterBlock(blockHeader, data)
		case blockParticles:
			err = event.readParticleBlock(blockHeader, data, header)
		case blockObsLevels:
			err = event.readObsLevelBlock(blockHeader, data)
		case blockGeometry:
			err = event.readGeometryBlock(blockHeader, data)
		default:
			// Unknown blocks are skipped, the format grows over time.
			if configuration.Verbosity > 1 {
				logger.Info(fmt.Sprintf("skipping unknown block type %d", blockHeader.BlockType), "blocks")
			}
		}
		if err != nil {
			return nil, err
		}
	}

	return event, nil
}

// column extracts column c of a row-major block.
func column(data []float32, nCols uint32, c int) []float64 {
	out := make([]float64, 0, len(data)/int(nCols))
	for i := c; i < len(data); i += int(nCols) {
		out = append(out, float64(data[i]))
	}
	return out
}

func intColumn(data []float32, nCols uint32, c int) []int {
	out := make([]int, 0, len(data)/int(nCols))
	for i := c; i < len(data); i += int(nCols) {
		out = append(out, int(data[i]))
	}
	return out
}

func (e *EventColumns) photonsFor(telescope int) *PhotonColumns {
	cols, ok := e.Photons[telescope]
	if !ok {
		cols = &PhotonColumns{}
		e.Photons[telescope] = cols
	}
	return cols
}

func (e *EventColumns) readPhotonBlock(h blockHeaderStruct, data []float32) error {
	if h.NCols != photonCols {
		return fmt.Errorf("photon block: expected %d columns, got %d", photonCols, h.NCols)
	}
	cols := e.photonsFor(int(h.Telescope))
	cols.X = column(data, h.NCols, 0)
	cols.Y = column(data, h.NCols, 1)
	cols.Cx = column(data, h.NCols, 2)
	cols.Cy = column(data, h.NCols, 3)
	cols.Time = column(data, h.NCols, 4)
	cols.Pixel = intColumn(data, h.NCols, 5)
	cols.Wavelength = column(data, h.NCols, 6)
	return nil
}

func (e *EventColumns) readEmitterBlock(h blockHeaderStruct, data []float32) error {
	if h.NCols != emitterCols {
		return fmt.Errorf("emitter block: expected %d columns, got %d", emitterCols, h.NCols)
	}
	cols := e.photonsFor(int(h.Telescope))
	cols.Emitter = &EmitterColumns{
		Xem:          column(data, h.NCols, 0),
		Yem:          column(data, h.NCols, 1),
		Zem:          column(data, h.NCols, 2),
		EmissionTime: column(data, h.NCols, 3),
		Energy:       column(data, h.NCols, 4),
		ParticleID:   intColumn(data, h.NCols, 5),
		Generation:   intColumn(data, h.NCols, 6),
	}
	return nil
}

func (e *EventColumns) readParticleBlock(h blockHeaderStruct, data []float32, header EventHeaderStruct) error {
	if h.NCols < particleColsMin || h.NCols > particleColsMax {
		return fmt.Errorf("particle block: expected %d or %d columns, got %d",
			particleColsMin, particleColsMax, h.NCols)
	}
	if e.Particles == nil {
		e.Particles = &ParticleColumns{}
	}
	p := e.Particles
	p.X = column(data, h.NCols, 0)
	p.Y = column(data, h.NCols, 1)
	p.Cx = column(data, h.NCols, 2)
	p.Cy = column(data, h.NCols, 3)
	p.Time = column(data, h.NCols, 4)
	p.Momentum = column(data, h.NCols, 5)
	p.PackedID = intColumn(data, h.NCols, 6)
	if h.NCols == particleColsMax {
		p.Weight = column(data, h.NCols, 7)
	}
	p.ShowerAlt = float64(header.ShowerAlt)
	p.ShowerAz = float64(header.ShowerAz)
	return nil
}

func (e *EventColumns) readObsLevelBlock(h blockHeaderStruct, data []float32) error {
	if h.NCols != 1 {
		return fmt.Errorf("obs-level block: expected 1 column, got %d", h.NCols)
	}
	if e.Particles == nil {
		e.Particles = &ParticleColumns{}
	}
	// Level 1 (highest) first, ground last.
	e.Particles.ObsLevels = column(data, h.NCols, 0)
	return nil
}

func (e *EventColumns) readGeometryBlock(h blockHeaderStruct, data []float32) error {
	if h.NCols != geometryCols || h.NRows != 1 {
		return fmt.Errorf("geometry block: expected 1x%d, got %dx%d", geometryCols, h.NRows, h.NCols)
	}
	cols := e.photonsFor(int(h.Telescope))
	cols.Geometry = &TelescopeGeometry{
		FocalLength: CmToM(float64(data[0])),
		PointingAlt: float64(data[1]),
		PointingAz:  float64(data[2]),
	}
	return nil
}
