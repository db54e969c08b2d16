package cherentrace

import (
	"errors"
	"fmt"

	hdf5 "github.com/next-exp/hdf5-go"
)

// TableWriter is the sink side of the pipeline. Both output backends (HDF5
// and sqlite) implement it.
type TableWriter interface {
	WriteRunInfo(runNumber int) error
	WritePhotonTable(table *PhotonTable) error
	WriteParticleTable(table *ParticleTable) error
	Close() error
}

// Writer streams decoded tables into an HDF5 file: a run-info table plus one
// growing photons table and one growing particles table.
type Writer struct {
	File            *hdf5.File
	Filename        string
	RunGroup        *hdf5.Group
	PhotonGroup     *hdf5.Group
	ParticleGroup   *hdf5.Group
	RunInfoTable    *hdf5.Dataset
	PhotonTable     *hdf5.Dataset
	ParticleTable   *hdf5.Dataset
	RunCounter      int
	PhotonCounter   int
	ParticleCounter int
}

func NewWriter(filename string) *Writer {
	writer := &Writer{}
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("hdf5 writer: creating file %s", filename), "writer")
	}
	writer.File = openFile(filename)
	writer.Filename = filename
	writer.RunGroup = createGroup(writer.File, "Run")
	writer.PhotonGroup = createGroup(writer.File, "Photons")
	writer.ParticleGroup = createGroup(writer.File, "Particles")
	writer.RunInfoTable = createTable(writer.RunGroup, "runInfo", runInfoHDF5{})
	writer.PhotonTable = createTable(writer.PhotonGroup, "photons", photonHDF5{})
	writer.ParticleTable = createTable(writer.ParticleGroup, "particles", particleHDF5{})
	return writer
}

func (w *Writer) WriteRunInfo(runNumber int) error {
	writeEntryToTable(w.RunInfoTable, runInfoHDF5{run_number: int32(runNumber)}, w.RunCounter)
	w.RunCounter++
	return nil
}

func (w *Writer) WritePhotonTable(table *PhotonTable) error {
	rows := make([]photonHDF5, len(table.Records))
	for i, rec := range table.Records {
		rows[i] = photonHDF5{
			event_number:  int32(table.Event),
			telescope:     int32(table.Telescope),
			x:             float32(rec.X),
			y:             float32(rec.Y),
			alt:           float32(rec.Alt),
			az:            float32(rec.Az),
			cx:            float32(rec.Cx),
			cy:            float32(rec.Cy),
			time:          float32(rec.Time),
			pixel_id:      int32(rec.Pixel),
			wavelength:    float32(rec.Wavelength),
			xem:           float32(rec.Xem),
			yem:           float32(rec.Yem),
			zem:           float32(rec.Zem),
			emission_time: float32(rec.EmissionTime),
			energy:        float32(rec.Energy),
			particle_id:   int32(rec.RawParticleID),
			generation:    int32(rec.RawGeneration),
			is_muon:       boolToInt8(rec.IsMuon),
		}
	}
	writeArrayToTable(w.PhotonTable, &rows, w.PhotonCounter)
	w.PhotonCounter += len(rows)
	return nil
}

func (w *Writer) WriteParticleTable(table *ParticleTable) error {
	rows := make([]particleHDF5, len(table.Records))
	for i, rec := range table.Records {
		rows[i] = particleHDF5{
			event_number: int32(table.Event),
			x:            float32(rec.X),
			y:            float32(rec.Y),
			z:            float32(rec.Z),
			cx:           float32(rec.Cx),
			cy:           float32(rec.Cy),
			cz:           float32(rec.Cz),
			time:         float32(rec.Time),
			momentum:     float32(rec.Momentum),
			weight:       float32(rec.Weight),
			particle_id:  int32(rec.RawParticleID),
			obs_level:    int32(rec.ObsLevel),
			fate_index:   int32(rec.Fate),
			generation:   int32(rec.RawGeneration),
			is_muon:      boolToInt8(rec.IsMuon),
		}
	}
	writeArrayToTable(w.ParticleTable, &rows, w.ParticleCounter)
	w.ParticleCounter += len(rows)
	return nil
}

func boolToInt8(b bool) int8 {
	if b {
		return 1
	}
	return 0
}

func (w *Writer) Close() error {
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("closing hdf5 writer %s", w.Filename), "writer")
	}
	var errs []error

	if err := w.RunInfoTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run info table: %w", err))
	}
	if err := w.PhotonTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing photon table: %w", err))
	}
	if err := w.ParticleTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing particle table: %w", err))
	}
	if err := w.RunGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run group: %w", err))
	}
	if err := w.PhotonGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing photon group: %w", err))
	}
	if err := w.ParticleGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing particle group: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
