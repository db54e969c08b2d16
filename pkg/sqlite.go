package cherentrace

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_number INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS photons (
    event_number  INTEGER NOT NULL,
    telescope     INTEGER NOT NULL,
    x             REAL,
    y             REAL,
    alt           REAL,
    az            REAL,
    cx            REAL,
    cy            REAL,
    time          REAL,
    pixel_id      INTEGER,
    wavelength    REAL,
    xem           REAL,
    yem           REAL,
    zem           REAL,
    emission_time REAL,
    energy        REAL,
    particle_id   INTEGER,
    generation    INTEGER,
    is_muon       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS particles (
    event_number INTEGER NOT NULL,
    x            REAL,
    y            REAL,
    z            REAL,
    cx           REAL,
    cy           REAL,
    cz           REAL,
    time         REAL,
    momentum     REAL,
    weight       REAL,
    particle_id  INTEGER,
    obs_level    INTEGER,
    fate_index   INTEGER,
    generation   INTEGER,
    is_muon      INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_photons_event ON photons (event_number, telescope);
CREATE INDEX IF NOT EXISTS idx_particles_event ON particles (event_number);
`

const (
	insertRunSQL = `INSERT INTO runs (run_number) VALUES (?)`

	insertPhotonSQL = `
INSERT INTO photons (event_number,
                     telescope,
                     x, y,
                     alt, az,
                     cx, cy,
                     time,
                     pixel_id,
                     wavelength,
                     xem, yem, zem,
                     emission_time,
                     energy,
                     particle_id,
                     generation,
                     is_muon)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertParticleSQL = `
INSERT INTO particles (event_number,
                       x, y, z,
                       cx, cy, cz,
                       time,
                       momentum,
                       weight,
                       particle_id,
                       obs_level,
                       fate_index,
                       generation,
                       is_muon)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// SQLiteWriter is the sqlite backend of TableWriter, for workflows that want
// the decoded tables queryable without an HDF5 toolchain.
type SQLiteWriter struct {
	db       *sql.DB
	Filename string
}

func NewSQLiteWriter(filename string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, &ErrCreateTable{TableName: "schema", Err: err}
	}
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("sqlite writer: creating file %s", filename), "writer")
	}
	return &SQLiteWriter{db: db, Filename: filename}, nil
}

func (w *SQLiteWriter) WriteRunInfo(runNumber int) error {
	_, err := w.db.Exec(insertRunSQL, runNumber)
	if err != nil {
		return fmt.Errorf("error writing run info: %w", err)
	}
	return nil
}

func (w *SQLiteWriter) WritePhotonTable(table *PhotonTable) error {
	return w.inTx(insertPhotonSQL, len(table.Records), func(stmt *sql.Stmt, i int) error {
		rec := table.Records[i]
		_, err := stmt.Exec(table.Event, table.Telescope,
			rec.X, rec.Y, rec.Alt, rec.Az, rec.Cx, rec.Cy,
			rec.Time, rec.Pixel, rec.Wavelength,
			rec.Xem, rec.Yem, rec.Zem, rec.EmissionTime, rec.Energy,
			rec.RawParticleID, rec.RawGeneration, rec.IsMuon)
		return err
	})
}

func (w *SQLiteWriter) WriteParticleTable(table *ParticleTable) error {
	return w.inTx(insertParticleSQL, len(table.Records), func(stmt *sql.Stmt, i int) error {
		rec := table.Records[i]
		_, err := stmt.Exec(table.Event,
			rec.X, rec.Y, rec.Z, rec.Cx, rec.Cy, rec.Cz,
			rec.Time, rec.Momentum, rec.Weight,
			rec.RawParticleID, rec.ObsLevel, int(rec.Fate),
			rec.RawGeneration, rec.IsMuon)
		return err
	})
}

// inTx inserts n rows through one prepared statement in one transaction.
func (w *SQLiteWriter) inTx(query string, n int, insert func(stmt *sql.Stmt, i int) error) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if err := insert(stmt, i); err != nil {
			tx.Rollback()
			return fmt.Errorf("error inserting row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (w *SQLiteWriter) Close() error {
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("closing sqlite writer %s", w.Filename), "writer")
	}
	var errs []error
	if err := w.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing database: %w", err))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
