package cherentrace

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx"
)

// Telescope optics are calibration data keyed by run range, like the rest of
// the instrument description, so they live in the calibration database rather
// than in the dump files.

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type telescopeGeometryEntry struct {
	TelescopeID int     `db:"TelescopeID"`
	FocalLength float64 `db:"FocalLength"` // cm, stored in simulation-native units
	PointingAlt float64 `db:"PointingAlt"` // deg
	PointingAz  float64 `db:"PointingAz"`  // deg
}

// GetTelescopeGeometryFromDB loads the per-telescope optics valid for a run.
// Focal lengths come back converted to meters.
func GetTelescopeGeometryFromDB(db *sqlx.DB, runNumber int) (map[int]TelescopeGeometry, error) {
	query := "SELECT TelescopeID, FocalLength, PointingAlt, PointingAz FROM TelescopeGeometry WHERE MinRun <= %d and MaxRun >= %d ORDER BY TelescopeID"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		logger.Info("Telescope geometry read from DB", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}

	geometries := make(map[int]TelescopeGeometry)
	for rows.Next() {
		result := telescopeGeometryEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		geometries[result.TelescopeID] = TelescopeGeometry{
			FocalLength: CmToM(result.FocalLength),
			PointingAlt: result.PointingAlt,
			PointingAz:  result.PointingAz,
		}
	}
	return geometries, nil
}

type obsLevelEntry struct {
	Level    int     `db:"Level"`
	Altitude float64 `db:"Altitude"` // cm
}

// GetObservationLevelsFromDB loads the observation-level altitudes (cm,
// level 1 first) configured for a run. Dump files may carry the same data in
// an obs-level block; the database wins when both are available.
func GetObservationLevelsFromDB(db *sqlx.DB, runNumber int) ([]float64, error) {
	query := "SELECT Level, Altitude FROM ObservationLevels WHERE MinRun <= %d and MaxRun >= %d ORDER BY Level"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}

	var levels []float64
	for rows.Next() {
		result := obsLevelEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		levels = append(levels, result.Altitude)
	}
	return levels, nil
}
