package cherentrace

import (
	"encoding/json"
	"os"
)

type Configuration struct {
	MaxEvents      int     `json:"max_events"`
	Skip           int     `json:"skip"`
	Verbosity      int     `json:"verbosity"`
	FileIn         string  `json:"file_in"`
	FileOut        string  `json:"file_out"`
	OutputFormat   string  `json:"output_format"` // "hdf5" or "sqlite"
	ReadPhotons    bool    `json:"read_photons"`
	ReadParticles  bool    `json:"read_particles"`
	TelescopeFrame bool    `json:"telescope_frame"`
	Discard        bool    `json:"discard"`
	WriteData      bool    `json:"write_data"`
	NoDB           bool    `json:"no_db"`
	Host           string  `json:"host"`
	User           string  `json:"user"`
	Passwd         string  `json:"pass"`
	DBName         string  `json:"dbname"`
	NumWorkers     int     `json:"num_workers"`
	Parallel       bool    `json:"parallel"`
	Compression    int     `json:"compression_level"`
	FocalLength    float64 `json:"focal_length"`  // m, fallback when the file carries no geometry block
	PointingAlt    float64 `json:"pointing_alt"`  // deg
	PointingAz     float64 `json:"pointing_az"`   // deg
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

func LoadConfiguration(filename string) (Configuration, error) {
	var config Configuration

	// Set default values
	config.MaxEvents = 1000000000
	config.Skip = 0
	config.Verbosity = 0
	config.OutputFormat = "hdf5"
	config.ReadPhotons = true
	config.ReadParticles = true
	config.TelescopeFrame = false
	config.Discard = true
	config.WriteData = true
	config.NoDB = false
	config.Host = "localhost"
	config.User = "simreader"
	config.Passwd = "readonly"
	config.DBName = "CHERENTRACE"
	config.NumWorkers = 1
	config.Parallel = false
	config.Compression = 4

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}
