package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	sqlx "github.com/jmoiron/sqlx"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	cherentrace "github.com/vmharvey/cherentrace/pkg"
)

var dbConn *sqlx.DB
var configuration cherentrace.Configuration

var (
	logger         Logger
	VerbosityLevel int
	DiscardErrors  bool
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = cherentrace.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return
	}
	cherentrace.SetConfiguration(configuration)
	cherentrace.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	DiscardErrors = configuration.Discard
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration)
	}

	file, err := os.Open(configuration.FileIn)
	if err != nil {
		message := fmt.Errorf("Error opening file: %w", err)
		logger.Error(message.Error())
		return
	}
	defer file.Close()

	evtCount, runNumber := countEvents(file)
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Number of events: %d", evtCount)
		logger.Info(message, "main")
	}

	var geometries map[int]cherentrace.TelescopeGeometry
	var obsLevels []float64
	if !configuration.NoDB {
		dbConn, err = cherentrace.ConnectToDatabase(configuration.User, configuration.Passwd,
			configuration.Host, configuration.DBName)
		if err != nil {
			message := fmt.Errorf("Error connecting to database: %w", err)
			logger.Error(message.Error())
			return
		}
		defer dbConn.Close()

		geometries, err = cherentrace.GetTelescopeGeometryFromDB(dbConn, runNumber)
		if err != nil {
			logger.Error(err.Error())
			return
		}
		obsLevels, err = cherentrace.GetObservationLevelsFromDB(dbConn, runNumber)
		if err != nil {
			logger.Error(err.Error())
			return
		}
	}

	writer, err := openWriter(configuration)
	if err != nil {
		logger.Error(err.Error())
		return
	}
	defer writer.Close()

	if configuration.WriteData {
		if err := writer.WriteRunInfo(runNumber); err != nil {
			logger.Error(err.Error())
			return
		}
	}

	fileReader := NewFileReader(file)

	start := time.Now()
	if configuration.Parallel {
		processParallel(fileReader, writer, geometries, obsLevels, evtCount)
	} else {
		processSequential(fileReader, writer, geometries, obsLevels)
	}
	duration := time.Since(start)
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Total time: %d ms", duration.Milliseconds())
		logger.Info(message, "main")
	}
}

func openWriter(config cherentrace.Configuration) (cherentrace.TableWriter, error) {
	switch config.OutputFormat {
	case "sqlite":
		return cherentrace.NewSQLiteWriter(config.FileOut)
	case "hdf5", "":
		return cherentrace.NewWriter(config.FileOut), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", config.OutputFormat)
	}
}

func processSequential(fileReader *FileReader, writer cherentrace.TableWriter,
	geometries map[int]cherentrace.TelescopeGeometry, obsLevels []float64) {
	for {
		header, eventData, err := fileReader.getNextEvent()
		if err != nil {
			if err != io.EOF {
				message := fmt.Errorf("error reading event: %w", err)
				logger.Error(message.Error())
			}
			break
		}
		result := decodeEvent(eventData, header, geometries, obsLevels)
		writeResult(writer, result)
	}
}

// EventResult holds the decoded tables of one event, tagged with its read
// sequence so parallel decoding can restore file order.
type EventResult struct {
	Seq       int
	Event     int
	Photons   []*cherentrace.PhotonTable
	Particles *cherentrace.ParticleTable
	Error     bool
}

func decodeEvent(eventData []byte, header cherentrace.EventHeaderStruct,
	geometries map[int]cherentrace.TelescopeGeometry, obsLevels []float64) (result EventResult) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("decoder recovered from panic on event %d: %v", header.EventID, r)
			logger.Error(errMessage.Error())
			result = EventResult{Event: int(header.EventID), Error: true}
		}
	}()

	event, err := cherentrace.ReadEventBlocks(eventData, header)
	if err != nil {
		message := fmt.Errorf("error parsing event %d: %w", header.EventID, err)
		logger.Error(message.Error())
		return EventResult{Event: int(header.EventID), Error: true}
	}

	applyOverrides(event, geometries, obsLevels)
	result.Event = event.Event

	if configuration.ReadPhotons {
		telescopes := maps.Keys(event.Photons)
		slices.Sort(telescopes)
		for _, tel := range telescopes {
			table, err := cherentrace.GetPhotons(event, event.Event, tel,
				cherentrace.PhotonOptions{ToTelescopeFrame: configuration.TelescopeFrame})
			if err != nil {
				message := fmt.Errorf("error decoding photons for event %d telescope %d: %w",
					event.Event, tel, err)
				logger.Error(message.Error())
				result.Error = true
				return result
			}
			result.Photons = append(result.Photons, table)
		}
	}

	if configuration.ReadParticles && event.Particles != nil {
		table, err := cherentrace.GetParticles(event, event.Event)
		if err != nil {
			message := fmt.Errorf("error decoding particles for event %d: %w", event.Event, err)
			logger.Error(message.Error())
			result.Error = true
			return result
		}
		result.Particles = table
	}

	return result
}

// applyOverrides layers run-scoped calibration data from the database over
// whatever the dump file carried. In no-DB mode the config can supply a
// single geometry for all telescopes.
func applyOverrides(event *cherentrace.EventColumns,
	geometries map[int]cherentrace.TelescopeGeometry, obsLevels []float64) {
	for tel, cols := range event.Photons {
		if geom, ok := geometries[tel]; ok {
			g := geom
			cols.Geometry = &g
		} else if cols.Geometry == nil && configuration.FocalLength > 0 {
			cols.Geometry = &cherentrace.TelescopeGeometry{
				FocalLength: configuration.FocalLength,
				PointingAlt: configuration.PointingAlt,
				PointingAz:  configuration.PointingAz,
			}
		}
	}
	if len(obsLevels) > 0 && event.Particles != nil {
		event.Particles.ObsLevels = obsLevels
	}
}

func writeResult(writer cherentrace.TableWriter, result EventResult) {
	if result.Error && DiscardErrors {
		logger.Warn(fmt.Sprintf("discarding event %d", result.Event), "main")
		return
	}
	if !configuration.WriteData {
		return
	}
	for _, table := range result.Photons {
		if err := writer.WritePhotonTable(table); err != nil {
			logger.Error(err.Error())
		}
	}
	if result.Particles != nil {
		if err := writer.WriteParticleTable(result.Particles); err != nil {
			logger.Error(err.Error())
		}
	}
}

func printConfiguration(config cherentrace.Configuration) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Output format: %s", config.OutputFormat), "config")
	logger.Info(fmt.Sprintf("Read photons: %t", config.ReadPhotons), "config")
	logger.Info(fmt.Sprintf("Read particles: %t", config.ReadParticles), "config")
	logger.Info(fmt.Sprintf("Telescope frame: %t", config.TelescopeFrame), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Discard: %t", config.Discard), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Parallel: %t", config.Parallel), "config")
}
