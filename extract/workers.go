package main

import (
	"fmt"
	"io"

	cherentrace "github.com/vmharvey/cherentrace/pkg"
)

type WorkerData struct {
	Seq       int
	Data      []byte
	Header    cherentrace.EventHeaderStruct
	Geometry  map[int]cherentrace.TelescopeGeometry
	ObsLevels []float64
}

func worker(id int, jobs <-chan WorkerData, results chan<- EventResult) {
	defer func() {
		if r := recover(); r != nil {
			message := fmt.Sprintf("Worker %d recovered from panic: %v", id, r)
			logger.Error(message)
			results <- EventResult{Error: true}
		}
	}()

	for job := range jobs {
		if VerbosityLevel > 1 {
			message := fmt.Sprintf("Worker %d processing event %d", id, job.Header.EventID)
			logger.Info(message, "worker")
		}
		result := decodeEvent(job.Data, job.Header, job.Geometry, job.ObsLevels)
		result.Seq = job.Seq
		results <- result
	}
}

func sendEventsToWorkers(fileReader *FileReader, jobs chan<- WorkerData,
	geometries map[int]cherentrace.TelescopeGeometry, obsLevels []float64) {
	seq := 0
	for {
		header, eventData, err := fileReader.getNextEvent()
		if err != nil {
			if err != io.EOF {
				message := fmt.Errorf("error reading event: %w", err)
				logger.Error(message.Error())
			}
			break
		}
		jobs <- WorkerData{
			Seq:       seq,
			Data:      eventData,
			Header:    header,
			Geometry:  geometries,
			ObsLevels: obsLevels,
		}
		seq++
	}
	close(jobs)
}

// processWorkerResults writes decoded events in file order. Workers finish
// out of order, so results arriving early are buffered by sequence number.
func processWorkerResults(results chan EventResult, writer cherentrace.TableWriter, evtsToRead int) {
	pending := make(map[int]EventResult)
	next := 0
	evtsProcessed := 0
	for result := range results {
		pending[result.Seq] = result
		for {
			buffered, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			writeResult(writer, buffered)
			next++
		}
		evtsProcessed++
		if evtsProcessed >= evtsToRead {
			break
		}
	}
}

func processParallel(fileReader *FileReader, writer cherentrace.TableWriter,
	geometries map[int]cherentrace.TelescopeGeometry, obsLevels []float64, evtCount int) {
	// The reader stops at MaxEvents and skips the first Skip events, so this
	// is exactly how many results the workers will produce.
	evtsToRead := evtCount
	if configuration.MaxEvents < evtsToRead {
		evtsToRead = configuration.MaxEvents
	}
	evtsToRead -= configuration.Skip
	if evtsToRead <= 0 {
		return
	}

	jobs := make(chan WorkerData, configuration.NumWorkers)
	results := make(chan EventResult, configuration.NumWorkers)

	for w := 1; w <= configuration.NumWorkers; w++ {
		go worker(w, jobs, results)
	}
	go sendEventsToWorkers(fileReader, jobs, geometries, obsLevels)
	processWorkerResults(results, writer, evtsToRead)
}
