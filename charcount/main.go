package main

import (
	"bufio"
	"flag"
	"fmt"
	"localMapReduce/mapreduce"
	"log"
	"os"
	"sort"
	"time"
)

var (
	// Run settings
	numWorkers = flag.Int("workers", 4, "Number of parallel workers")
	poll       = flag.Duration("poll", 50*time.Millisecond, "Progress polling interval")

	// Input data settings
	file = flag.String("file", "", "File to use as input, one record per line. Uses built-in sample records when empty")
)

// sampleRecords keeps the client runnable without any input file.
var sampleRecords = []string{"aabbc", "abc", "bbb"}

// Code Entry Point
func main() {
	var (
		err     error
		records []string
		input   []mapreduce.KeyValue[int, string]
		output  []mapreduce.KeyValue[byte, int]
		task    *mapreduce.Task[int, string, byte, int, byte, int]
	)

	flag.Parse()

	records = sampleRecords
	if *file != "" {
		if records, err = readRecords(*file); err != nil {
			log.Fatal(err)
		}
	}

	for i, record := range records {
		input = append(input, mapreduce.KeyValue[int, string]{Key: i, Value: record})
	}

	task = &mapreduce.Task[int, string, byte, int, byte, int]{
		Map:    mapFunc,
		Reduce: reduceFunc,
		Less:   lessFunc,
	}

	log.Println("Records:", len(input))
	log.Println("Workers:", *numWorkers)

	job := mapreduce.Run(task, input, &output, *numWorkers)

	// Poll the job state while it runs, the way an interactive caller
	// would watch progress.
	done := make(chan bool)
	go func() {
		job.Wait()
		done <- true
	}()

	ticker := time.NewTicker(*poll)
	defer ticker.Stop()

	for running := true; running; {
		select {
		case <-done:
			running = false
		case <-ticker.C:
			state := job.State()
			log.Printf("Stage: %v (%.1f%%)\n", state.Stage, state.Percentage)
		}
	}

	state := job.State()
	log.Printf("Stage: %v (%.1f%%)\n", state.Stage, state.Percentage)

	job.Close()

	// Final output order is unspecified; sort it for display.
	sort.Slice(output, func(i, j int) bool {
		return output[i].Key < output[j].Key
	})

	for _, pair := range output {
		fmt.Printf("%q: %v\n", pair.Key, pair.Value)
	}
}

// readRecords loads one input record per line of the named file.
func readRecords(fileName string) ([]string, error) {
	var (
		err     error
		file    *os.File
		scanner *bufio.Scanner
		records []string
	)

	if file, err = os.Open(fileName); err != nil {
		return nil, err
	}
	defer file.Close()

	scanner = bufio.NewScanner(file)
	for scanner.Scan() {
		records = append(records, scanner.Text())
	}

	return records, scanner.Err()
}
