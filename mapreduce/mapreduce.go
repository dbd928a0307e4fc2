// Package mapreduce implements an in-process MapReduce execution engine.
// A job runs a parallel map, a per-worker sort, a single-coordinator
// shuffle and a parallel reduce across a caller-chosen number of worker
// goroutines, and exposes an asynchronous handle whose stage and
// completion percentage can be queried from any goroutine without locks.
package mapreduce

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Job owns the state of one running MapReduce operation: the worker
// contexts and their intermediate buffers, the phase barrier, the packed
// state word, the shared work index and the shuffled bucket queue. The
// input and output slices remain owned by the caller.
type Job[K1, V1, K2, V2, K3, V3 any] struct {
	task   *Task[K1, V1, K2, V2, K3, V3]
	input  []KeyValue[K1, V1]
	output *[]KeyValue[K3, V3]

	workers []*Worker[K1, V1, K2, V2, K3, V3]
	barrier *barrier

	// workIndex hands out work: input records during map, buckets during
	// reduce. Fetch-and-add on it is the only claim mechanism; worker 0
	// resets it between the phases.
	workIndex atomic.Uint64

	// state is the packed (stage, processed, total) word.
	state atomic.Uint64

	buckets [][]KeyValue[K2, V2]

	outputMutex sync.Mutex

	joined   sync.WaitGroup
	waitOnce sync.Once
}

// Run starts a MapReduce job over input with numWorkers parallel workers
// and returns its handle immediately. Output pairs emitted during reduce
// are appended to *output. numWorkers must be at least 1 and the input
// must fit the engine's record limit; violating either is fatal.
func Run[K1, V1, K2, V2, K3, V3 any](
	task *Task[K1, V1, K2, V2, K3, V3],
	input []KeyValue[K1, V1],
	output *[]KeyValue[K3, V3],
	numWorkers int,
) *Job[K1, V1, K2, V2, K3, V3] {

	if numWorkers < 1 {
		systemError(fmt.Sprintf("invalid worker count %v", numWorkers))
	}
	if len(input) > MAX_JOB_SIZE {
		systemError(fmt.Sprintf("input size %v exceeds the %v record limit", len(input), MAX_JOB_SIZE))
	}

	job := &Job[K1, V1, K2, V2, K3, V3]{
		task:    task,
		input:   input,
		output:  output,
		barrier: newBarrier(numWorkers),
	}

	job.workers = make([]*Worker[K1, V1, K2, V2, K3, V3], numWorkers)
	for i := range job.workers {
		job.workers[i] = &Worker[K1, V1, K2, V2, K3, V3]{id: i, job: job}
	}

	job.state.Store(encodeJobState(MAP_STAGE, 0, uint64(len(input))))

	job.joined.Add(numWorkers)
	for _, worker := range job.workers {
		go func(worker *Worker[K1, V1, K2, V2, K3, V3]) {
			defer job.joined.Done()
			worker.run()
		}(worker)
	}

	return job
}

// Wait blocks until every worker has finished the pipeline. It is safe to
// call more than once and from several goroutines; every call returns
// after the same completion point.
func (job *Job[K1, V1, K2, V2, K3, V3]) Wait() {
	job.waitOnce.Do(func() {
		job.joined.Wait()
	})
}

// State returns a coherent snapshot of the job's stage and completion
// percentage, decoded from a single atomic load. It may be called from
// any goroutine at any time, during or after the job.
func (job *Job[K1, V1, K2, V2, K3, V3]) State() JobState {
	return decodeJobState(job.state.Load())
}

// Close waits for the job to finish, then drops the engine-owned state:
// the worker contexts with their intermediate buffers and the shuffled
// bucket queue. The input and output slices stay with the caller. The
// handle must not be used after Close.
func (job *Job[K1, V1, K2, V2, K3, V3]) Close() {
	job.Wait()
	job.workers = nil
	job.buckets = nil
}
