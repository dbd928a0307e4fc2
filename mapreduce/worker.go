package mapreduce

import "sort"

// Worker is the per-goroutine context handed to the user's Map and Reduce
// functions. Its id and job reference are fixed at creation; the
// intermediate buffer is written only by the worker itself during the map
// phase and read only by the shuffle coordinator after the first barrier,
// so it needs no lock. Worker 0 doubles as the shuffle coordinator.
type Worker[K1, V1, K2, V2, K3, V3 any] struct {
	id           int
	job          *Job[K1, V1, K2, V2, K3, V3]
	intermediate []KeyValue[K2, V2]
}

// EmitIntermediate records one (K2, V2) pair produced by the user's Map
// function. The pair lands in the calling worker's private buffer, so no
// synchronization is involved.
func (worker *Worker[K1, V1, K2, V2, K3, V3]) EmitIntermediate(key K2, value V2) {
	worker.intermediate = append(worker.intermediate, KeyValue[K2, V2]{Key: key, Value: value})
}

// EmitOutput records one (K3, V3) pair produced by the user's Reduce
// function, appending it to the caller-owned output slice under the
// output mutex.
func (worker *Worker[K1, V1, K2, V2, K3, V3]) EmitOutput(key K3, value V3) {
	var job = worker.job

	job.outputMutex.Lock()
	*job.output = append(*job.output, KeyValue[K3, V3]{Key: key, Value: value})
	job.outputMutex.Unlock()
}

// run executes the full worker pipeline: claim and map input records, sort
// the private buffer, rendezvous with the other workers, shuffle (worker 0
// only), rendezvous again, then claim and reduce buckets. Claiming is a
// fetch-and-add on the shared work index; a worker that draws an index
// past the end of the phase's work just moves on.
func (worker *Worker[K1, V1, K2, V2, K3, V3]) run() {
	var (
		job   = worker.job
		index uint64
	)

	// Map phase.
	for {
		index = job.workIndex.Add(1) - 1
		if index >= uint64(len(job.input)) {
			break
		}

		record := job.input[index]
		job.task.Map(record.Key, record.Value, worker)
		job.state.Add(processedUnit)
	}

	debug("worker %v mapped, buffered %v pairs\n", worker.id, len(worker.intermediate))

	// Sort the private buffer by intermediate key. Stability does not
	// matter: the shuffle groups by ordering equivalence, and the order
	// of pairs inside a bucket is unspecified.
	sort.Slice(worker.intermediate, func(i, j int) bool {
		return job.task.Less(worker.intermediate[i].Key, worker.intermediate[j].Key)
	})

	job.barrier.await()

	// Shuffle phase. Worker 0 owns every intermediate buffer and the
	// bucket queue while the others are parked at the second barrier.
	if worker.id == 0 {
		job.shuffle()
		job.state.Store(encodeJobState(REDUCE_STAGE, 0, uint64(len(job.buckets))))
		job.workIndex.Store(0)

		debug("worker 0 shuffled %v buckets\n", len(job.buckets))
	}

	job.barrier.await()

	// Reduce phase.
	for {
		index = job.workIndex.Add(1) - 1
		if index >= uint64(len(job.buckets)) {
			break
		}

		job.task.Reduce(job.buckets[index], worker)
		job.state.Add(processedUnit)
	}
}
