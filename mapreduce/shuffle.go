package mapreduce

import "container/heap"

// cursor addresses one pending pair inside a worker's sorted intermediate
// buffer. The merge heap holds cursors instead of pairs so keys and
// values are never copied while they wait in the heap.
type cursor struct {
	worker   int
	position int
}

// mergeHeap is a min-heap of cursors ordered by the intermediate key each
// one points at, used for the k-way merge of the per-worker buffers.
type mergeHeap[K1, V1, K2, V2, K3, V3 any] struct {
	job     *Job[K1, V1, K2, V2, K3, V3]
	cursors []cursor
}

func (h *mergeHeap[K1, V1, K2, V2, K3, V3]) keyAt(c cursor) K2 {
	return h.job.workers[c.worker].intermediate[c.position].Key
}

func (h *mergeHeap[K1, V1, K2, V2, K3, V3]) Len() int {
	return len(h.cursors)
}

func (h *mergeHeap[K1, V1, K2, V2, K3, V3]) Less(i, j int) bool {
	return h.job.task.Less(h.keyAt(h.cursors[i]), h.keyAt(h.cursors[j]))
}

func (h *mergeHeap[K1, V1, K2, V2, K3, V3]) Swap(i, j int) {
	h.cursors[i], h.cursors[j] = h.cursors[j], h.cursors[i]
}

func (h *mergeHeap[K1, V1, K2, V2, K3, V3]) Push(x any) {
	h.cursors = append(h.cursors, x.(cursor))
}

func (h *mergeHeap[K1, V1, K2, V2, K3, V3]) Pop() any {
	last := h.cursors[len(h.cursors)-1]
	h.cursors = h.cursors[:len(h.cursors)-1]
	return last
}

// shuffle merges the workers' sorted intermediate buffers into the shared
// bucket queue: each bucket collects every pair whose key is equivalent
// under the task ordering, and buckets come out in ascending key order.
// Only worker 0 runs this, between the two barriers, so it reads every
// buffer and writes the queue without locking.
func (job *Job[K1, V1, K2, V2, K3, V3]) shuffle() {
	var totalPairs uint64
	for _, worker := range job.workers {
		totalPairs += uint64(len(worker.intermediate))
	}
	job.state.Store(encodeJobState(SHUFFLE_STAGE, 0, totalPairs))

	h := &mergeHeap[K1, V1, K2, V2, K3, V3]{job: job}
	for i, worker := range job.workers {
		if len(worker.intermediate) > 0 {
			h.cursors = append(h.cursors, cursor{worker: i, position: 0})
		}
	}
	heap.Init(h)

	for h.Len() > 0 {
		var (
			curr   = h.keyAt(h.cursors[0])
			bucket []KeyValue[K2, V2]
		)

		// Drain every pending pair whose key is equivalent to curr,
		// advancing each drained cursor into its source buffer.
		for h.Len() > 0 &&
			!job.task.Less(curr, h.keyAt(h.cursors[0])) &&
			!job.task.Less(h.keyAt(h.cursors[0]), curr) {

			c := h.cursors[0]
			bucket = append(bucket, job.workers[c.worker].intermediate[c.position])

			if c.position+1 < len(job.workers[c.worker].intermediate) {
				h.cursors[0].position++
				heap.Fix(h, 0)
			} else {
				heap.Pop(h)
			}

			job.state.Add(processedUnit)
		}

		job.buckets = append(job.buckets, bucket)
	}
}
