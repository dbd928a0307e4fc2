package mapreduce

// Stage identifies the phase a job is in. A job moves strictly through
// map, shuffle and reduce; there is no separate done stage. Completion is
// observed as REDUCE_STAGE at 100%.
type Stage int

const (
	UNDEFINED_STAGE Stage = 0
	MAP_STAGE       Stage = 1
	SHUFFLE_STAGE   Stage = 2
	REDUCE_STAGE    Stage = 3
)

func (stage Stage) String() string {
	switch stage {
	case MAP_STAGE:
		return "map"
	case SHUFFLE_STAGE:
		return "shuffle"
	case REDUCE_STAGE:
		return "reduce"
	}
	return "undefined"
}

// Layout of the packed job state word, high to low: stage in bits 63..62,
// processed count in bits 61..31, total count in bits 30..0. Packing the
// triple into one word lets State read a coherent snapshot with a single
// atomic load.
const (
	stageShift     = 62
	processedShift = 31
	counterMask    = 0x7FFFFFFF

	// processedUnit added to the state word bumps the processed count by
	// one without touching the stage or the total.
	processedUnit = uint64(1) << processedShift

	// MAX_JOB_SIZE is the largest record count either phase can track.
	MAX_JOB_SIZE = counterMask
)

// JobState is the snapshot returned by Job.State.
type JobState struct {
	Stage      Stage
	Percentage float64
}

func encodeJobState(stage Stage, processed, total uint64) uint64 {
	return uint64(stage)<<stageShift | processed<<processedShift | total
}

// decodeJobState unpacks a state word into a JobState snapshot. The
// percentage is clamped to 100: workers bump the processed count without
// a lock and can momentarily overshoot the total right before a phase
// transition is stored.
func decodeJobState(word uint64) JobState {
	var (
		stage      = Stage(word >> stageShift)
		processed  = (word >> processedShift) & counterMask
		total      = word & counterMask
		percentage float64
	)

	if total == 0 {
		percentage = 100.0
	} else {
		percentage = 100.0 * float64(processed) / float64(total)
		if percentage > 100.0 {
			percentage = 100.0
		}
	}

	return JobState{Stage: stage, Percentage: percentage}
}
