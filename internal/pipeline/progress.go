package pipeline

import (
	"github.com/nguyentantai21042004/vidscribe/internal/domain"
)

// Fixed stage weight bands. Overall progress is always derivable from
// (stage, intra-stage fraction), and a later band never starts below an
// earlier band's end.
var stageBands = map[domain.Stage][2]int{
	domain.StageValidating:   {0, 5},
	domain.StageAcquiring:    {5, 25},
	domain.StageTranscribing: {25, 65},
	domain.StageSummarizing:  {65, 100},
}

// tracker converts intra-stage fractions into monotonic overall
// percentages and forwards them to the emitter.
type tracker struct {
	jobID string
	emit  Emitter
	last  int
}

func (t *tracker) publish(stage domain.Stage, fraction float64, message string) {
	band := stageBands[stage]
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	pct := band[0] + int(fraction*float64(band[1]-band[0])+0.5)
	if pct < t.last {
		pct = t.last
	}
	t.last = pct

	t.emit(domain.ProgressEvent{
		JobID:   t.jobID,
		Stage:   stage,
		Percent: pct,
		Message: message,
	})
}

// complete emits the single terminal success event at 100%.
func (t *tracker) complete(message string) {
	t.last = 100
	t.emit(domain.ProgressEvent{
		JobID:   t.jobID,
		Stage:   domain.StageComplete,
		Percent: 100,
		Message: message,
	})
}

// fail emits the single terminal failure event. The percentage stays at
// the last known value rather than resetting.
func (t *tracker) fail(message string) {
	t.emit(domain.ProgressEvent{
		JobID:   t.jobID,
		Stage:   domain.StageFailed,
		Percent: t.last,
		Message: message,
	})
}
