package jobs

import (
	"sync"

	"github.com/nguyentantai21042004/vidscribe/internal/domain"
)

// Status is the latest known state of one job.
type Status struct {
	Event    domain.ProgressEvent
	Terminal bool
}

// StatusBoard keeps the most recent progress event per job and fans
// events out to live subscribers. Only the latest event is retained:
// pollers always see current state, and subscribers receive every event
// from the moment they attach.
type StatusBoard struct {
	mu   sync.RWMutex
	jobs map[string]Status
	subs map[string]map[chan domain.ProgressEvent]struct{}
}

// NewStatusBoard creates an empty board.
func NewStatusBoard() *StatusBoard {
	return &StatusBoard{
		jobs: make(map[string]Status),
		subs: make(map[string]map[chan domain.ProgressEvent]struct{}),
	}
}

// Publish records the event as the job's latest state and delivers it to
// subscribers. Slow subscribers are skipped rather than blocking the
// pipeline. A terminal event closes all subscriber channels for the job.
func (b *StatusBoard) Publish(ev domain.ProgressEvent) {
	terminal := ev.Stage.Terminal()

	b.mu.Lock()
	b.jobs[ev.JobID] = Status{Event: ev, Terminal: terminal}
	for ch := range b.subs[ev.JobID] {
		select {
		case ch <- ev:
		default:
		}
		if terminal {
			close(ch)
		}
	}
	if terminal {
		delete(b.subs, ev.JobID)
	}
	b.mu.Unlock()
}

// Read returns the job's latest state.
func (b *StatusBoard) Read(jobID string) (Status, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	st, ok := b.jobs[jobID]
	return st, ok
}

// Subscribe attaches a channel that receives every subsequent event for
// the job. The channel is closed after the terminal event, or when the
// returned cancel function runs. Subscribing to an already terminal job
// yields its final event and an immediately closed channel.
func (b *StatusBoard) Subscribe(jobID string) (<-chan domain.ProgressEvent, func()) {
	ch := make(chan domain.ProgressEvent, 16)

	b.mu.Lock()
	if st, ok := b.jobs[jobID]; ok && st.Terminal {
		b.mu.Unlock()
		ch <- st.Event
		close(ch)
		return ch, func() {}
	}
	if b.subs[jobID] == nil {
		b.subs[jobID] = make(map[chan domain.ProgressEvent]struct{})
	}
	b.subs[jobID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[jobID]; ok {
			if _, live := set[ch]; live {
				delete(set, ch)
				close(ch)
				if len(set) == 0 {
					delete(b.subs, jobID)
				}
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Remove drops the job's state and disconnects any remaining
// subscribers. Called when the job is evicted.
func (b *StatusBoard) Remove(jobID string) {
	b.mu.Lock()
	delete(b.jobs, jobID)
	for ch := range b.subs[jobID] {
		close(ch)
	}
	delete(b.subs, jobID)
	b.mu.Unlock()
}
