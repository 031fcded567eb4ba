package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/domain"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
	"github.com/nguyentantai21042004/vidscribe/internal/pipeline"
)

var (
	// ErrNotFound reports an unknown or already evicted job ID.
	ErrNotFound = errors.New("job not found")
	// ErrNotFinished reports a result request for a still-running job.
	ErrNotFinished = errors.New("job not finished")
	// ErrFinished reports a cancel request for a job that already reached
	// a terminal stage.
	ErrFinished = errors.New("job already finished")
)

type job struct {
	id        string
	url       string
	typ       domain.SummaryType
	opts      domain.Options
	createdAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}

	mu        sync.Mutex
	result    *domain.Result
	err       error
	expiresAt time.Time
}

func (j *job) finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// Snapshot is a poll-friendly view of one job, newest state included.
type Snapshot struct {
	ID        string             `json:"id"`
	URL       string             `json:"url"`
	Type      domain.SummaryType `json:"summary_type"`
	Stage     domain.Stage       `json:"stage"`
	Percent   int                `json:"percentage"`
	Message   string             `json:"message,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// Manager owns job lifecycles: it admits work under a concurrency cap,
// runs each job through the orchestrator, and retains terminal results
// until they are fetched once or their retention window lapses.
type Manager struct {
	store        *config.Store
	orchestrator pipeline.Orchestrator
	board        *StatusBoard
	logger       logger.Logger
	sem          *semaphore

	root     context.Context
	shutdown context.CancelFunc

	mu   sync.Mutex
	jobs map[string]*job
}

// NewManager creates a Manager. Close releases its background context.
func NewManager(store *config.Store, orch pipeline.Orchestrator, board *StatusBoard, log logger.Logger) *Manager {
	root, shutdown := context.WithCancel(context.Background())
	return &Manager{
		store:        store,
		orchestrator: orch,
		board:        board,
		logger:       log,
		sem:          newSemaphore(store.Snapshot().Jobs.MaxConcurrent),
		root:         root,
		shutdown:     shutdown,
		jobs:         make(map[string]*job),
	}
}

// Submit registers a new job and starts it in the background. The job is
// visible on the board immediately, queued at zero percent until a
// concurrency slot frees up.
func (m *Manager) Submit(url string, typ domain.SummaryType, opts domain.Options) string {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(m.root)

	j := &job{
		id:        id,
		url:       url,
		typ:       typ,
		opts:      opts,
		createdAt: time.Now().UTC(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	m.mu.Lock()
	m.jobs[id] = j
	m.mu.Unlock()

	m.board.Publish(domain.ProgressEvent{
		JobID:   id,
		Stage:   domain.StageValidating,
		Percent: 0,
		Message: "Queued",
	})

	go m.run(ctx, j)
	return id
}

func (m *Manager) run(ctx context.Context, j *job) {
	defer j.cancel()

	if err := m.sem.acquire(ctx); err != nil {
		m.finish(j, nil, domain.Wrap(domain.KindCancelled, err, "job cancelled while queued"))
		return
	}
	defer m.sem.release()

	result, err := m.orchestrator.Run(ctx, pipeline.Request{
		JobID:   j.id,
		URL:     j.url,
		Type:    j.typ,
		Options: j.opts,
	}, m.board.Publish)
	m.finish(j, result, err)
}

func (m *Manager) finish(j *job, result *domain.Result, err error) {
	retention := m.store.Snapshot().Jobs.Retention()

	j.mu.Lock()
	j.result = result
	j.err = err
	j.expiresAt = time.Now().Add(retention)
	j.mu.Unlock()
	close(j.done)

	// The queued-cancellation path never reached the orchestrator, so no
	// terminal event was emitted for it yet.
	if err != nil {
		if st, ok := m.board.Read(j.id); !ok || !st.Terminal {
			m.board.Publish(domain.ProgressEvent{
				JobID:   j.id,
				Stage:   domain.StageFailed,
				Percent: 0,
				Message: err.Error(),
			})
		}
	}
}

// Wait blocks until the job reaches a terminal stage, then returns its
// result exactly as Result does, eviction included.
func (m *Manager) Wait(ctx context.Context, id string) (*domain.Result, error) {
	m.mu.Lock()
	j, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	select {
	case <-j.done:
		return m.Result(id)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domain.Wrap(domain.KindTimeout, ctx.Err(), "timed out waiting for job %s", id)
		}
		return nil, domain.Wrap(domain.KindCancelled, ctx.Err(), "wait for job %s abandoned", id)
	}
}

// Status returns the job's latest progress state without consuming it.
func (m *Manager) Status(id string) (Status, bool) {
	return m.board.Read(id)
}

// Result returns the terminal outcome of a finished job and evicts it:
// a second call for the same ID reports ErrNotFound.
func (m *Manager) Result(id string) (*domain.Result, error) {
	m.mu.Lock()
	j, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	if !j.finished() {
		return nil, ErrNotFinished
	}

	j.mu.Lock()
	result, err := j.result, j.err
	j.mu.Unlock()

	m.evict(id)
	return result, err
}

// Peek returns the terminal outcome of a finished job without evicting
// it. Export renditions use this so a download does not consume the
// result.
func (m *Manager) Peek(id string) (*domain.Result, error) {
	m.mu.Lock()
	j, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	if !j.finished() {
		return nil, ErrNotFinished
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.err
}

// Cancel requests cooperative cancellation of a running job.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	j, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	if j.finished() {
		return ErrFinished
	}

	m.logger.Info(context.Background(), "Job %s cancellation requested", id)
	j.cancel()
	return nil
}

// List returns a snapshot of every job the manager still retains,
// running and finished alike.
func (m *Manager) List() []Snapshot {
	m.mu.Lock()
	jobs := make([]*job, 0, len(m.jobs))
	for _, j := range m.jobs {
		jobs = append(jobs, j)
	}
	m.mu.Unlock()

	out := make([]Snapshot, 0, len(jobs))
	for _, j := range jobs {
		snap := Snapshot{
			ID:        j.id,
			URL:       j.url,
			Type:      j.typ,
			CreatedAt: j.createdAt,
		}
		if st, ok := m.board.Read(j.id); ok {
			snap.Stage = st.Event.Stage
			snap.Percent = st.Event.Percent
			snap.Message = st.Event.Message
		}
		out = append(out, snap)
	}
	return out
}

// Janitor evicts finished jobs whose retention window has lapsed. It
// blocks until ctx is cancelled; run it in its own goroutine.
func (m *Manager) Janitor(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(time.Now())
		}
	}
}

func (m *Manager) sweep(now time.Time) {
	m.mu.Lock()
	var expired []string
	for id, j := range m.jobs {
		if !j.finished() {
			continue
		}
		j.mu.Lock()
		lapsed := now.After(j.expiresAt)
		j.mu.Unlock()
		if lapsed {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.logger.Debug(context.Background(), "Job %s expired, evicting", id)
		m.evict(id)
	}
}

func (m *Manager) evict(id string) {
	m.mu.Lock()
	delete(m.jobs, id)
	m.mu.Unlock()
	m.board.Remove(id)
}

// Close cancels every job still running. In-flight work stops at the
// next cooperative cancellation point.
func (m *Manager) Close() {
	m.shutdown()
}
