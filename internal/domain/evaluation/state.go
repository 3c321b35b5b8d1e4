package evaluation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is one of the three presentation states of an evaluation run.
type Status string

const (
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ResultState is the three-state container observed by consumers of an
// evaluation run: Loading from construction, then exactly one transition to
// Success or Error, where it stays. No history is retained.
type ResultState struct {
	mu        sync.RWMutex
	status    Status
	result    *Result
	err       error
	settledAt time.Time
	done      chan struct{}
}

func NewResultState() *ResultState {
	return &ResultState{status: StatusLoading, done: make(chan struct{})}
}

// Succeed settles the state with a result. Calls after the state has settled
// are ignored.
func (s *ResultState) Succeed(r *Result) {
	s.settle(StatusSuccess, r, nil)
}

// Fail settles the state with the failure cause. The error is kept as-is so
// observers can classify it (invalid input vs. processing failure) without
// parsing messages.
func (s *ResultState) Fail(err error) {
	s.settle(StatusError, nil, err)
}

func (s *ResultState) settle(status Status, r *Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusLoading {
		return
	}
	s.status = status
	s.result = r
	s.err = err
	s.settledAt = time.Now()
	close(s.done)
}

// Snapshot returns the current state. The result is non-nil only for
// StatusSuccess and the error non-nil only for StatusError.
func (s *ResultState) Snapshot() (Status, *Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.result, s.err
}

// Done is closed when the state leaves Loading.
func (s *ResultState) Done() <-chan struct{} {
	return s.done
}

// settledSince reports whether the run has settled and when.
func (s *ResultState) settledSince() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settledAt, s.status != StatusLoading
}

// defaultRetention is how long a settled run stays pollable before it is
// discarded.
const defaultRetention = 10 * time.Minute

// Tracker registers in-flight and settled evaluation runs by id so the HTTP
// surface can hand out a poll URL for each request. Settled runs are kept for
// a retention window and evicted on the next registration, so the map stays
// bounded by the arrival rate instead of growing for the process lifetime.
type Tracker struct {
	mu        sync.Mutex
	runs      map[uuid.UUID]*ResultState
	retention time.Duration
	now       func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		runs:      make(map[uuid.UUID]*ResultState),
		retention: defaultRetention,
		now:       time.Now,
	}
}

// Start registers a new run in the Loading state and returns its id. The
// state is set before Start returns, so an observer can never see a run
// without a state.
func (t *Tracker) Start() (uuid.UUID, *ResultState) {
	id := uuid.New()
	st := NewResultState()
	t.mu.Lock()
	t.evictExpired()
	t.runs[id] = st
	t.mu.Unlock()
	return id, st
}

// evictExpired drops settled runs older than the retention window. In-flight
// runs are never evicted. Callers must hold t.mu.
func (t *Tracker) evictExpired() {
	cutoff := t.now().Add(-t.retention)
	for id, st := range t.runs {
		if at, settled := st.settledSince(); settled && at.Before(cutoff) {
			delete(t.runs, id)
		}
	}
}

func (t *Tracker) Get(id uuid.UUID) (*ResultState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.runs[id]
	return st, ok
}

// Forget drops a run immediately, ahead of the retention window.
func (t *Tracker) Forget(id uuid.UUID) {
	t.mu.Lock()
	delete(t.runs, id)
	t.mu.Unlock()
}
