package inflight

import (
	"sort"
	"sync"
	"time"

	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
)

// State is the lifecycle state of a mutation for one identifier.
type State string

const (
	StateIdle     State = "idle"
	StatePending  State = "pending"
	StateResolved State = "resolved"
	StateFailed   State = "failed"
)

// Transition is emitted to observers on every state change.
type Transition struct {
	ID   string
	From State
	To   State
	// Err is set on transitions into StateFailed.
	Err error
	At  time.Time
}

// Observer is notified of transitions after the tracker lock is released.
// It must not block for long.
type Observer func(Transition)

// Tracker allows at most one in-flight mutation per identifier.
// An identifier moves idle -> pending -> resolved|failed -> idle; the
// terminal states are reported to observers and then immediately left, so
// State only ever returns idle or pending. It is safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	pending   map[string]time.Time
	observers []Observer
	now       func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		mu:        sync.Mutex{},
		pending:   make(map[string]time.Time),
		observers: nil,
		now:       time.Now,
	}
}

// Observe registers an observer for all future transitions.
func (t *Tracker) Observe(observer Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.observers = append(t.observers, observer)
}

// Begin marks id as pending. It fails with ErrCodeRequestInFlight when a
// mutation for id is already pending.
func (t *Tracker) Begin(id string) error {
	if id == "" {
		return errors.New(errors.ErrCodeMissingParameter, "identifier is required")
	}

	t.mu.Lock()
	if since, ok := t.pending[id]; ok {
		t.mu.Unlock()

		return errors.Newf(errors.ErrCodeRequestInFlight, "a request for %s is already in flight since %s", id, since.Format(time.RFC3339))
	}

	at := t.now()
	t.pending[id] = at
	observers := t.observers
	t.mu.Unlock()

	notify(observers, Transition{ID: id, From: StateIdle, To: StatePending, Err: nil, At: at})

	return nil
}

// Resolve ends the pending mutation for id successfully.
func (t *Tracker) Resolve(id string) {
	t.finish(id, StateResolved, nil)
}

// Fail ends the pending mutation for id with err.
func (t *Tracker) Fail(id string, err error) {
	t.finish(id, StateFailed, err)
}

func (t *Tracker) finish(id string, terminal State, err error) {
	t.mu.Lock()
	if _, ok := t.pending[id]; !ok {
		t.mu.Unlock()

		return
	}

	delete(t.pending, id)
	at := t.now()
	observers := t.observers
	t.mu.Unlock()

	notify(observers, Transition{ID: id, From: StatePending, To: terminal, Err: err, At: at})
	notify(observers, Transition{ID: id, From: terminal, To: StateIdle, Err: nil, At: at})
}

// State returns the current state of id.
func (t *Tracker) State(id string) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.pending[id]; ok {
		return StatePending
	}

	return StateIdle
}

// Pending returns the identifiers with a mutation in flight, sorted.
func (t *Tracker) Pending() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(t.pending))
	for id := range t.pending {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

func notify(observers []Observer, transition Transition) {
	for _, observer := range observers {
		observer(transition)
	}
}
