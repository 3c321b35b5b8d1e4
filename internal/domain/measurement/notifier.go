package measurement

import (
	"sync"

	"github.com/google/uuid"
)

// Notifier fans out change signals per patient so consumers can keep a live
// view of the ordered measurement sequence without a reactive framework: on
// each signal they re-query the current snapshot.
type Notifier struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[chan struct{}]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[uuid.UUID]map[chan struct{}]struct{})}
}

// Subscribe returns a channel that receives a signal whenever the patient's
// measurements change, plus a cancel func that must be called when done.
// Signals are coalesced: a slow consumer sees at least one signal per burst.
func (n *Notifier) Subscribe(patientID uuid.UUID) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	if n.subs[patientID] == nil {
		n.subs[patientID] = make(map[chan struct{}]struct{})
	}
	n.subs[patientID][ch] = struct{}{}
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		delete(n.subs[patientID], ch)
		if len(n.subs[patientID]) == 0 {
			delete(n.subs, patientID)
		}
		n.mu.Unlock()
	}
	return ch, cancel
}

// Notify signals every subscriber of the given patient.
func (n *Notifier) Notify(patientID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs[patientID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
