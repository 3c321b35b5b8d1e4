package measurement

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNotifier_FanOut(t *testing.T) {
	n := NewNotifier()
	patientID := uuid.New()

	ch1, cancel1 := n.Subscribe(patientID)
	defer cancel1()
	ch2, cancel2 := n.Subscribe(patientID)
	defer cancel2()

	n.Notify(patientID)

	for i, ch := range []<-chan struct{}{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never signaled", i)
		}
	}
}

func TestNotifier_Coalesces(t *testing.T) {
	n := NewNotifier()
	patientID := uuid.New()

	ch, cancel := n.Subscribe(patientID)
	defer cancel()

	// A burst while the consumer is away collapses into one pending signal
	// instead of blocking the notifier.
	for i := 0; i < 10; i++ {
		n.Notify(patientID)
	}

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected at least one signal")
	}
	select {
	case <-ch:
		t.Fatal("burst should have coalesced into a single signal")
	default:
	}
}

func TestNotifier_CancelStopsSignals(t *testing.T) {
	n := NewNotifier()
	patientID := uuid.New()

	ch, cancel := n.Subscribe(patientID)
	cancel()

	n.Notify(patientID)

	select {
	case <-ch:
		t.Fatal("cancelled subscriber must not be signaled")
	default:
	}
}
