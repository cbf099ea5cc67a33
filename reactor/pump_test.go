// File: reactor/pump_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor_test

import (
	"testing"
	"time"

	"github.com/momentics/hioload-http/reactor"
)

func TestPumpExecutesClosures(t *testing.T) {
	b, err := reactor.New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer b.Close()

	pump := reactor.NewEventPump(b)
	defer pump.Stop()

	ran := make(chan struct{})
	b.Add(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("closure did not run on the pump")
	}
}

func TestPumpStopJoinsAndReleasesLoop(t *testing.T) {
	b, err := reactor.New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer b.Close()

	pump := reactor.NewEventPump(b)
	pump.Stop()

	// After Stop the loop must be free for manual dispatching.
	ran := false
	b.Add(func() { ran = true })
	if err := b.DispatchOnce(); err != nil {
		t.Fatalf("DispatchOnce() error: %v", err)
	}
	if !ran {
		t.Fatal("closure did not run on the manual loop after Stop")
	}
}

func TestPumpStopIdempotent(t *testing.T) {
	b, err := reactor.New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer b.Close()

	pump := reactor.NewEventPump(b)
	pump.Stop()
	pump.Stop()
}
