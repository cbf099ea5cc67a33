// File: reactor/event_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor_test

import (
	"testing"
	"time"

	"github.com/momentics/hioload-http/api"
	"github.com/momentics/hioload-http/reactor"
)

func TestEventTimeoutFires(t *testing.T) {
	b, err := reactor.New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer b.Close()

	var got api.EventFlags
	fired := false
	ev, err := b.NewEvent(api.NoFD, 0, func(_ int, flags api.EventFlags) {
		got = flags
		fired = true
	})
	if err != nil {
		t.Fatalf("NewEvent() error: %v", err)
	}
	defer ev.Free()

	if err := ev.Add(15 * time.Millisecond); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	for !fired {
		if err := b.DispatchOnce(); err != nil {
			t.Fatalf("DispatchOnce() error: %v", err)
		}
	}
	if got&api.FlagTimeout == 0 {
		t.Fatalf("flags = %v, want FlagTimeout set", got)
	}
}

func TestEventActivateForwardsFlags(t *testing.T) {
	b, err := reactor.New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer b.Close()

	var got api.EventFlags
	fired := false
	ev, err := b.NewEvent(api.NoFD, 0, func(_ int, flags api.EventFlags) {
		got = flags
		fired = true
	})
	if err != nil {
		t.Fatalf("NewEvent() error: %v", err)
	}
	defer ev.Free()

	ev.Activate(api.FlagRead)
	for !fired {
		if err := b.DispatchOnce(); err != nil {
			t.Fatalf("DispatchOnce() error: %v", err)
		}
	}
	if got != api.FlagRead {
		t.Fatalf("flags = %v, want FlagRead", got)
	}
}
