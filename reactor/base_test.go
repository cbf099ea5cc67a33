// File: reactor/base_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/hioload-http/reactor"
)

func TestAddExecutesExactlyOnceFromManyGoroutines(t *testing.T) {
	b, err := reactor.New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer b.Close()

	const producers = 8
	const perProducer = 50

	counts := make(map[int]int) // loop goroutine only
	var total atomic.Int32
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				id := p*perProducer + i
				b.Add(func() {
					counts[id]++
					total.Add(1)
				})
			}
		}(p)
	}
	wg.Wait()

	for total.Load() < producers*perProducer {
		if err := b.DispatchOnce(); err != nil {
			t.Fatalf("DispatchOnce() error: %v", err)
		}
	}
	if len(counts) != producers*perProducer {
		t.Fatalf("executed %d distinct closures, want %d", len(counts), producers*perProducer)
	}
	for id, n := range counts {
		if n != 1 {
			t.Fatalf("closure %d executed %d times, want 1", id, n)
		}
	}
}

func TestAddNeverRunsInline(t *testing.T) {
	b, err := reactor.New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer b.Close()

	var ran atomic.Bool
	b.Add(func() { ran.Store(true) })
	if ran.Load() {
		t.Fatal("closure ran inline on the submitting goroutine")
	}
	if err := b.DispatchOnce(); err != nil {
		t.Fatalf("DispatchOnce() error: %v", err)
	}
	if !ran.Load() {
		t.Fatal("closure did not run after DispatchOnce")
	}

	// Even from the loop goroutine itself, Add must defer execution to
	// a later iteration.
	var innerRanDuringOuter, innerRan atomic.Bool
	b.Add(func() {
		b.Add(func() { innerRan.Store(true) })
		innerRanDuringOuter.Store(innerRan.Load())
	})
	if err := b.DispatchOnce(); err != nil {
		t.Fatalf("DispatchOnce() error: %v", err)
	}
	if innerRanDuringOuter.Load() {
		t.Fatal("nested Add ran inline on the loop goroutine")
	}
	for !innerRan.Load() {
		if err := b.DispatchOnce(); err != nil {
			t.Fatalf("DispatchOnce() error: %v", err)
		}
	}
}

func TestAddPreservesFIFOPerProducer(t *testing.T) {
	b, err := reactor.New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer b.Close()

	const n = 100
	var got []int
	for i := 0; i < n; i++ {
		i := i
		b.Add(func() { got = append(got, i) })
	}
	for len(got) < n {
		if err := b.DispatchOnce(); err != nil {
			t.Fatalf("DispatchOnce() error: %v", err)
		}
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("position %d ran closure %d, want %d", i, v, i)
		}
	}
}

func TestDelayRunsAfterDuration(t *testing.T) {
	b, err := reactor.New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer b.Close()

	var ran atomic.Bool
	start := time.Now()
	if err := b.Delay(context.Background(), 30*time.Millisecond, func() { ran.Store(true) }); err != nil {
		t.Fatalf("Delay() error: %v", err)
	}
	for !ran.Load() {
		if err := b.DispatchOnce(); err != nil {
			t.Fatalf("DispatchOnce() error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("task ran after %v, want >= 30ms", elapsed)
	}
}

func TestDelayCancelledNeverRuns(t *testing.T) {
	b, err := reactor.New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool
	if err := b.Delay(ctx, 20*time.Millisecond, func() { ran.Store(true) }); err != nil {
		t.Fatalf("Delay() error: %v", err)
	}
	cancel()

	// A sentinel timer well past the cancelled deadline bounds the wait.
	var sentinel atomic.Bool
	if err := b.Delay(context.Background(), 80*time.Millisecond, func() { sentinel.Store(true) }); err != nil {
		t.Fatalf("Delay() error: %v", err)
	}
	for !sentinel.Load() {
		if err := b.DispatchOnce(); err != nil {
			t.Fatalf("DispatchOnce() error: %v", err)
		}
	}
	if ran.Load() {
		t.Fatal("cancelled task ran")
	}
}

func TestResolverCreatedExactlyOnce(t *testing.T) {
	b, err := reactor.New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer b.Close()

	const callers = 16
	results := make([]any, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = b.Resolver()
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if results[i] != results[0] {
			t.Fatalf("caller %d got a different resolver", i)
		}
	}
}

func TestBreakStopsDispatch(t *testing.T) {
	b, err := reactor.New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer b.Close()

	done := make(chan error, 1)
	go func() { done <- b.Dispatch() }()

	var ran atomic.Bool
	b.Add(func() { ran.Store(true) })
	time.Sleep(30 * time.Millisecond)
	b.Break()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Dispatch() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch() did not return after Break()")
	}
	if !ran.Load() {
		t.Fatal("closure did not run while dispatching")
	}
}
