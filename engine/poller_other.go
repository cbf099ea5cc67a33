//go:build !linux
// +build !linux

// File: engine/poller_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Portable fallback poller: a buffered wake channel, no descriptor
// support. Timers and manually activated events work everywhere.

package engine

import (
	"time"

	"github.com/momentics/hioload-http/api"
)

type chanPoller struct {
	wakeCh chan struct{}
}

func newPoller(cfg Config) (poller, error) {
	return &chanPoller{wakeCh: make(chan struct{}, 1)}, nil
}

func (p *chanPoller) register(fd int, interest api.EventFlags) error {
	return ErrNotSupported
}

func (p *chanPoller) unregister(fd int) error {
	return ErrNotSupported
}

func (p *chanPoller) wait(d time.Duration, ready func(fd int, flags api.EventFlags)) error {
	switch {
	case d < 0:
		<-p.wakeCh
	case d == 0:
		select {
		case <-p.wakeCh:
		default:
		}
	default:
		t := time.NewTimer(d)
		select {
		case <-p.wakeCh:
		case <-t.C:
		}
		t.Stop()
	}
	return nil
}

func (p *chanPoller) wake() error {
	select {
	case p.wakeCh <- struct{}{}:
	default:
	}
	return nil
}

func (p *chanPoller) close() error {
	return nil
}
