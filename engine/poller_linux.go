//go:build linux
// +build linux

// File: engine/poller_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux epoll(7) poller with an eventfd wake descriptor.

package engine

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-http/api"
)

type epollPoller struct {
	epfd   int
	wakefd int
	events []unix.EpollEvent
}

func newPoller(cfg Config) (poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	wfd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, err
	}
	ev := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wfd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wfd, ev); err != nil {
		_ = unix.Close(wfd)
		_ = unix.Close(epfd)
		return nil, err
	}
	return &epollPoller{
		epfd:   epfd,
		wakefd: wfd,
		events: make([]unix.EpollEvent, cfg.PollBatch),
	}, nil
}

func (p *epollPoller) register(fd int, interest api.EventFlags) error {
	var flags uint32
	if interest&api.FlagRead != 0 {
		flags |= unix.EPOLLIN
	}
	if interest&api.FlagWrite != 0 {
		flags |= unix.EPOLLOUT
	}
	ev := &unix.EpollEvent{Events: flags, Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev)
}

func (p *epollPoller) unregister(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *epollPoller) wait(d time.Duration, ready func(fd int, flags api.EventFlags)) error {
	ms := -1
	if d >= 0 {
		ms = int((d + time.Millisecond - 1) / time.Millisecond)
	}
	n, err := unix.EpollWait(p.epfd, p.events, ms)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return err
	}
	for i := 0; i < n; i++ {
		ev := p.events[i]
		if int(ev.Fd) == p.wakefd {
			var buf [8]byte
			_, _ = unix.Read(p.wakefd, buf[:])
			continue
		}
		var flags api.EventFlags
		if ev.Events&unix.EPOLLIN != 0 {
			flags |= api.FlagRead
		}
		if ev.Events&unix.EPOLLOUT != 0 {
			flags |= api.FlagWrite
		}
		if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			flags |= api.FlagClosed
		}
		ready(int(ev.Fd), flags)
	}
	return nil
}

func (p *epollPoller) wake() error {
	var buf [8]byte
	buf[0] = 1
	_, err := unix.Write(p.wakefd, buf[:])
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

func (p *epollPoller) close() error {
	_ = unix.Close(p.wakefd)
	return unix.Close(p.epfd)
}
