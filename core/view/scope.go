// Package view holds the lifecycle of a mounted page.
package view

import (
	"context"
	"sync"
)

// Scope belongs to one page instance. Requests started by the page run under its
// context. Completions must go through Do so they are dropped once the page is unmounted.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	mounted bool
}

func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel, mounted: true}
}

func (s *Scope) Context() context.Context { return s.ctx }

func (s *Scope) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

// Unmount deactivates the scope and cancels its in-flight requests. It is idempotent.
func (s *Scope) Unmount() {
	s.mu.Lock()
	s.mounted = false
	s.mu.Unlock()
	s.cancel()
}

// Do runs fn only while the scope is mounted and reports whether it ran.
// Unmount waits for a running fn to return.
func (s *Scope) Do(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return false
	}
	fn()
	return true
}
