package fetch

import (
	"context"
	"sync"
)

// Ticket identifies one issued request.
type Ticket uint64

// Sequencer orders overlapping requests: issuing a new one cancels the one in
// flight, and only the latest ticket's response is accepted.
type Sequencer struct {
	mu     sync.Mutex
	latest Ticket
	cancel context.CancelFunc
}

// Next issues a new ticket and a context derived from parent. The previous
// request's context is canceled.
func (s *Sequencer) Next(parent context.Context) (Ticket, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.latest++
	s.cancel = cancel
	return s.latest, ctx
}

// Accept reports whether a response for t should be applied, and releases the
// request's context when it is the latest.
func (s *Sequencer) Accept(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.latest {
		return false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return true
}

// Pending reports whether the latest request has not been accepted yet.
func (s *Sequencer) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Stop cancels any request in flight.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
