package viser

import (
	"time"

	"go.uber.org/zap"
)

// sendInterval is the minimum spacing between outbound messages from a
// throttled sender. Repeated pushes within the interval are coalesced to the
// most recent value; dropped intermediates are acceptable since only the
// latest state matters.
const sendInterval = 20 * time.Millisecond

// sender rate-limits outbound messages, latest-wins. Not safe for concurrent
// use; push and flush from the dispatch goroutine only.
type sender struct {
	interval time.Duration
	send     func(Message)
	now      func() time.Time

	lastSent time.Time
	pending  Message
}

func newSender(interval time.Duration, send func(Message)) *sender {
	return &sender{
		interval: interval,
		send:     send,
		now:      time.Now,
	}
}

// newTransportSender builds a sender that writes to the transport, logging
// rather than surfacing send failures.
func newTransportSender(t Transport, log *zap.Logger) *sender {
	return newSender(sendInterval, func(m Message) {
		if err := t.Send(m); err != nil {
			log.Warn("outbound send failed", zap.String("type", m.MessageType()), zap.Error(err))
		}
	})
}

// Push submits a message. If the interval since the last transmission has
// elapsed it is sent immediately; otherwise it replaces any pending value.
func (s *sender) Push(m Message) {
	now := s.now()
	if now.Sub(s.lastSent) >= s.interval {
		s.lastSent = now
		s.pending = nil
		s.send(m)
		return
	}
	s.pending = m
}

// Flush transmits a pending coalesced message once the interval has elapsed.
// Called once per frame from Client.Update.
func (s *sender) Flush() {
	if s.pending == nil {
		return
	}
	now := s.now()
	if now.Sub(s.lastSent) < s.interval {
		return
	}
	s.lastSent = now
	m := s.pending
	s.pending = nil
	s.send(m)
}
