// Package stream fans moderation-pipeline events out to subscribers, so the
// moderation dashboard can follow submissions live and zero-scored
// classifications surface somewhere visible instead of disappearing into a
// stored 0.
package stream

import (
	"context"
	"sync"
	"time"
)

// Kind discriminates lifecycle events.
type Kind string

const (
	KindSubmitted Kind = "submitted"
	KindApproved  Kind = "approved"
	KindRejected  Kind = "rejected"
	// KindUnrecognized flags a submission whose classification matched no
	// scoring table and was stored with 0 points.
	KindUnrecognized Kind = "unrecognized_classification"
)

// Event describes one moderation-pipeline occurrence.
type Event struct {
	Kind      Kind      `json:"kind"`
	RecordID  int64     `json:"record_id"`
	OwnerID   string    `json:"owner_id"`
	ActorID   string    `json:"actor_id,omitempty"`
	Points    int       `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}

// Stream fan-outs events to all active subscribers (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish delivers the event to every subscriber. Slow subscribers drop
// events rather than blocking the moderation path.
func (s *Stream) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
