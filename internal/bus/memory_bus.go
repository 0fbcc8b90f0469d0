// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	xglog "github.com/ManuGH/cloudportal/internal/log"
	"github.com/ManuGH/cloudportal/internal/metrics"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 256

// MemoryBus is an in-process pub/sub. Publish never blocks: a subscriber
// whose queue is full misses the message, so a slow observer cannot stall
// the store loop.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[string][]*memSub
	buffer int
}

const dropLogEvery = 100

var dropCount atomic.Uint64

// NewMemoryBus returns a bus whose subscribers buffer DefaultBuffer messages.
func NewMemoryBus() *MemoryBus {
	return NewMemoryBusWithBuffer(DefaultBuffer)
}

// NewMemoryBusWithBuffer returns a bus with the given per-subscriber buffer.
func NewMemoryBusWithBuffer(n int) *MemoryBus {
	if n <= 0 {
		n = DefaultBuffer
	}
	return &MemoryBus{subs: make(map[string][]*memSub), buffer: n}
}

func publishDropReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "context_done"
	}
}

func recordDrop(topic, reason string) {
	metrics.IncBusDropReason(topic, reason)
	if count := dropCount.Add(1); count%dropLogEvery == 0 {
		logger := xglog.WithComponent("bus")
		logger.Warn().
			Str("topic", topic).
			Str("reason", reason).
			Uint64("dropped", count).
			Msg("memory bus dropped messages")
	}
}

func (b *MemoryBus) Publish(ctx context.Context, topic string, msg Message) error {
	if ctx == nil {
		return fmt.Errorf("publish context is nil")
	}
	if err := ctx.Err(); err != nil {
		recordDrop(topic, publishDropReason(err))
		return fmt.Errorf("publish topic %q: %w", topic, err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs[topic] {
		select {
		case s.ch <- msg:
		default:
			recordDrop(topic, "full")
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, topic string) (Subscriber, error) {
	s := &memSub{b: b, topic: topic, ch: make(chan Message, b.buffer)}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], s)
	metrics.SetBusSubscribers(topic, len(b.subs[topic]))
	b.mu.Unlock()

	return s, nil
}

type memSub struct {
	b     *MemoryBus
	topic string
	ch    chan Message
	once  sync.Once
}

func (s *memSub) C() <-chan Message {
	return s.ch
}

func (s *memSub) Close() error {
	s.once.Do(func() {
		s.b.mu.Lock()
		defer s.b.mu.Unlock()

		lst := s.b.subs[s.topic]
		out := lst[:0]
		for _, c := range lst {
			if c != s {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			delete(s.b.subs, s.topic)
		} else {
			s.b.subs[s.topic] = out
		}
		metrics.SetBusSubscribers(s.topic, len(out))
		// Publish holds the read lock while sending, so closing under the
		// write lock cannot race with a send.
		close(s.ch)
	})
	return nil
}

// Ensure compliance
var _ Bus = (*MemoryBus)(nil)
