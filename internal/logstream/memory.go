package logstream

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/edvin/snapback/internal/model"
)

// MemoryStream is an in-process stream transport for single-node
// deployments without Redis. Channels carry the same bounded, ordered
// semantics; cursors are entry sequence numbers.
type MemoryStream struct {
	mu       sync.Mutex
	capacity int
	channels map[string]*memChannel
}

type memChannel struct {
	entries  []model.LogEntry
	firstSeq uint64
	nextSeq  uint64
	// notify is closed and replaced on every append; readers wait on it.
	notify chan struct{}
}

// NewMemoryStream creates an in-memory stream with the standard channel
// capacity.
func NewMemoryStream() *MemoryStream {
	return &MemoryStream{capacity: MaxChannelLength, channels: map[string]*memChannel{}}
}

func (s *MemoryStream) channel(name string) *memChannel {
	ch, ok := s.channels[name]
	if !ok {
		ch = &memChannel{notify: make(chan struct{})}
		s.channels[name] = ch
	}
	return ch
}

func (s *MemoryStream) Append(_ context.Context, channel string, e model.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.channel(channel)
	ch.entries = append(ch.entries, e)
	ch.nextSeq++
	if over := len(ch.entries) - s.capacity; over > 0 {
		ch.entries = ch.entries[over:]
		ch.firstSeq += uint64(over)
	}

	close(ch.notify)
	ch.notify = make(chan struct{})
	return nil
}

func (s *MemoryStream) Read(ctx context.Context, channel string, cur Cursor, block time.Duration) ([]model.LogEntry, Cursor, error) {
	s.mu.Lock()
	ch := s.channel(channel)

	var start uint64
	switch cur {
	case CursorTail:
		start = ch.nextSeq
	case CursorBegin:
		start = 0
	default:
		start, _ = strconv.ParseUint(string(cur), 10, 64)
	}

	if start < ch.firstSeq {
		// Requested entries already evicted.
		start = ch.firstSeq
	}

	if start < ch.nextSeq {
		entries := append([]model.LogEntry(nil), ch.entries[start-ch.firstSeq:]...)
		next := Cursor(strconv.FormatUint(ch.nextSeq, 10))
		s.mu.Unlock()
		return entries, next, nil
	}

	// Nothing new; wait for an append, the block timeout, or cancellation.
	notify := ch.notify
	resolved := Cursor(strconv.FormatUint(start, 10))
	s.mu.Unlock()

	var timeout <-chan time.Time
	if block > 0 {
		timer := time.NewTimer(block)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-notify:
		return s.Read(ctx, channel, resolved, 0)
	case <-timeout:
		return nil, resolved, nil
	case <-ctx.Done():
		return nil, resolved, ctx.Err()
	}
}

// Len reports the current length of a channel.
func (s *MemoryStream) Len(channel string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.channel(channel).entries)
}
