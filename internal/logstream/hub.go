package logstream

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/snapback/internal/model"
)

const (
	readBlock       = time.Second
	backfillBlock   = 50 * time.Millisecond
	subscriberDepth = MaxChannelLength
)

// Hub runs one persistent reader task per channel and fans entries out to
// attached subscribers. Each reader owns its cursor; producers are never
// blocked by slow consumers.
type Hub struct {
	logger   zerolog.Logger
	stream   Stream
	channels []string

	mu   sync.Mutex
	subs map[string]map[*Subscriber]struct{}
}

// Subscriber is one attached viewer, filtered to a single channel.
type Subscriber struct {
	hub     *Hub
	channel string

	mu     sync.Mutex
	ch     chan model.LogEntry
	closed bool
}

// C delivers entries to the viewer. The channel is closed by Close.
func (s *Subscriber) C() <-chan model.LogEntry { return s.ch }

// Close detaches the subscriber from the hub. A broadcast snapshot may still
// hold this subscriber, so the closed flag and the channel close share a lock
// with deliver.
func (s *Subscriber) Close() {
	s.hub.mu.Lock()
	delete(s.hub.subs[s.channel], s)
	s.hub.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// NewHub creates a hub tailing the given channels.
func NewHub(logger zerolog.Logger, stream Stream, channels ...string) *Hub {
	subs := make(map[string]map[*Subscriber]struct{}, len(channels))
	for _, c := range channels {
		subs[c] = map[*Subscriber]struct{}{}
	}
	return &Hub{
		logger:   logger.With().Str("component", "log-hub").Logger(),
		stream:   stream,
		channels: channels,
		subs:     subs,
	}
}

// Subscribe attaches a viewer to a channel. By default the viewer only sees
// entries appended after attachment; fromBeginning preloads the retained
// buffer first. Delivery is at least once.
func (h *Hub) Subscribe(ctx context.Context, channel string, fromBeginning bool) *Subscriber {
	sub := &Subscriber{hub: h, channel: channel, ch: make(chan model.LogEntry, subscriberDepth)}

	if fromBeginning {
		entries, _, err := h.stream.Read(ctx, channel, CursorBegin, backfillBlock)
		if err != nil {
			h.logger.Warn().Err(err).Str("channel", channel).Msg("backfill read failed")
		}
		for _, e := range entries {
			sub.deliver(e)
		}
	}

	h.mu.Lock()
	if h.subs[channel] == nil {
		h.subs[channel] = map[*Subscriber]struct{}{}
	}
	h.subs[channel][sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Run tails every channel until ctx is cancelled. Each reader is an infinite
// blocking-read loop: wait for entries, broadcast, re-issue the read.
func (h *Hub) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, channel := range h.channels {
		g.Go(func() error {
			h.tail(ctx, channel)
			return nil
		})
	}
	return g.Wait()
}

func (h *Hub) tail(ctx context.Context, channel string) {
	cur := CursorTail
	for {
		entries, next, err := h.stream.Read(ctx, channel, cur, readBlock)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			h.logger.Error().Err(err).Str("channel", channel).Msg("stream read failed")
			select {
			case <-time.After(readBlock):
			case <-ctx.Done():
				return
			}
			continue
		}
		cur = next

		if len(entries) == 0 {
			continue
		}
		h.broadcast(channel, entries)
	}
}

func (h *Hub) broadcast(channel string, entries []model.LogEntry) {
	h.mu.Lock()
	targets := make([]*Subscriber, 0, len(h.subs[channel]))
	for sub := range h.subs[channel] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	for _, e := range entries {
		for _, sub := range targets {
			sub.deliver(e)
		}
	}
}

// deliver never blocks; a viewer lagging more than a full channel buffer
// behind has lost those entries to eviction anyway. Entries arriving after
// Close are dropped.
func (s *Subscriber) deliver(e model.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- e:
	default:
	}
}
