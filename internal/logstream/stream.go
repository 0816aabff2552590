// Package logstream is the live log fan-out: orchestrators append structured
// entries to bounded per-channel streams, and reader tasks tail those
// streams and broadcast to any number of attached viewers.
package logstream

import (
	"context"
	"time"

	"github.com/edvin/snapback/internal/model"
)

// MaxChannelLength caps each channel; the oldest entries are silently
// evicted past it.
const MaxChannelLength = 1000

// Cursor is an opaque read position within one channel. Readers own their
// cursor and feed back the value returned by the previous Read.
type Cursor string

const (
	// CursorTail starts reading at entries appended after the first Read.
	CursorTail Cursor = "$"
	// CursorBegin starts reading at the oldest retained entry.
	CursorBegin Cursor = "0"
)

// Stream is the transport behind the fan-out: bounded append plus blocking
// read-from-cursor. Append never blocks on slow consumers.
type Stream interface {
	// Append adds an entry to the named channel, evicting the oldest entry
	// once the channel exceeds its capacity.
	Append(ctx context.Context, channel string, e model.LogEntry) error

	// Read blocks up to block for entries after cur on the named channel and
	// returns them with the advanced cursor. A timeout returns no entries
	// and the cursor unchanged.
	Read(ctx context.Context, channel string, cur Cursor, block time.Duration) ([]model.LogEntry, Cursor, error)
}
