package viser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// playbackEntry is one line of a recorded session file: the millisecond
// offset from the start of the recording and the raw message.
type playbackEntry struct {
	OffsetMs int64               `json:"offsetMs"`
	Message  jsoniter.RawMessage `json:"message"`
}

// PlaybackTransport replays a recorded session file instead of a live
// connection. Messages are delivered in file order, honoring the recorded
// inter-message timing. Exhaustion is terminal and not an error: the
// incoming channel closes and no further dispatch occurs.
//
// Send is a no-op success; there is no server to talk to during replay.
type PlaybackTransport struct {
	entries []playbackEntry
	in      chan Message
	done    chan struct{}
	log     *zap.Logger
}

// OpenPlayback loads a recorded session from a file and starts replay.
func OpenPlayback(path string, log *zap.Logger) (*PlaybackTransport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open playback %s: %w", path, err)
	}
	defer f.Close()
	return NewPlayback(f, log)
}

// NewPlayback loads a recorded session (one JSON entry per line) from r and
// starts replay.
func NewPlayback(r io.Reader, log *zap.Logger) (*PlaybackTransport, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var entries []playbackEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var e playbackEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("parse playback line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read playback: %w", err)
	}

	t := &PlaybackTransport{
		entries: entries,
		in:      make(chan Message, incomingBuffer),
		done:    make(chan struct{}),
		log:     log,
	}
	go t.replay()
	return t, nil
}

// Incoming returns the ordered replayed message stream. The channel closes
// when the recording is exhausted.
func (t *PlaybackTransport) Incoming() <-chan Message { return t.in }

// Send discards the message; replay has no upstream.
func (t *PlaybackTransport) Send(m Message) error { return nil }

// Close stops replay.
func (t *PlaybackTransport) Close() error {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	return nil
}

// replay delivers entries with recorded timing, then closes the channel.
func (t *PlaybackTransport) replay() {
	defer close(t.in)

	start := time.Now()
	for i, e := range t.entries {
		if wait := time.Duration(e.OffsetMs)*time.Millisecond - time.Since(start); wait > 0 {
			select {
			case <-time.After(wait):
			case <-t.done:
				return
			}
		}

		msg, err := DecodeMessage(e.Message)
		if err != nil {
			t.log.Debug("skipping undecodable playback entry",
				zap.Int("index", i), zap.Error(err))
			continue
		}
		select {
		case t.in <- msg:
		case <-t.done:
			return
		}
	}
	t.log.Info("playback exhausted", zap.Int("messages", len(t.entries)))
}
