package viser

import (
	"strings"
	"testing"
	"time"
)

const playbackFixture = `{"offsetMs": 0, "message": {"type": "SceneNodeTransformMessage", "name": "/a", "wxyz": [1, 0, 0, 0], "position": [1, 0, 0]}}
{"offsetMs": 1, "message": {"type": "SceneNodeVisibilityMessage", "name": "/a", "visible": true}}

{"offsetMs": 2, "message": {"type": "ResetSceneMessage"}}
`

func collectPlayback(t *testing.T, pt *PlaybackTransport) []Message {
	t.Helper()
	var got []Message
	timeout := time.After(5 * time.Second)
	for {
		select {
		case m, ok := <-pt.Incoming():
			if !ok {
				return got
			}
			got = append(got, m)
		case <-timeout:
			t.Fatal("playback did not finish")
		}
	}
}

func TestPlaybackReplaysInOrder(t *testing.T) {
	pt, err := NewPlayback(strings.NewReader(playbackFixture), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer pt.Close()

	got := collectPlayback(t, pt)
	if len(got) != 3 {
		t.Fatalf("replayed %d messages, want 3", len(got))
	}
	wantTypes := []string{TypeSceneNodeTransform, TypeSceneNodeVisibility, TypeResetScene}
	for i, m := range got {
		if m.MessageType() != wantTypes[i] {
			t.Errorf("message %d = %s, want %s", i, m.MessageType(), wantTypes[i])
		}
	}
}

func TestPlaybackExhaustionClosesChannel(t *testing.T) {
	pt, err := NewPlayback(strings.NewReader(playbackFixture), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer pt.Close()

	collectPlayback(t, pt)
	// The channel stays closed; receives never block after exhaustion.
	if _, ok := <-pt.Incoming(); ok {
		t.Error("incoming channel delivered after exhaustion")
	}
}

func TestPlaybackSendIsNoop(t *testing.T) {
	pt, err := NewPlayback(strings.NewReader(""), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer pt.Close()
	if err := pt.Send(&ViewerCameraMessage{}); err != nil {
		t.Errorf("Send = %v, want nil during replay", err)
	}
}

func TestPlaybackRejectsMalformedLine(t *testing.T) {
	if _, err := NewPlayback(strings.NewReader(`{"offsetMs": bogus}`), nil); err == nil {
		t.Error("malformed recording must fail to load")
	}
}

func TestPlaybackCloseStopsReplay(t *testing.T) {
	// A long offset would stall replay for a minute; Close must cut it short.
	rec := `{"offsetMs": 60000, "message": {"type": "ResetSceneMessage"}}`
	pt, err := NewPlayback(strings.NewReader(rec), nil)
	if err != nil {
		t.Fatal(err)
	}
	pt.Close()

	select {
	case _, ok := <-pt.Incoming():
		if ok {
			t.Error("message delivered after close")
		}
	case <-time.After(2 * time.Second):
		t.Error("incoming channel not closed after Close")
	}
	// Close is idempotent.
	pt.Close()
}
