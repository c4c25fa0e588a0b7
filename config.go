package viser

import (
	"fmt"
	"net/url"
	"strings"
)

// Query parameter names for startup transport selection.
const (
	paramWebsocket = "websocket"
	paramPlayback  = "playbackPath"
)

// Config selects the transport source at startup. Exactly one of
// ServerAddress and PlaybackPath is set.
type Config struct {
	ServerAddress string
	PlaybackPath  string
}

// ParseConfig derives the transport configuration from the viewer page URL.
// A playbackPath parameter selects recorded replay; otherwise the websocket
// parameter (first value when repeated) selects the server, falling back to
// the default address derived from the page URL itself.
func ParseConfig(pageURL string) (Config, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Config{}, fmt.Errorf("parse page url: %w", err)
	}
	q := u.Query()

	if paths := q[paramPlayback]; len(paths) > 0 && paths[0] != "" {
		return Config{PlaybackPath: paths[0]}, nil
	}
	if addrs := q[paramWebsocket]; len(addrs) > 0 && addrs[0] != "" {
		return Config{ServerAddress: addrs[0]}, nil
	}

	addr, err := defaultServerAddress(u)
	if err != nil {
		return Config{}, err
	}
	return Config{ServerAddress: addr}, nil
}

// defaultServerAddress derives the websocket address from the page URL:
// http becomes ws, https becomes wss, the query string is stripped, and a
// single trailing slash is removed.
func defaultServerAddress(u *url.URL) (string, error) {
	derived := *u
	switch derived.Scheme {
	case "http":
		derived.Scheme = "ws"
	case "https":
		derived.Scheme = "wss"
	case "ws", "wss":
		// Already a websocket address.
	default:
		return "", fmt.Errorf("cannot derive server address from scheme %q", u.Scheme)
	}
	derived.RawQuery = ""
	derived.Fragment = ""
	s := derived.String()
	s = strings.TrimSuffix(s, "/")
	return s, nil
}
