// Package viser is a real-time client that keeps a local 3D scene, camera,
// and GUI state synchronized with a remote server over a persistent message
// channel, and translates 2D pointer input into spatial queries sent back to
// that server.
//
// The rendering engine, windowing toolkit, and GUI panel are external
// collaborators reached through small capability interfaces; the ebitenview
// subpackage provides an [Ebitengine] implementation.
//
// # Quick start
//
//	cfg, _ := viser.ParseConfig("http://localhost:8080/?websocket=ws://localhost:8080")
//	t, err := viser.Dial(ctx, cfg.ServerAddress, log)
//	if err != nil { ... }
//	client := viser.NewClient(t, viser.Options{Logger: log})
//
// Drive the client from your frame loop:
//
//	func (g *Game) Update() error {
//		client.Update()          // drain messages, advance animations
//		view := client.View()    // pull the current frame
//		// ... hand view to the renderer ...
//		return nil
//	}
//
// # Concurrency
//
// The client is cooperative and single-writer: Update, View, pointer events,
// and injection must all happen on one goroutine. The transports run their
// own readers and hand messages over on an ordered channel.
//
// # Recorded sessions
//
// Instead of a live connection, [OpenPlayback] replays a recorded session
// file with its original timing; exhaustion is a normal stop, not an error.
//
// [Ebitengine]: https://ebitengine.org
package viser
