package viser

import "go.uber.org/zap"

// RenderRequest is the server's desired output for an on-demand capture.
type RenderRequest struct {
	Width  int
	Height int
	Format string
}

// RenderRequestController coordinates on-demand frame captures requested by
// the server. Only one request may be outstanding; a new request arriving
// while triggered or in progress overwrites the pending data (latest-wins,
// no queueing).
type RenderRequestController struct {
	state   RenderRequestState
	pending RenderRequest
	armed   bool // a request arrived while paused or busy
	log     *zap.Logger
}

func newRenderRequestController(log *zap.Logger) *RenderRequestController {
	return &RenderRequestController{log: log}
}

// State returns the current state.
func (r *RenderRequestController) State() RenderRequestState { return r.state }

// HandleRequest records an inbound request. In the ready state the machine
// moves to triggered; in any other state the request data replaces whatever
// was pending and is picked up when the machine next becomes eligible.
func (r *RenderRequestController) HandleRequest(req RenderRequest) {
	r.pending = req
	switch r.state {
	case RenderReady:
		r.state = RenderTriggered
	case RenderTriggered, RenderInProgress:
		// Latest wins; state is unchanged.
	case RenderPause:
		r.armed = true
	}
}

// TakePending is called by the frame loop. When a request is triggered it
// moves to in-progress and the request data is returned for capture.
func (r *RenderRequestController) TakePending() (RenderRequest, bool) {
	if r.state != RenderTriggered {
		return RenderRequest{}, false
	}
	r.state = RenderInProgress
	return r.pending, true
}

// Complete is called once the capture result has been sent upstream.
func (r *RenderRequestController) Complete() {
	if r.state != RenderInProgress {
		r.log.Warn("render capture completed outside in_progress",
			zap.Uint8("state", uint8(r.state)))
	}
	r.state = RenderReady
}

// Pause suspends capture from any state (e.g. tab hidden). A request already
// triggered is re-armed and resumes after Resume.
func (r *RenderRequestController) Pause() {
	if r.state == RenderTriggered || r.state == RenderInProgress {
		r.armed = true
	}
	r.state = RenderPause
}

// Resume returns to ready, or straight to triggered when a request arrived
// (or was interrupted) during the pause.
func (r *RenderRequestController) Resume() {
	if r.state != RenderPause {
		return
	}
	if r.armed {
		r.armed = false
		r.state = RenderTriggered
		return
	}
	r.state = RenderReady
}
