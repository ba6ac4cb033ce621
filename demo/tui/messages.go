package tui

import "tickerbrief/types"

// Messages for the tea program (SSE-driven)

// EventMsg wraps one progress event from the research stream.
type EventMsg struct {
	Event types.StreamEvent
}

// StreamClosedMsg is sent when the SSE connection ends.
type StreamClosedMsg struct{}

// StreamErrorMsg is sent when the connection or protocol fails.
type StreamErrorMsg struct {
	Err error
}
