package sse

import "github.com/openbid/openbidapi/pkg/pusher/events"

// Event is a single server-sent event.
type Event struct {
	Name    events.Name
	EventID int64
	Data    []byte
}
