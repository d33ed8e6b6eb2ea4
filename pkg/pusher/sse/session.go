package sse

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openbid/openbidapi/pkg/pusher/metrics"
	"github.com/openbid/openbidapi/pkg/pusher/sources"
)

// session represents an HTTP connection from a client and implements a
// loop to stream events from a channel to http.ResponseWriter.
type session struct {
	eventCh      chan Event
	cancel       sources.CancelFn
	pingInterval time.Duration
}

func newSession() *session {
	return &session{
		eventCh:      make(chan Event, 100),
		pingInterval: 5 * time.Second,
	}
}

func (s *session) SendEvent(event Event) {
	select {
	case s.eventCh <- event:
	default:
		// drop the event, the client is too slow
	}
}

func (s *session) SetCancelFn(cancel sources.CancelFn) {
	s.cancel = cancel
}

func (s *session) StreamEvents(ctx context.Context, writer http.ResponseWriter) error {
	defer s.cancel()

	flusher := writer.(http.Flusher)
	for {
		var err error
		select {
		case <-ctx.Done():
			return nil
		case msg, open := <-s.eventCh:
			if !open {
				return nil
			}
			_, err = fmt.Fprintf(writer, "event: %v\nid: %v\ndata: %v\n\n", msg.Name, msg.EventID, string(msg.Data))
			metrics.SseEventSent(msg.Name)
		case <-time.After(s.pingInterval):
			_, err = fmt.Fprintf(writer, "body: heartbeat\n\n")
		}
		if err != nil {
			// closing a connection
			return err
		}
		flusher.Flush()
	}
}
