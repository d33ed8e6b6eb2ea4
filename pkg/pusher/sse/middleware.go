package sse

import (
	"net/http"

	"github.com/openbid/openbidapi/pkg/pusher/errors"
	"github.com/openbid/openbidapi/pkg/pusher/metrics"
)

func writeError(writer http.ResponseWriter, err error) {
	if httpErr, ok := errors.AsHTTPError(err); ok {
		writer.WriteHeader(httpErr.Code)
		writer.Write([]byte(httpErr.Message))
		return
	}
	writer.WriteHeader(http.StatusInternalServerError)
	writer.Write([]byte(err.Error()))
}

// Stream wraps a subscription handler into an http.Handler that holds the
// connection open and streams events until the client goes away.
func Stream(handler handlerFunc) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, ok := writer.(http.Flusher)
		if !ok {
			writeError(writer, errors.InternalServerError("streaming unsupported"))
			return
		}

		writer.Header().Set("Content-Type", "text/event-stream")
		writer.Header().Set("Cache-Control", "no-cache")
		writer.Header().Set("Connection", "keep-alive")
		writer.Header().Set("Transfer-Encoding", "chunked")

		metrics.OpenSseConnection()
		defer metrics.CloseSseConnection()

		session := newSession()
		if err := handler(session, request); err != nil {
			writeError(writer, err)
			return
		}
		if err := session.StreamEvents(request.Context(), writer); err != nil {
			writeError(writer, err)
			return
		}
	})
}
