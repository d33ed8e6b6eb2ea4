package sse

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/openbid/openbidapi/pkg/core"
	"github.com/openbid/openbidapi/pkg/pusher/errors"
	"github.com/openbid/openbidapi/pkg/pusher/events"
	"github.com/openbid/openbidapi/pkg/pusher/sources"
)

// Handler handles http methods for sse.
type Handler struct {
	bidSource      sources.BidSource
	currentEventID int64
}

type handlerFunc func(session *session, request *http.Request) error

func NewHandler(bidSource sources.BidSource) *Handler {
	h := Handler{
		bidSource:      bidSource,
		currentEventID: time.Now().UnixNano(),
	}
	return &h
}

func parseAuctionsQuery(auctionsStr string) (*sources.SubscribeToBidsOptions, error) {
	if strings.ToUpper(auctionsStr) == "ALL" {
		return &sources.SubscribeToBidsOptions{AllAuctions: true}, nil
	}
	auctionStrings := strings.Split(auctionsStr, ",")
	auctions := make([]core.AuctionID, 0, len(auctionStrings))
	for _, s := range auctionStrings {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, core.AuctionID(id))
	}
	return &sources.SubscribeToBidsOptions{Auctions: auctions}, nil
}

// SubscribeToBids streams accepted bids and auction closings. The
// "auctions" query parameter is either "ALL" or a comma-separated list
// of auction ids.
func (h *Handler) SubscribeToBids(session *session, request *http.Request) error {
	if h.bidSource == nil {
		return errors.BadRequest("bid source is not configured")
	}
	options, err := parseAuctionsQuery(request.URL.Query().Get("auctions"))
	if err != nil {
		return errors.BadRequest(fmt.Sprintf("failed to parse 'auctions' parameter in query: %v", err))
	}
	cancelFn := h.bidSource.SubscribeToBids(request.Context(), func(eventName events.Name, data []byte) {
		event := Event{
			Name:    eventName,
			EventID: h.nextID(),
			Data:    data,
		}
		session.SendEvent(event)
	}, *options)
	session.SetCancelFn(cancelFn)
	return nil
}

func (h *Handler) nextID() int64 {
	return atomic.AddInt64(&h.currentEventID, 1)
}
