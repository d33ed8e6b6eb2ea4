package websocket

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/openbid/openbidapi/pkg/core"
	"github.com/openbid/openbidapi/pkg/pusher/events"
	"github.com/openbid/openbidapi/pkg/pusher/metrics"
	"github.com/openbid/openbidapi/pkg/pusher/sources"
)

const subscriptionLimit = 10000 // limitation of subscriptions by connection

// session is a light-weight implementation of JSON-RPC protocol over an
// HTTP connection from a client.
type session struct {
	logger          *zap.Logger
	conn            *websocket.Conn
	bidSource       sources.BidSource
	eventCh         chan event
	subscriptions   map[core.AuctionID]sources.CancelFn
	allSubscription sources.CancelFn
	pingInterval    time.Duration
}

type event struct {
	Name   events.Name
	Method string
	Params []byte
}

func newSession(logger *zap.Logger, bidSource sources.BidSource, conn *websocket.Conn) *session {
	return &session{
		logger:        logger,
		eventCh:       make(chan event, 1000),
		conn:          conn,
		bidSource:     bidSource,
		subscriptions: map[core.AuctionID]sources.CancelFn{},
		pingInterval:  5 * time.Second,
	}
}

func (s *session) cancel() {
	for _, cancelFn := range s.subscriptions {
		cancelFn()
	}
	if s.allSubscription != nil {
		s.allSubscription()
	}
}

func (s *session) Run(ctx context.Context) chan JsonRPCRequest {
	requestCh := make(chan JsonRPCRequest)
	go func() {
		defer s.cancel()

		for {
			var err error
			select {
			case <-ctx.Done():
				return
			case e := <-s.eventCh:
				response := JsonRPCResponse{
					JSONRPC: "2.0",
					Method:  e.Method,
					Params:  e.Params,
				}
				metrics.WebsocketEventSent(e.Name)
				err = s.conn.WriteJSON(response)
			case request := <-requestCh:
				var response string
				switch request.Method {
				case "subscribe_bids":
					response = s.subscribeToBids(ctx, request.Params)
				case "unsubscribe_bids":
					response = s.unsubscribeFromBids(request.Params)
				default:
					response = fmt.Sprintf("unknown method '%v'", request.Method)
				}
				err = s.conn.WriteJSON(JsonRPCResponse{
					ID:      request.ID,
					JSONRPC: "2.0",
					Method:  request.Method,
					Result:  response,
				})
			case <-time.After(s.pingInterval):
				metrics.WebsocketEventSent(events.PingEvent)
				err = s.conn.WriteMessage(websocket.PingMessage, []byte{})
			}
			if err != nil {
				s.logger.Info("websocket session failed", zap.Error(err))
				return
			}
		}
	}()
	return requestCh
}

func (s *session) sendEvent(e event) {
	select {
	case s.eventCh <- e:
	default:
		s.logger.Warn("event channel is full, dropping event",
			zap.String("event", string(e.Name)))
	}
}

func (s *session) deliveryFn(method string) sources.DeliveryFn {
	return func(eventName events.Name, eventData []byte) {
		s.sendEvent(event{Name: eventName, Method: method, Params: eventData})
	}
}

func (s *session) subscribeToBids(ctx context.Context, params []string) string {
	if len(params) == 1 && strings.ToUpper(params[0]) == "ALL" {
		if s.allSubscription != nil {
			return "already subscribed to all auctions"
		}
		s.allSubscription = s.bidSource.SubscribeToBids(ctx, s.deliveryFn("bid"), sources.SubscribeToBidsOptions{AllAuctions: true})
		return "success! subscribed to all auctions"
	}
	counter := 0
	for _, param := range params {
		id, err := strconv.ParseInt(param, 10, 64)
		if err != nil {
			return fmt.Sprintf("failed to parse auction id '%v'", param)
		}
		auctionID := core.AuctionID(id)
		if _, ok := s.subscriptions[auctionID]; ok {
			continue
		}
		if len(s.subscriptions) >= subscriptionLimit {
			return fmt.Sprintf("you have reached the limit of %v subscriptions", subscriptionLimit)
		}
		cancel := s.bidSource.SubscribeToBids(ctx, s.deliveryFn("bid"), sources.SubscribeToBidsOptions{Auctions: []core.AuctionID{auctionID}})
		s.subscriptions[auctionID] = cancel
		counter += 1
	}
	return fmt.Sprintf("success! %v new subscriptions created", counter)
}

func (s *session) unsubscribeFromBids(params []string) string {
	if len(params) == 1 && strings.ToUpper(params[0]) == "ALL" && s.allSubscription != nil {
		s.allSubscription()
		s.allSubscription = nil
		return "success! unsubscribed from all auctions"
	}
	counter := 0
	for _, param := range params {
		id, err := strconv.ParseInt(param, 10, 64)
		if err != nil {
			return fmt.Sprintf("failed to parse auction id '%v'", param)
		}
		auctionID := core.AuctionID(id)
		if cancel, ok := s.subscriptions[auctionID]; ok {
			cancel()
			delete(s.subscriptions, auctionID)
			counter += 1
		}
	}
	return fmt.Sprintf("success! %v subscriptions removed", counter)
}
