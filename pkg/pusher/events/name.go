package events

// Name specifies different types of events that the streaming API sends
// to subscribers. Used for accounting purpose.
type Name string

const (
	PingEvent          Name = "ping"
	BidEvent           Name = "bid"
	AuctionClosedEvent Name = "auction-closed"
)

func (n Name) String() string {
	return string(n)
}
