package core

// BidEvent is published to feed subscribers every time a bid is accepted.
type BidEvent struct {
	AuctionID AuctionID `json:"auction_id"`
	Bidder    AccountID `json:"bidder"`
	Amount    int64     `json:"amount"`
	// RefundParked is set when the displaced bidder's refund could not be
	// delivered and was parked as a pending withdrawal instead.
	RefundParked bool `json:"refund_parked,omitempty"`
}

// AuctionClosedEvent is published once per auction when settlement finishes.
type AuctionClosedEvent struct {
	AuctionID AuctionID  `json:"auction_id"`
	AssetID   AssetID    `json:"asset_id"`
	Winner    *AccountID `json:"winner,omitempty"`
	Proceeds  int64      `json:"proceeds"`
}
