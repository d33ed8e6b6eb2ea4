package core

import "time"

// AssetID identifies the unique digital asset being auctioned. The core
// never inspects it and never checks provenance; it only moves it between
// owners at settlement.
type AssetID int64

// AuctionID is allocated by the registry. IDs grow monotonically and are
// never reused, even for auctions that closed long ago.
type AuctionID int64

// Auction is the ledger record governing competitive bidding for one asset.
// While Active is true, HighestBid equals exactly the amount held in the
// auction's escrow on behalf of HighestBidder. Once Active flips to false
// the record becomes an immutable piece of history.
type Auction struct {
	ID            AuctionID
	AssetID       AssetID
	Seller        AccountID
	EndTime       time.Time
	MinIncrement  int64
	HighestBid    int64
	HighestBidder *AccountID
	Active        bool
}

// HasBid reports whether at least one bid has been accepted.
func (a Auction) HasBid() bool {
	return a.HighestBidder != nil
}
