package api

// Auction is the wire representation of one auction snapshot.
type Auction struct {
	ID               int64   `json:"id"`
	AssetID          int64   `json:"asset_id"`
	Seller           string  `json:"seller"`
	EndTime          int64   `json:"end_time"`
	MinIncrement     int64   `json:"min_increment"`
	HighestBid       int64   `json:"highest_bid"`
	HighestBidAmount string  `json:"highest_bid_amount"`
	HighestBidder    *string `json:"highest_bidder,omitempty"`
	Active           bool    `json:"active"`
}

type Auctions struct {
	Data  []Auction `json:"data"`
	Total int64     `json:"total"`
}

type Assets struct {
	Data  []int64 `json:"data"`
	Total int64   `json:"total"`
}

type Balance struct {
	Balance       int64  `json:"balance"`
	BalanceAmount string `json:"balance_amount"`
	Pending       int64  `json:"pending"`
}

type CreateAuctionRequest struct {
	AssetID         int64  `json:"asset_id"`
	DurationSeconds int64  `json:"duration_seconds"`
	MinIncrement    int64  `json:"min_increment"`
	Caller          string `json:"caller"`
}

type CreateAuctionResponse struct {
	AuctionID int64 `json:"auction_id"`
}

type PlaceBidRequest struct {
	Bidder string `json:"bidder"`
	Amount int64  `json:"amount"`
}

type EndAuctionRequest struct {
	Caller string `json:"caller"`
}

type ClaimWithdrawalResponse struct {
	Claimed int64 `json:"claimed"`
}
