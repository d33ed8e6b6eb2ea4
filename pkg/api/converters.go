package api

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/openbid/openbidapi/pkg/core"
)

// FormatAmount represents the given amount of base units in whole tokens
// and formats it according to the english locale (#,###.##).
func FormatAmount(amount int64) string {
	p := message.NewPrinter(language.English)
	x := decimal.New(amount, -9)
	intPart := p.Sprintf("%v", x.IntPart())
	if x.Equal(decimal.New(x.IntPart(), 0)) {
		return intPart
	}
	parts := strings.Split(x.String(), ".")
	if len(parts) != 2 {
		return intPart
	}
	return intPart + "." + parts[1]
}

func convertAuction(a core.Auction) Auction {
	res := Auction{
		ID:               int64(a.ID),
		AssetID:          int64(a.AssetID),
		Seller:           a.Seller.String(),
		EndTime:          a.EndTime.Unix(),
		MinIncrement:     a.MinIncrement,
		HighestBid:       a.HighestBid,
		HighestBidAmount: FormatAmount(a.HighestBid),
		Active:           a.Active,
	}
	if a.HighestBidder != nil {
		bidder := a.HighestBidder.String()
		res.HighestBidder = &bidder
	}
	return res
}
