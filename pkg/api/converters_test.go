package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openbid/openbidapi/pkg/core"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{amount: 0, want: "0"},
		{amount: 1_000_000_000, want: "1"},
		{amount: 1_500_000_000, want: "1.5"},
		{amount: 1_234_000_000_000, want: "1,234"},
		{amount: 1_234_500_000_001, want: "1,234.500000001"},
		{amount: 1, want: "0.000000001"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, FormatAmount(tt.amount))
		})
	}
}

func TestConvertAuction(t *testing.T) {
	bidder := core.MustParseAccountID("bidder1")
	a := core.Auction{
		ID:            3,
		AssetID:       9,
		Seller:        core.MustParseAccountID("seller"),
		EndTime:       time.Unix(1_700_000_100, 0),
		MinIncrement:  10,
		HighestBid:    2_500_000_000,
		HighestBidder: &bidder,
		Active:        true,
	}
	res := convertAuction(a)
	require.Equal(t, int64(3), res.ID)
	require.Equal(t, int64(9), res.AssetID)
	require.Equal(t, "seller", res.Seller)
	require.Equal(t, int64(1_700_000_100), res.EndTime)
	require.Equal(t, int64(2_500_000_000), res.HighestBid)
	require.Equal(t, "2.5", res.HighestBidAmount)
	require.NotNil(t, res.HighestBidder)
	require.Equal(t, "bidder1", *res.HighestBidder)
	require.True(t, res.Active)

	a.HighestBidder = nil
	a.HighestBid = 0
	res = convertAuction(a)
	require.Nil(t, res.HighestBidder)
	require.Equal(t, "0", res.HighestBidAmount)
}
