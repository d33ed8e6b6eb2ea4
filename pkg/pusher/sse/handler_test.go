package sse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openbid/openbidapi/pkg/core"
	"github.com/openbid/openbidapi/pkg/pusher/sources"
)

func TestParseAuctionsQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    *sources.SubscribeToBidsOptions
		wantErr bool
	}{
		{
			name:  "all auctions",
			query: "ALL",
			want:  &sources.SubscribeToBidsOptions{AllAuctions: true},
		},
		{
			name:  "all auctions lowercase",
			query: "all",
			want:  &sources.SubscribeToBidsOptions{AllAuctions: true},
		},
		{
			name:  "list of ids",
			query: "1,2,42",
			want:  &sources.SubscribeToBidsOptions{Auctions: []core.AuctionID{1, 2, 42}},
		},
		{
			name:    "garbage",
			query:   "1,x",
			wantErr: true,
		},
		{
			name:    "empty",
			query:   "",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseAuctionsQuery(tt.query)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, opts)
		})
	}
}
