package auction

import (
	"sort"
	"sync"

	"github.com/puzpuzpuz/xsync/v2"

	"github.com/openbid/openbidapi/pkg/core"
)

// OwnershipIndex maps holders to the assets they won at settlement. The
// index only ever grows: the core credits assets to winners and never
// removes anything from a seller's set, provenance before auction start
// is outside its contract.
type OwnershipIndex struct {
	holders *xsync.MapOf[core.AccountID, *holderAssets]
}

type holderAssets struct {
	mu     sync.Mutex
	assets map[core.AssetID]struct{}
}

func NewOwnershipIndex() *OwnershipIndex {
	return &OwnershipIndex{
		holders: xsync.NewTypedMapOf[core.AccountID, *holderAssets](hashAccountID),
	}
}

// AssetsOf returns the assets credited to holder, sorted for stable
// output. Unknown holders get an empty slice, never an error.
func (idx *OwnershipIndex) AssetsOf(holder core.AccountID) []core.AssetID {
	h, ok := idx.holders.Load(holder)
	if !ok {
		return []core.AssetID{}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	assets := make([]core.AssetID, 0, len(h.assets))
	for id := range h.assets {
		assets = append(assets, id)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i] < assets[j] })
	return assets
}

// credit adds an asset to the holder's set. Idempotent; called only by
// the settlement engine when an auction closes with a winner.
func (idx *OwnershipIndex) credit(holder core.AccountID, asset core.AssetID) {
	h, _ := idx.holders.LoadOrCompute(holder, func() *holderAssets {
		return &holderAssets{assets: map[core.AssetID]struct{}{}}
	})
	h.mu.Lock()
	h.assets[asset] = struct{}{}
	h.mu.Unlock()
}
