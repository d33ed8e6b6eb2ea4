package auction

import (
	"hash/maphash"

	"github.com/openbid/openbidapi/pkg/core"
)

func hashAccountID(seed maphash.Seed, s core.AccountID) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	h.WriteString(s.String())
	return h.Sum64()
}
