package ledger

import (
	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"

	"github.com/openbid/openbidapi/pkg/core"
)

// GenesisAccount seeds one balance at startup.
type GenesisAccount struct {
	ID      core.AccountID
	Balance int64
}

type genesisFile struct {
	Accounts []struct {
		ID      string `toml:"id"`
		Balance int64  `toml:"balance"`
	} `toml:"accounts"`
}

// LoadGenesisFile reads initial balances from a TOML file:
//
//	[[accounts]]
//	id = "alice"
//	balance = 1000000000
func LoadGenesisFile(path string) ([]GenesisAccount, error) {
	var f genesisFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, errors.Wrap(err, "decode genesis file")
	}
	accounts := make([]GenesisAccount, 0, len(f.Accounts))
	for _, a := range f.Accounts {
		id, err := core.ParseAccountID(a.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "genesis account %q", a.ID)
		}
		accounts = append(accounts, GenesisAccount{ID: id, Balance: a.Balance})
	}
	return accounts, nil
}
