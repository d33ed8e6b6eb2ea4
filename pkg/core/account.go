package core

import (
	"fmt"
	"strings"
)

// AccountID identifies a participant on the value ledger. The core treats
// it as an opaque token: two equal AccountIDs refer to the same account,
// nothing else is assumed.
type AccountID string

// ParseAccountID validates the external representation of an account.
func ParseAccountID(s string) (AccountID, error) {
	if len(s) == 0 {
		return "", fmt.Errorf("empty account id")
	}
	if len(s) > 128 {
		return "", fmt.Errorf("account id too long: %d chars", len(s))
	}
	if strings.ContainsAny(s, " \t\n\r,") {
		return "", fmt.Errorf("invalid account id %q", s)
	}
	return AccountID(s), nil
}

func MustParseAccountID(s string) AccountID {
	id, err := ParseAccountID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (a AccountID) String() string {
	return string(a)
}
