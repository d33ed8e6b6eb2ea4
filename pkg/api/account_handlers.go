package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/openbid/openbidapi/pkg/core"
)

func accountIDFromRequest(r *http.Request) (core.AccountID, error) {
	return core.ParseAccountID(mux.Vars(r)["id"])
}

// GetUserAssets returns the assets credited to an account by settlement.
// Accounts without wins get an empty list, never an error.
func (h *Handler) GetUserAssets(w http.ResponseWriter, r *http.Request) {
	holder, err := accountIDFromRequest(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	assets := h.engine.Owners().AssetsOf(holder)
	res := Assets{Data: make([]int64, 0, len(assets))}
	for _, a := range assets {
		res.Data = append(res.Data, int64(a))
	}
	res.Total = int64(len(res.Data))
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDFromRequest(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	balance, pending := h.ledger.Balance(id)
	writeJSON(w, http.StatusOK, Balance{
		Balance:       balance,
		BalanceAmount: FormatAmount(balance),
		Pending:       pending,
	})
}

// ClaimWithdrawal moves a parked refund back into the caller's spendable
// balance.
func (h *Handler) ClaimWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDFromRequest(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	claimed, err := h.ledger.ClaimWithdrawal(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClaimWithdrawalResponse{Claimed: claimed})
}
