package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openbid/openbidapi/pkg/core"
)

type errorJSON struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// errorStatus maps every domain failure kind to a stable status and code.
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{core.ErrAuctionNotFound, http.StatusNotFound, "AUCTION_NOT_FOUND"},
	{core.ErrInvalidDuration, http.StatusBadRequest, "INVALID_DURATION"},
	{core.ErrInvalidIncrement, http.StatusBadRequest, "INVALID_INCREMENT"},
	{core.ErrBidTooLow, http.StatusBadRequest, "BID_TOO_LOW"},
	{core.ErrAuctionEnded, http.StatusBadRequest, "AUCTION_ENDED"},
	{core.ErrAuctionStillGoing, http.StatusBadRequest, "AUCTION_STILL_ONGOING"},
	{core.ErrAlreadyEnded, http.StatusConflict, "ALREADY_ENDED"},
	{core.ErrInsufficientFunds, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS"},
	{core.ErrRefundFailed, http.StatusInternalServerError, "REFUND_FAILED"},
	{core.ErrNothingToWithdraw, http.StatusNotFound, "NOTHING_TO_WITHDRAW"},
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			w.WriteHeader(m.status)
			json.NewEncoder(w).Encode(errorJSON{Error: m.err.Error(), Code: m.code})
			return
		}
	}
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(errorJSON{Error: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(errorJSON{Error: msg, Code: "BAD_REQUEST"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
