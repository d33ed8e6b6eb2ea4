package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/openbid/openbidapi/pkg/core"
)

func auctionIDFromRequest(r *http.Request) (core.AuctionID, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, err
	}
	return core.AuctionID(id), nil
}

func (h *Handler) CreateAuction(w http.ResponseWriter, r *http.Request) {
	var req CreateAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	seller, err := core.ParseAccountID(req.Caller)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, err := h.registry.CreateAuction(
		core.AssetID(req.AssetID),
		time.Duration(req.DurationSeconds)*time.Second,
		req.MinIncrement,
		seller,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateAuctionResponse{AuctionID: int64(id)})
}

func (h *Handler) GetAuction(w http.ResponseWriter, r *http.Request) {
	id, err := auctionIDFromRequest(r)
	if err != nil {
		writeBadRequest(w, "invalid auction id")
		return
	}
	if a, ok := h.closedCache.Get(id); ok {
		res := convertAuction(a)
		writeJSON(w, http.StatusOK, res)
		return
	}
	a, err := h.registry.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !a.Active {
		h.closedCache.Set(id, a)
	}
	res := convertAuction(a)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetAllAuctions(w http.ResponseWriter, r *http.Request) {
	var res Auctions
	for _, a := range h.registry.All() {
		res.Data = append(res.Data, convertAuction(a))
	}
	res.Total = int64(len(res.Data))
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	id, err := auctionIDFromRequest(r)
	if err != nil {
		writeBadRequest(w, "invalid auction id")
		return
	}
	var req PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	bidder, err := core.ParseAccountID(req.Bidder)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.engine.PlaceBid(r.Context(), id, bidder, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	a, err := h.registry.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	res := convertAuction(a)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) EndAuction(w http.ResponseWriter, r *http.Request) {
	id, err := auctionIDFromRequest(r)
	if err != nil {
		writeBadRequest(w, "invalid auction id")
		return
	}
	var req EndAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	caller, err := core.ParseAccountID(req.Caller)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.engine.EndAuction(r.Context(), id, caller); err != nil {
		writeError(w, err)
		return
	}
	a, err := h.registry.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	res := convertAuction(a)
	writeJSON(w, http.StatusOK, res)
}
