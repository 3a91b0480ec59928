package handler

import (
	"net/http"

	"github.com/edvin/configurator/internal/api/request"
	"github.com/edvin/configurator/internal/api/response"
	"github.com/edvin/configurator/internal/core"
)

type Wallet struct {
	svc *core.WalletService
}

func NewWallet(svc *core.WalletService) *Wallet {
	return &Wallet{svc: svc}
}

// Get godoc
//
//	@Summary	Wallet balance
//	@Tags		Wallet
//	@Produce	json
//	@Success	200	{object}	model.Wallet
//	@Router		/wallet [get]
func (h *Wallet) Get(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.svc.Balance(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, wallet)
}

// TopUp godoc
//
//	@Summary	Add funds to the wallet
//	@Tags		Wallet
//	@Accept		json
//	@Produce	json
//	@Param		body	body		request.TopUp	true	"Amount"
//	@Success	200		{object}	model.Wallet
//	@Failure	422		{object}	response.IssuesResponse
//	@Router		/wallet/top-up [post]
func (h *Wallet) TopUp(w http.ResponseWriter, r *http.Request) {
	var req request.TopUp
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	wallet, err := h.svc.TopUp(r.Context(), req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, wallet)
}
