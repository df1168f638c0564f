// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/votememaybe/appstate"
	"github.com/danielhkuo/votememaybe/middleware"
	"github.com/danielhkuo/votememaybe/models"
)

// WalletHandler manages the connected identity and the shared state
type WalletHandler struct {
	state *appstate.Store
}

func NewWalletHandler(state *appstate.Store) *WalletHandler {
	return &WalletHandler{state: state}
}

// Connect handles POST /wallet/connect
func (h *WalletHandler) Connect(w http.ResponseWriter, r *http.Request) {
	user, err := h.state.Connect(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, user)
}

// Disconnect handles POST /wallet/disconnect
func (h *WalletHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.state.Disconnect(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.state.CurrentUser())
}

// GetMe handles GET /me
func (h *WalletHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.state.CurrentUser())
}

// GetMyVotes handles GET /me/votes
func (h *WalletHandler) GetMyVotes(w http.ResponseWriter, r *http.Request) {
	if !h.state.CurrentUser().Connected {
		writeError(w, models.ErrNotConnected)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.state.UserVotes())
}

// Refresh handles POST /refresh
func (h *WalletHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.state.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.state.State())
}
