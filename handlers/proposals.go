// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/votememaybe/appstate"
	"github.com/danielhkuo/votememaybe/middleware"
	"github.com/danielhkuo/votememaybe/models"
)

type ProposalHandler struct {
	state *appstate.Store
}

func NewProposalHandler(state *appstate.Store) *ProposalHandler {
	return &ProposalHandler{state: state}
}

// ListProposals handles GET /proposals?status=
func (h *ProposalHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		middleware.JSONResponse(w, http.StatusOK, h.state.Proposals())
		return
	}

	proposals, err := h.state.ProposalsByStatus(status)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, proposals)
}

// GetProposal handles GET /proposals/{id}
func (h *ProposalHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	p, ok := h.state.Proposal(r.PathValue("id"))
	if !ok {
		writeError(w, models.ErrProposalNotFound)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, p)
}

// CreateProposal handles POST /proposals
func (h *ProposalHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProposalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.state.CreateProposal(r.Context(), req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := models.CreateProposalResponse{
		ProposalID: out.ID,
		ContractID: out.ContractID,
	}
	if out.DatabaseOK {
		resp.DatabaseID = out.ID
	}
	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// EndProposal handles POST /proposals/{id}/end
func (h *ProposalHandler) EndProposal(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")

	var req models.EndProposalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := h.state.EndProposal(r.Context(), proposalID, req.Status); err != nil {
		writeError(w, err)
		return
	}

	p, ok := h.state.Proposal(proposalID)
	if !ok {
		// Ended, but the refresh no longer lists it under this ID
		middleware.JSONResponse(w, http.StatusOK, models.Proposal{ID: proposalID, Status: req.Status})
		return
	}
	middleware.JSONResponse(w, http.StatusOK, p)
}
