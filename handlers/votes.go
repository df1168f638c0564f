// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/votememaybe/appstate"
	"github.com/danielhkuo/votememaybe/middleware"
	"github.com/danielhkuo/votememaybe/models"
)

type VoteHandler struct {
	state *appstate.Store
}

func NewVoteHandler(state *appstate.Store) *VoteHandler {
	return &VoteHandler{state: state}
}

// CastVote handles POST /proposals/{id}/votes
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")

	var req models.CastVoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.state.Vote(r.Context(), proposalID, req.VoteType)
	if err != nil {
		writeError(w, err)
		return
	}

	message := "vote recorded"
	switch {
	case !out.DatabaseOK:
		message = "vote recorded on contract only"
	case out.ContractErr != nil:
		message = "vote recorded in database only"
	}
	slog.Info("vote cast", "proposal_id", proposalID, "trace", out.String())

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		VoteID:  out.ID,
		Message: message,
	})
}

// ListVotes handles GET /proposals/{id}/votes
func (h *VoteHandler) ListVotes(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")
	if _, ok := h.state.Proposal(proposalID); !ok {
		writeError(w, models.ErrProposalNotFound)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.state.VotesForProposal(proposalID))
}
