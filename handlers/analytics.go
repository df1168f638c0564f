// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/votememaybe/middleware"
	"github.com/danielhkuo/votememaybe/models"
	"github.com/danielhkuo/votememaybe/store"
)

// AnalyticsHandler serves summaries straight from the database
type AnalyticsHandler struct {
	db *store.Store
}

func NewAnalyticsHandler(db *store.Store) *AnalyticsHandler {
	return &AnalyticsHandler{db: db}
}

// GetStats handles GET /analytics/stats
func (h *AnalyticsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.Stats(r.Context())
	if err != nil {
		slog.Error("failed to compute stats", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, stats)
}

// GetDistribution handles GET /analytics/distribution
func (h *AnalyticsHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	entries, err := h.db.VoteDistribution(r.Context())
	if err != nil {
		slog.Error("failed to compute vote distribution", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute vote distribution")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, entries)
}

// GetActivity handles GET /analytics/activity
func (h *AnalyticsHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := h.db.VoteActivity(r.Context())
	if err != nil {
		slog.Error("failed to compute vote activity", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute vote activity")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, entries)
}

// ListRecords handles GET /analytics/proposals[?status=], the database's own
// proposal rows without the contract view merged in
func (h *AnalyticsHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	var (
		proposals []models.Proposal
		err       error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		proposals, err = h.db.ProposalsByStatus(r.Context(), status)
	} else {
		proposals, err = h.db.ListProposals(r.Context())
	}
	if errors.Is(err, models.ErrInvalidStatus) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to list proposal records", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list proposals")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, proposals)
}

// GetRecordVotes handles GET /analytics/proposals/{id}/votes
func (h *AnalyticsHandler) GetRecordVotes(w http.ResponseWriter, r *http.Request) {
	votes, err := h.db.VotesByProposal(r.Context(), r.PathValue("id"))
	if err != nil {
		slog.Error("failed to list proposal votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list votes")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, votes)
}

// GetVoterVotes handles GET /analytics/voters/{address}/votes
func (h *AnalyticsHandler) GetVoterVotes(w http.ResponseWriter, r *http.Request) {
	votes, err := h.db.VotesByVoter(r.Context(), r.PathValue("address"))
	if err != nil {
		slog.Error("failed to list voter votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list votes")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, votes)
}
