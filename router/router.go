// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/votememaybe/appstate"
	"github.com/danielhkuo/votememaybe/handlers"
	"github.com/danielhkuo/votememaybe/middleware"
	"github.com/danielhkuo/votememaybe/store"
)

func NewRouter(state *appstate.Store, db *store.Store) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	proposalHandler := handlers.NewProposalHandler(state)
	voteHandler := handlers.NewVoteHandler(state)
	walletHandler := handlers.NewWalletHandler(state)
	analyticsHandler := handlers.NewAnalyticsHandler(db)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Proposals
	mux.HandleFunc("GET /proposals", middleware.WithLogging(proposalHandler.ListProposals))
	mux.HandleFunc("POST /proposals", middleware.WithLogging(proposalHandler.CreateProposal))
	mux.HandleFunc("GET /proposals/{id}", middleware.WithLogging(proposalHandler.GetProposal))
	mux.HandleFunc("POST /proposals/{id}/end", middleware.WithLogging(proposalHandler.EndProposal))

	// Votes
	mux.HandleFunc("POST /proposals/{id}/votes", middleware.WithLogging(voteHandler.CastVote))
	mux.HandleFunc("GET /proposals/{id}/votes", middleware.WithLogging(voteHandler.ListVotes))

	// Wallet and state
	mux.HandleFunc("POST /wallet/connect", middleware.WithLogging(walletHandler.Connect))
	mux.HandleFunc("POST /wallet/disconnect", middleware.WithLogging(walletHandler.Disconnect))
	mux.HandleFunc("GET /me", middleware.WithLogging(walletHandler.GetMe))
	mux.HandleFunc("GET /me/votes", middleware.WithLogging(walletHandler.GetMyVotes))
	mux.HandleFunc("POST /refresh", middleware.WithLogging(walletHandler.Refresh))

	// Analytics (database only)
	mux.HandleFunc("GET /analytics/stats", middleware.WithLogging(analyticsHandler.GetStats))
	mux.HandleFunc("GET /analytics/distribution", middleware.WithLogging(analyticsHandler.GetDistribution))
	mux.HandleFunc("GET /analytics/activity", middleware.WithLogging(analyticsHandler.GetActivity))
	mux.HandleFunc("GET /analytics/proposals", middleware.WithLogging(analyticsHandler.ListRecords))
	mux.HandleFunc("GET /analytics/proposals/{id}/votes", middleware.WithLogging(analyticsHandler.GetRecordVotes))
	mux.HandleFunc("GET /analytics/voters/{address}/votes", middleware.WithLogging(analyticsHandler.GetVoterVotes))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("votememaybe API v1"))
	})

	return mux
}
