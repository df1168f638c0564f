// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the VoteMeMaybe API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(state, db)

# Endpoints

Health:

	GET /health

Proposals:

	GET  /proposals[?status=]   - List proposals
	POST /proposals             - Create proposal
	GET  /proposals/{id}        - Get one proposal
	POST /proposals/{id}/end    - Mark passed or rejected (creator only)

Votes:

	POST /proposals/{id}/votes  - Cast approve or reject
	GET  /proposals/{id}/votes  - Votes on a proposal

Wallet and state:

	POST /wallet/connect        - Connect the configured wallet
	POST /wallet/disconnect     - Forget the identity
	GET  /me                    - Current identity
	GET  /me/votes              - Current identity's votes
	POST /refresh               - Reload state from the stores

Analytics (database only):

	GET /analytics/stats
	GET /analytics/distribution
	GET /analytics/activity
	GET /analytics/proposals[?status=]       - Database proposal rows
	GET /analytics/proposals/{id}/votes      - Database votes on a proposal
	GET /analytics/voters/{address}/votes    - Database votes by an address

# Handler Initialization

The router creates handler instances with dependency injection:

	proposalHandler := handlers.NewProposalHandler(state)
	voteHandler := handlers.NewVoteHandler(state)
	walletHandler := handlers.NewWalletHandler(state)
	analyticsHandler := handlers.NewAnalyticsHandler(db)
*/
package router
