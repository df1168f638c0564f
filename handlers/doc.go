// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the VoteMeMaybe API.

# Handler Types

Each handler is a struct holding what it reads from:

  - ProposalHandler: list, fetch, create and end proposals
  - VoteHandler: cast and list votes
  - WalletHandler: connect, disconnect, current identity, refresh
  - AnalyticsHandler: database summaries and raw proposal and vote rows

Handlers are created via constructor functions:

	proposalHandler := handlers.NewProposalHandler(state)
	analyticsHandler := handlers.NewAnalyticsHandler(db)

Proposal, vote and wallet handlers work on the shared appstate.Store, so
reads reflect the last refresh plus any provisional updates. Analytics reads
the database directly.

# Proposal Lifecycle

Proposals start active and end as passed or rejected:

	POST /proposals          → CreateProposal (connected wallet)
	POST /proposals/{id}/votes → CastVote (one per address)
	POST /proposals/{id}/end   → EndProposal (creator only)

# Error Mapping

Operation errors map to statuses:

	models.ErrNotConnected                     401
	models.ErrNotAuthorized                    403
	models.ErrProposalNotFound                 404
	models.ErrDuplicateVote, ErrProposalNotActive 409
	other validation errors                    400
	*reconcile.AttemptError                    502

The response message is the underlying error's message.
*/
package handlers
