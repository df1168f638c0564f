// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the database side of the service. It keeps proposals and
votes in PostgreSQL or SQLite through database/sql.

# Usage

	conn, _ := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	s := store.New(conn)

	id, err := s.CreateProposal(ctx, "Fund the park", "", creator)
	voteID, err := s.CastVote(ctx, id, voter, models.VoteApprove)

# Casting Votes

CastVote runs in one transaction and checks, in order:

 1. the lowercase voter has not voted on the proposal (models.ErrDuplicateVote)
 2. the vote type is approve or reject (models.ErrInvalidVoteType)
 3. the proposal exists (models.ErrProposalNotFound)
 4. the proposal is active (models.ErrProposalNotActive)

It then inserts the vote and increments approve_count and vote_count, or
reject_count, plus total_votes. The unique index on (proposal_id,
voter_address) backs the first check; a concurrent insert that trips it is
reported as models.ErrDuplicateVote.

# Legacy Rows

Rows from older deployments may lack status and every counter except
vote_count. Reads normalize them:

	approveCount = approve_count, else vote_count, else 0
	voteCount    = vote_count, else approveCount
	totalVotes   = total_votes, else approveCount+rejectCount
	status       = status if known, else active

The first vote on such a row writes the normalized counters back.

# Identifiers

Record IDs are random UUIDs. IsNativeID recognises them so callers can tell
database IDs from contract-side ones.

# Analytics

Stats, VoteDistribution and VoteActivity summarise the tables for the
analytics endpoints. Timestamps are fixed-width UTC text, so grouping by the
first ten characters groups by day.
*/
package store
