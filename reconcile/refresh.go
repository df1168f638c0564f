// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/votememaybe/models"
)

// Refresh rebuilds the ledger from the stores and replaces it wholesale.
// With a wallet and a contract the contract's proposals are the base and
// votes are read for the first few of them. An empty contract list means
// the contract is unreachable and the database snapshot is used instead.
func (e *Engine) Refresh(ctx context.Context, l Ledger, s Session) error {
	if e.useContract(s) {
		proposals := e.contract.ListProposals(ctx)
		if len(proposals) > 0 {
			l.Replace(Snapshot{
				Proposals: proposals,
				Votes:     e.contractVotes(ctx, proposals),
			})
			slog.Debug("refreshed from contract", "proposals", len(proposals))
			return nil
		}
		slog.Warn("contract returned no proposals, falling back to database")
	}

	snap, err := e.DatabaseSnapshot(ctx)
	if err != nil {
		return err
	}
	l.Replace(snap)
	slog.Debug("refreshed from database", "proposals", len(snap.Proposals), "votes", len(snap.Votes))
	return nil
}

// DatabaseSnapshot reads every proposal and vote from the database
func (e *Engine) DatabaseSnapshot(ctx context.Context) (Snapshot, error) {
	proposals, err := e.db.ListProposals(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load proposals: %w", err)
	}
	votes, err := e.db.ListVotes(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load votes: %w", err)
	}
	return Snapshot{Proposals: proposals, Votes: votes}, nil
}

// contractVotes reads votes for at most voteLimit proposals, keeping the
// proposals' order in the result
func (e *Engine) contractVotes(ctx context.Context, proposals []models.Proposal) []models.Vote {
	n := min(len(proposals), e.voteLimit)
	perProposal := make([][]models.Vote, n)

	var g errgroup.Group
	g.SetLimit(refreshConcurrency)
	for i := range n {
		p := proposals[i]
		g.Go(func() error {
			perProposal[i] = e.contract.VotesForProposal(ctx, p.ID, p.Title)
			return nil
		})
	}
	_ = g.Wait()

	votes := []models.Vote{}
	for _, vs := range perProposal {
		votes = append(votes, vs...)
	}
	return votes
}
