// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/votememaybe/auth"
	"github.com/danielhkuo/votememaybe/models"
)

// CastVote records one vote and bumps the proposal's counters in a single
// transaction. Checks run in order: duplicate vote, vote type, proposal
// exists, proposal active.
func (s *Store) CastVote(ctx context.Context, proposalID, voterAddress, voteType string) (string, error) {
	voter := auth.NormalizeAddress(voterAddress)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM votes WHERE proposal_id = $1 AND voter_address = $2
	`, proposalID, voter).Scan(&existing)
	if err == nil {
		return "", models.ErrDuplicateVote
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to check existing vote: %w", err)
	}

	if !models.ValidVoteType(voteType) {
		return "", models.ErrInvalidVoteType
	}

	var status sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM proposals WHERE id = $1
	`, proposalID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrProposalNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query proposal: %w", err)
	}
	if status.Valid && models.ValidStatus(status.String) && status.String != models.StatusActive {
		return "", models.ErrProposalNotActive
	}

	voteID, err := auth.GenerateID()
	if err != nil {
		return "", err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO votes (id, proposal_id, voter_address, vote_type, voted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, voteID, proposalID, voter, voteType, s.timestamp())
	if err != nil {
		if isUniqueViolation(err) {
			return "", models.ErrDuplicateVote
		}
		return "", fmt.Errorf("failed to insert vote: %w", err)
	}

	// Legacy rows are brought to explicit counters on their first vote
	update := `
		UPDATE proposals SET
			approve_count = COALESCE(approve_count, vote_count, 0) + 1,
			vote_count = COALESCE(vote_count, approve_count, 0) + 1,
			reject_count = COALESCE(reject_count, 0),
			total_votes = COALESCE(total_votes, COALESCE(approve_count, vote_count, 0) + COALESCE(reject_count, 0)) + 1
		WHERE id = $1
	`
	if voteType == models.VoteReject {
		update = `
			UPDATE proposals SET
				approve_count = COALESCE(approve_count, vote_count, 0),
				vote_count = COALESCE(vote_count, approve_count, 0),
				reject_count = COALESCE(reject_count, 0) + 1,
				total_votes = COALESCE(total_votes, COALESCE(approve_count, vote_count, 0) + COALESCE(reject_count, 0)) + 1
			WHERE id = $1
		`
	}
	if _, err := tx.ExecContext(ctx, update, proposalID); err != nil {
		return "", fmt.Errorf("failed to update vote counts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return "", models.ErrDuplicateVote
		}
		return "", fmt.Errorf("failed to commit vote: %w", err)
	}

	slog.Info("vote recorded", "proposal_id", proposalID, "voter", voter, "vote_type", voteType)
	return voteID, nil
}

// ListVotes returns every vote in the order cast
func (s *Store) ListVotes(ctx context.Context) ([]models.Vote, error) {
	return s.queryVotes(ctx, `
		SELECT id, proposal_id, voter_address, vote_type, voted_at FROM votes
		ORDER BY voted_at, id
	`)
}

// VotesByVoter returns the votes cast by one address
func (s *Store) VotesByVoter(ctx context.Context, voterAddress string) ([]models.Vote, error) {
	return s.queryVotes(ctx, `
		SELECT id, proposal_id, voter_address, vote_type, voted_at FROM votes
		WHERE voter_address = $1
		ORDER BY voted_at, id
	`, auth.NormalizeAddress(voterAddress))
}

// VotesByProposal returns the votes on one proposal
func (s *Store) VotesByProposal(ctx context.Context, proposalID string) ([]models.Vote, error) {
	return s.queryVotes(ctx, `
		SELECT id, proposal_id, voter_address, vote_type, voted_at FROM votes
		WHERE proposal_id = $1
		ORDER BY voted_at, id
	`, proposalID)
}

func (s *Store) queryVotes(ctx context.Context, query string, args ...any) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.ProposalID, &v.VoterAddress, &v.VoteType, &v.VotedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}
	return votes, nil
}
