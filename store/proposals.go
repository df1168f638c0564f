// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/votememaybe/auth"
	"github.com/danielhkuo/votememaybe/models"
)

// ListProposals returns every proposal in creation order
func (s *Store) ListProposals(ctx context.Context) ([]models.Proposal, error) {
	return s.queryProposals(ctx, `
		SELECT `+proposalColumns+` FROM proposals
		ORDER BY created_at, id
	`)
}

// ProposalsByStatus returns proposals in the given status.
// Rows without a recognised status count as active.
func (s *Store) ProposalsByStatus(ctx context.Context, status string) ([]models.Proposal, error) {
	if !models.ValidStatus(status) {
		return nil, models.ErrInvalidStatus
	}
	if status == models.StatusActive {
		return s.queryProposals(ctx, `
			SELECT `+proposalColumns+` FROM proposals
			WHERE status IS NULL OR status NOT IN ($1, $2, $3)
			ORDER BY created_at, id
		`, models.StatusPending, models.StatusPassed, models.StatusRejected)
	}
	return s.queryProposals(ctx, `
		SELECT `+proposalColumns+` FROM proposals
		WHERE status = $1
		ORDER BY created_at, id
	`, status)
}

// GetProposal returns one proposal or models.ErrProposalNotFound
func (s *Store) GetProposal(ctx context.Context, id string) (models.Proposal, error) {
	p, err := scanProposal(s.db.QueryRowContext(ctx, `
		SELECT `+proposalColumns+` FROM proposals WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Proposal{}, models.ErrProposalNotFound
	}
	if err != nil {
		return models.Proposal{}, fmt.Errorf("failed to query proposal: %w", err)
	}
	return p, nil
}

// CreateProposal inserts an active proposal with zeroed counters
func (s *Store) CreateProposal(ctx context.Context, title, description, createdBy string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", models.ErrEmptyTitle
	}

	id, err := auth.GenerateID()
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO proposals (id, title, description, status, approve_count, reject_count, vote_count, total_votes, created_by, created_at)
		VALUES ($1, $2, $3, $4, 0, 0, 0, 0, $5, $6)
	`, id, title, description, models.StatusActive, auth.NormalizeAddress(createdBy), s.timestamp())
	if err != nil {
		return "", fmt.Errorf("failed to insert proposal: %w", err)
	}

	slog.Info("proposal created", "proposal_id", id, "created_by", auth.NormalizeAddress(createdBy))
	return id, nil
}

// UpdateStatus sets a proposal's status
func (s *Store) UpdateStatus(ctx context.Context, id, status string) error {
	if !models.ValidStatus(status) {
		return models.ErrInvalidStatus
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE proposals SET status = $1 WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update proposal status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update proposal status: %w", err)
	}
	if n == 0 {
		return models.ErrProposalNotFound
	}

	slog.Info("proposal status updated", "proposal_id", id, "status", status)
	return nil
}

func (s *Store) queryProposals(ctx context.Context, query string, args ...any) ([]models.Proposal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}
	defer rows.Close()

	proposals := []models.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate proposals: %w", err)
	}
	return proposals, nil
}
