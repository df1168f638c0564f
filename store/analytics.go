// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/votememaybe/models"
)

// Stats summarises proposals and votes
func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	stats := models.Stats{StatusCounts: map[string]int64{}}
	for _, status := range models.Statuses {
		stats.StatusCounts[status] = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM proposals GROUP BY status
	`)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to count proposals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status sql.NullString
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return models.Stats{}, fmt.Errorf("failed to scan proposal count: %w", err)
		}
		key := models.StatusActive
		if status.Valid && models.ValidStatus(status.String) {
			key = status.String
		}
		stats.StatusCounts[key] += count
		stats.TotalProposals += count
	}
	if err := rows.Err(); err != nil {
		return models.Stats{}, fmt.Errorf("failed to iterate proposal counts: %w", err)
	}

	var lastVote sql.NullString
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MAX(voted_at) FROM votes
	`).Scan(&stats.TotalVotes, &lastVote)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to count votes: %w", err)
	}

	if lastVote.Valid {
		stats.LastVoteAt = lastVote.String
		if t, err := time.Parse(time.RFC3339, lastVote.String); err == nil {
			stats.LastVoteAgo = humanize.RelTime(t, s.now(), "ago", "from now")
		}
	}

	return stats, nil
}

// VoteDistribution lists each proposal's vote counters
func (s *Store) VoteDistribution(ctx context.Context) ([]models.DistributionEntry, error) {
	proposals, err := s.ListProposals(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]models.DistributionEntry, 0, len(proposals))
	for _, p := range proposals {
		entries = append(entries, models.DistributionEntry{
			ID:                p.ID,
			Name:              p.Title,
			Votes:             p.VoteCount,
			TotalParticipants: p.TotalVotes,
		})
	}
	return entries, nil
}

// VoteActivity counts votes per UTC day, oldest first
func (s *Store) VoteActivity(ctx context.Context) ([]models.ActivityEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(voted_at, 1, 10) AS day, COUNT(*)
		FROM votes
		GROUP BY day
		ORDER BY day
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vote activity: %w", err)
	}
	defer rows.Close()

	entries := []models.ActivityEntry{}
	for rows.Next() {
		var e models.ActivityEntry
		if err := rows.Scan(&e.Date, &e.Count); err != nil {
			return nil, fmt.Errorf("failed to scan vote activity: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vote activity: %w", err)
	}
	return entries, nil
}
