// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/votememaybe/auth"
	"github.com/danielhkuo/votememaybe/models"
)

// isoFormat is the fixed-width UTC timestamp layout used in every row.
// Fixed width keeps text ordering equal to time ordering.
const isoFormat = "2006-01-02T15:04:05.000Z"

// Store is the database side of the service: proposals and votes in SQL
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// IsNativeID reports whether id was issued by this database
func (s *Store) IsNativeID(id string) bool {
	return auth.IsRecordID(id)
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(isoFormat)
}

const proposalColumns = `id, title, description, status, approve_count, reject_count, vote_count, total_votes, created_by, created_at`

type scanner interface {
	Scan(dest ...any) error
}

// scanProposal reads one proposals row and fills in legacy gaps
func scanProposal(row scanner) (models.Proposal, error) {
	var p models.Proposal
	var status sql.NullString
	var approve, reject, voteCount, total sql.NullInt64

	err := row.Scan(&p.ID, &p.Title, &p.Description, &status, &approve, &reject, &voteCount, &total, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		return models.Proposal{}, err
	}
	normalizeProposal(&p, status, approve, reject, voteCount, total)
	return p, nil
}

// normalizeProposal applies the compatibility rules for rows written by
// older versions that only tracked vote_count.
func normalizeProposal(p *models.Proposal, status sql.NullString, approve, reject, voteCount, total sql.NullInt64) {
	switch {
	case approve.Valid:
		p.ApproveCount = approve.Int64
	case voteCount.Valid:
		p.ApproveCount = voteCount.Int64
	}

	if reject.Valid {
		p.RejectCount = reject.Int64
	}

	if voteCount.Valid {
		p.VoteCount = voteCount.Int64
	} else {
		p.VoteCount = p.ApproveCount
	}

	switch {
	case total.Valid:
		p.TotalVotes = total.Int64
	case p.ApproveCount+p.RejectCount > 0:
		p.TotalVotes = p.ApproveCount + p.RejectCount
	}

	p.Status = models.StatusActive
	if status.Valid && models.ValidStatus(status.String) {
		p.Status = status.String
	}
}

// isUniqueViolation recognises unique constraint errors from both drivers
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
