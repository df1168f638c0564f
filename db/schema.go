// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// Open connects to the database of the given type and verifies the connection.
func Open(dbType, url string) (*sql.DB, error) {
	switch dbType {
	case Postgres, SQLite:
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(dbType, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; serialize access through one connection
	if dbType == SQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Counter and status columns are nullable: rows imported from older
// deployments may only carry vote_count.
const schema = `
-- Proposals
CREATE TABLE IF NOT EXISTS proposals (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT,
    approve_count INTEGER,
    reject_count INTEGER,
    vote_count INTEGER,
    total_votes INTEGER,
    created_by TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS by_status ON proposals(status);

-- Votes (one per proposal and lowercase voter address)
CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    proposal_id TEXT NOT NULL REFERENCES proposals(id),
    voter_address TEXT NOT NULL,
    vote_type TEXT NOT NULL CHECK (vote_type IN ('approve', 'reject')),
    voted_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS by_voter ON votes(voter_address);
CREATE UNIQUE INDEX IF NOT EXISTS by_proposal_and_voter ON votes(proposal_id, voter_address);
`
