// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates its schema.

# Connecting

Open accepts the database type from configuration and registers both drivers:

	conn, err := db.Open(db.SQLite, "file:votes.db")
	conn, err := db.Open(db.Postgres, "postgres://...")

SQLite connections are limited to one open connection.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same DDL runs on PostgreSQL and SQLite. Timestamps are stored as RFC 3339
text so both dialects sort and compare them the same way.

# Tables

  - proposals: title, description, lifecycle status, counters, creator
  - votes: one row per voter per proposal

# Relationships

	proposals 1──* votes

# Indexes

  - by_status: proposals.status
  - by_voter: votes.voter_address
  - by_proposal_and_voter: votes.(proposal_id, voter_address), unique

The unique index is the final guard of the one-vote-per-address rule.

# Legacy Columns

status and the four counters are nullable. Older rows may only carry
vote_count; the store package normalizes them on read.
*/
package db
