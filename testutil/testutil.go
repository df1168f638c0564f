// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/danielhkuo/votememaybe/auth"
	"github.com/danielhkuo/votememaybe/cliparse"
	"github.com/danielhkuo/votememaybe/db"
)

// TestDBURLEnv names the variable that switches tests to PostgreSQL
const TestDBURLEnv = "TEST_DATABASE_URL"

// SetupTestDB creates a fresh test database with the full schema.
// It uses an in-memory SQLite database unless TEST_DATABASE_URL points at
// PostgreSQL.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbType, url := db.SQLite, ":memory:"
	if pgURL := os.Getenv(TestDBURLEnv); pgURL != "" {
		dbType, url = db.Postgres, pgURL
	}

	conn, err := db.Open(dbType, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if dbType == db.Postgres {
		// Clean up tables before each test
		_, err = conn.Exec(`
			DROP TABLE IF EXISTS votes CASCADE;
			DROP TABLE IF EXISTS proposals CASCADE;
		`)
		if err != nil {
			t.Fatalf("Failed to clean database: %v", err)
		}
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      ":memory:",
		DatabaseType:     db.SQLite,
		MappingStore:     cliparse.MappingMemory,
		RefreshVoteLimit: 5,
	}
}

// CreateTestProposal inserts a proposal with zeroed counters and returns its ID.
// status should be "active", "pending", "passed", or "rejected"
func CreateTestProposal(t *testing.T, conn *sql.DB, title, createdBy, status string) string {
	t.Helper()

	id, _ := auth.GenerateID()
	_, err := conn.Exec(`
		INSERT INTO proposals (id, title, description, status, approve_count, reject_count, vote_count, total_votes, created_by, created_at)
		VALUES ($1, $2, 'A test proposal', $3, 0, 0, 0, 0, $4, $5)
	`, id, title, status, auth.NormalizeAddress(createdBy), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test proposal: %v", err)
	}

	return id
}

// CreateLegacyProposal inserts a row the way older deployments stored it:
// no status and only the combined vote_count
func CreateLegacyProposal(t *testing.T, conn *sql.DB, title string, voteCount int64) string {
	t.Helper()

	id, _ := auth.GenerateID()
	_, err := conn.Exec(`
		INSERT INTO proposals (id, title, vote_count, created_by, created_at)
		VALUES ($1, $2, $3, '0xlegacy', $4)
	`, id, title, voteCount, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create legacy proposal: %v", err)
	}

	return id
}

// CreateTestVote inserts a vote row without touching counters
func CreateTestVote(t *testing.T, conn *sql.DB, proposalID, voter, voteType string, votedAt time.Time) string {
	t.Helper()

	id, _ := auth.GenerateID()
	_, err := conn.Exec(`
		INSERT INTO votes (id, proposal_id, voter_address, vote_type, voted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, proposalID, auth.NormalizeAddress(voter), voteType, votedAt.UTC().Format("2006-01-02T15:04:05.000Z"))
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return id
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
