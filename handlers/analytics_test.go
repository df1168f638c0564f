// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/votememaybe/models"
	"github.com/danielhkuo/votememaybe/testutil"
)

func TestAnalytics(t *testing.T) {
	env := setupEnv(t)
	handler := NewAnalyticsHandler(env.db)

	first := testutil.CreateTestProposal(t, env.conn, "First", alice, models.StatusActive)
	second := testutil.CreateTestProposal(t, env.conn, "Second", alice, models.StatusPassed)

	day1 := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 2, 3, 18, 30, 0, 0, time.UTC)
	testutil.CreateTestVote(t, env.conn, first, alice, models.VoteApprove, day1)
	testutil.CreateTestVote(t, env.conn, first, bob, models.VoteReject, day2)
	testutil.CreateTestVote(t, env.conn, second, bob, models.VoteApprove, day2.Add(time.Hour))

	t.Run("stats", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetStats(w, httptest.NewRequest("GET", "/analytics/stats", nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		var stats models.Stats
		testutil.AssertJSON(t, w, &stats)
		assert.Equal(t, int64(2), stats.TotalProposals)
		assert.Equal(t, int64(3), stats.TotalVotes)
		assert.Equal(t, int64(1), stats.StatusCounts[models.StatusActive])
		assert.Equal(t, int64(1), stats.StatusCounts[models.StatusPassed])
		assert.Equal(t, int64(0), stats.StatusCounts[models.StatusRejected])
		assert.Equal(t, "2025-02-03T19:30:00.000Z", stats.LastVoteAt)
		assert.NotEmpty(t, stats.LastVoteAgo)
	})

	t.Run("distribution", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetDistribution(w, httptest.NewRequest("GET", "/analytics/distribution", nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		var entries []models.DistributionEntry
		testutil.AssertJSON(t, w, &entries)
		require.Len(t, entries, 2)
	})

	t.Run("activity", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetActivity(w, httptest.NewRequest("GET", "/analytics/activity", nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		var entries []models.ActivityEntry
		testutil.AssertJSON(t, w, &entries)
		assert.Equal(t, []models.ActivityEntry{
			{Date: "2025-02-01", Count: 1},
			{Date: "2025-02-03", Count: 2},
		}, entries)
	})
}

func TestAnalyticsRecords(t *testing.T) {
	env := setupEnv(t)
	handler := NewAnalyticsHandler(env.db)

	active := testutil.CreateTestProposal(t, env.conn, "Active", alice, models.StatusActive)
	passed := testutil.CreateTestProposal(t, env.conn, "Passed", bob, models.StatusPassed)

	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	testutil.CreateTestVote(t, env.conn, active, alice, models.VoteApprove, at)
	testutil.CreateTestVote(t, env.conn, active, bob, models.VoteReject, at.Add(time.Minute))
	testutil.CreateTestVote(t, env.conn, passed, bob, models.VoteApprove, at.Add(time.Hour))

	t.Run("all proposals", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ListRecords(w, httptest.NewRequest("GET", "/analytics/proposals", nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		var proposals []models.Proposal
		testutil.AssertJSON(t, w, &proposals)
		assert.Len(t, proposals, 2)
	})

	t.Run("filtered by status", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ListRecords(w, httptest.NewRequest("GET", "/analytics/proposals?status=passed", nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		var proposals []models.Proposal
		testutil.AssertJSON(t, w, &proposals)
		require.Len(t, proposals, 1)
		assert.Equal(t, passed, proposals[0].ID)
	})

	t.Run("unknown status", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ListRecords(w, httptest.NewRequest("GET", "/analytics/proposals?status=archived", nil))

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("votes on a proposal", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/analytics/proposals/"+active+"/votes", nil)
		req.SetPathValue("id", active)
		w := httptest.NewRecorder()
		handler.GetRecordVotes(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var votes []models.Vote
		testutil.AssertJSON(t, w, &votes)
		require.Len(t, votes, 2)
		assert.Equal(t, alice, votes[0].VoterAddress)
		assert.Equal(t, bob, votes[1].VoterAddress)
	})

	t.Run("votes by a voter in any case", func(t *testing.T) {
		address := "0x" + strings.ToUpper(bob[2:])
		req := httptest.NewRequest("GET", "/analytics/voters/"+address+"/votes", nil)
		req.SetPathValue("address", address)
		w := httptest.NewRecorder()
		handler.GetVoterVotes(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var votes []models.Vote
		testutil.AssertJSON(t, w, &votes)
		require.Len(t, votes, 2)
		assert.Equal(t, active, votes[0].ProposalID)
		assert.Equal(t, passed, votes[1].ProposalID)
	})

	t.Run("voter without votes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/analytics/voters/0xcccc/votes", nil)
		req.SetPathValue("address", "0xcccc")
		w := httptest.NewRecorder()
		handler.GetVoterVotes(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		assert.JSONEq(t, "[]", w.Body.String())
	})
}
