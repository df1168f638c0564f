// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/votememaybe/auth"
	"github.com/danielhkuo/votememaybe/models"
	"github.com/danielhkuo/votememaybe/testutil"
)

func TestCreateProposal(t *testing.T) {
	t.Run("requires a connected wallet", func(t *testing.T) {
		env := setupEnv(t, alice)
		req := testutil.MakeRequest("POST", "/proposals", models.CreateProposalRequest{Title: "Fund the park"}, nil)
		w := httptest.NewRecorder()

		NewProposalHandler(env.state).CreateProposal(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("creates in the database", func(t *testing.T) {
		env := connectedEnv(t, alice)
		req := testutil.MakeRequest("POST", "/proposals", models.CreateProposalRequest{
			Title:       "Fund the park",
			Description: "Plant trees",
		}, nil)
		w := httptest.NewRecorder()

		NewProposalHandler(env.state).CreateProposal(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)
		var resp models.CreateProposalResponse
		testutil.AssertJSON(t, w, &resp)
		assert.True(t, auth.IsRecordID(resp.ProposalID))
		assert.Equal(t, resp.ProposalID, resp.DatabaseID)
		assert.Empty(t, resp.ContractID)

		p, ok := env.state.Proposal(resp.ProposalID)
		require.True(t, ok)
		assert.Equal(t, models.StatusActive, p.Status)
		assert.Equal(t, alice, p.CreatedBy)
		assert.Zero(t, p.TotalVotes)
	})

	t.Run("invalid input", func(t *testing.T) {
		env := connectedEnv(t, alice)
		handler := NewProposalHandler(env.state)

		req := httptest.NewRequest("POST", "/proposals", strings.NewReader("{nope"))
		w := httptest.NewRecorder()
		handler.CreateProposal(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)

		req = testutil.MakeRequest("POST", "/proposals", models.CreateProposalRequest{Title: "  "}, nil)
		w = httptest.NewRecorder()
		handler.CreateProposal(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestListProposals(t *testing.T) {
	env := setupEnv(t)
	testutil.CreateTestProposal(t, env.conn, "Open", alice, models.StatusActive)
	testutil.CreateTestProposal(t, env.conn, "Done", alice, models.StatusPassed)
	testutil.CreateLegacyProposal(t, env.conn, "Old", 2)
	env.refresh(t)

	handler := NewProposalHandler(env.state)

	testCases := []struct {
		name      string
		query     string
		wantCode  int
		wantCount int
	}{
		{"all", "", http.StatusOK, 3},
		{"active includes legacy rows", "?status=active", http.StatusOK, 2},
		{"passed", "?status=passed", http.StatusOK, 1},
		{"none rejected", "?status=rejected", http.StatusOK, 0},
		{"unknown status", "?status=archived", http.StatusBadRequest, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/proposals"+tc.query, nil)
			w := httptest.NewRecorder()

			handler.ListProposals(w, req)

			testutil.AssertStatus(t, w, tc.wantCode)
			if tc.wantCode != http.StatusOK {
				return
			}
			var proposals []models.Proposal
			testutil.AssertJSON(t, w, &proposals)
			assert.Len(t, proposals, tc.wantCount)
		})
	}
}

func TestGetProposal(t *testing.T) {
	env := setupEnv(t)
	id := testutil.CreateLegacyProposal(t, env.conn, "Old", 3)
	env.refresh(t)

	handler := NewProposalHandler(env.state)

	req := httptest.NewRequest("GET", "/proposals/"+id, nil)
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	handler.GetProposal(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var p models.Proposal
	testutil.AssertJSON(t, w, &p)
	assert.Equal(t, int64(3), p.ApproveCount)
	assert.Equal(t, int64(3), p.TotalVotes)
	assert.Equal(t, models.StatusActive, p.Status)

	req = httptest.NewRequest("GET", "/proposals/missing", nil)
	req.SetPathValue("id", "missing")
	w = httptest.NewRecorder()
	handler.GetProposal(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestEndProposal(t *testing.T) {
	env := connectedEnv(t, bob)
	id := testutil.CreateTestProposal(t, env.conn, "Alice's", alice, models.StatusActive)
	env.refresh(t)

	end := func(id, status string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/proposals/"+id+"/end", models.EndProposalRequest{Status: status}, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		NewProposalHandler(env.state).EndProposal(w, req)
		return w
	}

	// bob did not create it
	testutil.AssertStatus(t, end(id, models.StatusPassed), http.StatusForbidden)
	p, _ := env.state.Proposal(id)
	assert.Equal(t, models.StatusActive, p.Status)

	own := env.createViaAPI(t, "Bob's")

	testutil.AssertStatus(t, end(own, models.StatusPending), http.StatusBadRequest)
	testutil.AssertStatus(t, end("missing", models.StatusPassed), http.StatusNotFound)

	w := end(own, models.StatusRejected)
	testutil.AssertStatus(t, w, http.StatusOK)
	var ended models.Proposal
	testutil.AssertJSON(t, w, &ended)
	assert.Equal(t, models.StatusRejected, ended.Status)

	testutil.AssertStatus(t, end(own, models.StatusPassed), http.StatusConflict)
}
