// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package appstate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/votememaybe/models"
	"github.com/danielhkuo/votememaybe/reconcile"
	"github.com/danielhkuo/votememaybe/store"
	"github.com/danielhkuo/votememaybe/testutil"
	"github.com/danielhkuo/votememaybe/wallet"
)

const (
	alice = "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	bob   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func newTestState(t *testing.T, w wallet.Wallet) (*Store, *store.Store) {
	t.Helper()
	db := store.New(testutil.SetupTestDB(t))
	return New(reconcile.NewEngine(db, nil, nil, 0), w), db
}

func TestConnectAndDisconnect(t *testing.T) {
	ctx := context.Background()
	w := wallet.NewStatic(alice)
	s, _ := newTestState(t, w)

	assert.False(t, s.CurrentUser().Connected)

	user, err := s.Connect(ctx)
	require.NoError(t, err)
	assert.True(t, user.Connected)
	assert.Equal(t, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", user.Address)

	w.SetAccounts(bob)
	assert.Equal(t, bob, s.CurrentUser().Address)

	require.NoError(t, s.Disconnect(ctx))
	assert.False(t, s.CurrentUser().Connected)

	// Unsubscribed: later switches no longer reach the store
	w.SetAccounts(alice)
	assert.Empty(t, s.CurrentUser().Address)
}

func TestConnectWithoutWallet(t *testing.T) {
	ctx := context.Background()

	s, _ := newTestState(t, nil)
	_, err := s.Connect(ctx)
	assert.ErrorIs(t, err, models.ErrNotConnected)

	s, _ = newTestState(t, wallet.NewStatic())
	_, err = s.Connect(ctx)
	assert.ErrorIs(t, err, models.ErrNotConnected)
}

func TestAccountsRemovedDisconnects(t *testing.T) {
	ctx := context.Background()
	w := wallet.NewStatic(alice)
	s, _ := newTestState(t, w)

	_, err := s.Connect(ctx)
	require.NoError(t, err)

	w.SetAccounts()
	assert.False(t, s.CurrentUser().Connected)
}

func TestMutationsThroughStore(t *testing.T) {
	ctx := context.Background()
	w := wallet.NewStatic(alice)
	s, db := newTestState(t, w)

	_, err := s.CreateProposal(ctx, "Fund the park", "")
	assert.ErrorIs(t, err, models.ErrNotConnected)

	_, err = s.Connect(ctx)
	require.NoError(t, err)

	out, err := s.CreateProposal(ctx, "Fund the park", "Trees")
	require.NoError(t, err)
	id := out.ID

	_, err = s.Vote(ctx, id, models.VoteApprove)
	require.NoError(t, err)

	p, ok := s.Proposal(id)
	require.True(t, ok)
	assert.Equal(t, int64(1), p.ApproveCount)
	assert.False(t, s.Provisional())

	userVotes := s.UserVotes()
	require.Len(t, userVotes, 1)
	assert.Equal(t, id, userVotes[0].ProposalID)

	_, err = s.Vote(ctx, id, models.VoteReject)
	assert.ErrorIs(t, err, models.ErrDuplicateVote)

	_, err = s.EndProposal(ctx, id, models.StatusPassed)
	require.NoError(t, err)

	passed, err := s.ProposalsByStatus(models.StatusPassed)
	require.NoError(t, err)
	assert.Len(t, passed, 1)

	stored, err := db.GetProposal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPassed, stored.Status)
}

func TestVoteRefreshesUnknownProposal(t *testing.T) {
	ctx := context.Background()
	w := wallet.NewStatic(bob)
	s, db := newTestState(t, w)

	_, err := s.Connect(ctx)
	require.NoError(t, err)

	// Created behind the store's back
	id, err := db.CreateProposal(ctx, "Elsewhere", "", alice)
	require.NoError(t, err)
	_, known := s.Proposal(id)
	require.False(t, known)

	_, err = s.Vote(ctx, id, models.VoteReject)
	require.NoError(t, err)

	p, ok := s.Proposal(id)
	require.True(t, ok)
	assert.Equal(t, int64(1), p.RejectCount)
}

func TestLedger(t *testing.T) {
	s, _ := newTestState(t, nil)

	s.Replace(reconcile.Snapshot{Proposals: []models.Proposal{{ID: "1", Status: models.StatusActive}}})
	assert.False(t, s.Provisional())
	assert.NotNil(t, s.Votes())

	s.ApplyProvisional(func(snap *reconcile.Snapshot) {
		snap.Votes = append(snap.Votes, models.Vote{ProposalID: "1", VoterAddress: bob, Provisional: true})
	})
	assert.True(t, s.Provisional())
	assert.Len(t, s.VotesForProposal("1"), 1)
	assert.True(t, s.State().Provisional)

	// Snapshots are copies
	snap := s.Snapshot()
	snap.Proposals[0].Title = "changed"
	p, _ := s.Proposal("1")
	assert.Empty(t, p.Title)

	s.Replace(reconcile.Snapshot{})
	assert.False(t, s.Provisional())
	assert.Empty(t, s.Proposals())

	_, err := s.ProposalsByStatus("archived")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}
