// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package appstate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/danielhkuo/votememaybe/auth"
	"github.com/danielhkuo/votememaybe/models"
	"github.com/danielhkuo/votememaybe/reconcile"
	"github.com/danielhkuo/votememaybe/wallet"
)

// Store holds the merged view of proposals and votes plus the connected
// identity. It is the reconcile.Ledger the engine works against.
type Store struct {
	engine *reconcile.Engine
	wallet wallet.Wallet

	mu          sync.RWMutex
	proposals   []models.Proposal
	votes       []models.Vote
	user        models.User
	provisional bool
	unsubscribe func()
}

// New creates an empty store. w may be nil when no wallet is configured.
func New(engine *reconcile.Engine, w wallet.Wallet) *Store {
	return &Store{
		engine:    engine,
		wallet:    w,
		proposals: []models.Proposal{},
		votes:     []models.Vote{},
	}
}

// Snapshot returns a copy of the current proposals and votes
func (s *Store) Snapshot() reconcile.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reconcile.Snapshot{
		Proposals: slices.Clone(s.proposals),
		Votes:     slices.Clone(s.votes),
	}
}

// ApplyProvisional patches the state optimistically
func (s *Store) ApplyProvisional(patch func(*reconcile.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := reconcile.Snapshot{Proposals: s.proposals, Votes: s.votes}
	patch(&snap)
	s.proposals, s.votes = snap.Proposals, snap.Votes
	s.provisional = true
}

// Replace swaps in authoritative state
func (s *Store) Replace(snap reconcile.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals = nonNil(snap.Proposals)
	s.votes = nonNil(snap.Votes)
	s.provisional = false
}

// Provisional reports whether the state carries optimistic updates not yet
// confirmed by a refresh
func (s *Store) Provisional() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provisional
}

// Proposals returns every known proposal
func (s *Store) Proposals() []models.Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.proposals)
}

// ProposalsByStatus filters proposals by status
func (s *Store) ProposalsByStatus(status string) ([]models.Proposal, error) {
	if !models.ValidStatus(status) {
		return nil, models.ErrInvalidStatus
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Proposal{}
	for _, p := range s.proposals {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

// Proposal looks up one proposal by ID
func (s *Store) Proposal(id string) (models.Proposal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.proposals {
		if p.ID == id {
			return p, true
		}
	}
	return models.Proposal{}, false
}

// Votes returns every known vote
func (s *Store) Votes() []models.Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.votes)
}

// VotesForProposal returns the known votes on one proposal
func (s *Store) VotesForProposal(proposalID string) []models.Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Vote{}
	for _, v := range s.votes {
		if v.ProposalID == proposalID {
			out = append(out, v)
		}
	}
	return out
}

// CurrentUser returns the connected identity
func (s *Store) CurrentUser() models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// UserVotes returns the votes cast by the connected identity
func (s *Store) UserVotes() []models.Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Vote{}
	if !s.user.Connected {
		return out
	}
	for _, v := range s.votes {
		if auth.SameAddress(v.VoterAddress, s.user.Address) {
			out = append(out, v)
		}
	}
	return out
}

// State returns everything at once
func (s *Store) State() models.StateResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.StateResponse{
		Proposals:   slices.Clone(s.proposals),
		Votes:       slices.Clone(s.votes),
		CurrentUser: s.user,
		Provisional: s.provisional,
	}
}

// Connect asks the wallet for its accounts, adopts the first one and
// follows later account switches
func (s *Store) Connect(ctx context.Context) (models.User, error) {
	if s.wallet == nil {
		return models.User{}, fmt.Errorf("%w: no wallet configured", models.ErrNotConnected)
	}

	accounts, err := s.wallet.RequestAccounts(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", models.ErrNotConnected, err)
	}
	if len(accounts) == 0 {
		return models.User{}, models.ErrNotConnected
	}

	s.mu.Lock()
	s.user = models.User{Address: auth.NormalizeAddress(accounts[0]), Connected: true}
	if s.unsubscribe == nil {
		s.unsubscribe = s.wallet.Subscribe(s.accountsChanged)
	}
	user := s.user
	s.mu.Unlock()

	slog.Info("wallet connected", "address", user.Address)
	if err := s.Refresh(ctx); err != nil {
		slog.Warn("refresh after connect failed", "error", err)
	}
	return user, nil
}

// Disconnect forgets the identity and reloads from the database
func (s *Store) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	s.user = models.User{}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.mu.Unlock()

	slog.Info("wallet disconnected")
	return s.Refresh(ctx)
}

func (s *Store) accountsChanged(accounts []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.user.Connected {
		return
	}
	if len(accounts) == 0 {
		s.user = models.User{}
		slog.Info("wallet accounts removed, disconnected")
		return
	}
	s.user.Address = auth.NormalizeAddress(accounts[0])
	slog.Info("wallet account changed", "address", s.user.Address)
}

func (s *Store) session() reconcile.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.user.Connected {
		return reconcile.Session{}
	}
	return reconcile.Session{Address: s.user.Address, Wallet: s.wallet}
}

// Refresh replaces the state with a fresh read of the stores
func (s *Store) Refresh(ctx context.Context) error {
	return s.engine.Refresh(ctx, s, s.session())
}

// CreateProposal creates a proposal as the connected identity
func (s *Store) CreateProposal(ctx context.Context, title, description string) (reconcile.Outcome, error) {
	return s.engine.CreateProposal(ctx, s, s.session(), title, description)
}

// Vote casts the connected identity's vote. A proposal missing from the
// state triggers one refresh first.
func (s *Store) Vote(ctx context.Context, proposalID, voteType string) (reconcile.Outcome, error) {
	s.ensureKnown(ctx, proposalID)
	return s.engine.CastVote(ctx, s, s.session(), proposalID, voteType)
}

// EndProposal closes a proposal the connected identity created
func (s *Store) EndProposal(ctx context.Context, proposalID, status string) (reconcile.Outcome, error) {
	s.ensureKnown(ctx, proposalID)
	return s.engine.EndProposal(ctx, s, s.session(), proposalID, status)
}

func (s *Store) ensureKnown(ctx context.Context, proposalID string) {
	if _, ok := s.Proposal(proposalID); ok {
		return
	}
	if err := s.Refresh(ctx); err != nil {
		slog.Warn("refresh for unknown proposal failed", "proposal_id", proposalID, "error", err)
	}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
