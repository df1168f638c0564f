// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reconcile

import (
	"context"
	"strings"
	"time"

	"github.com/danielhkuo/votememaybe/contract"
	"github.com/danielhkuo/votememaybe/models"
	"github.com/danielhkuo/votememaybe/wallet"
)

// DefaultVoteLimit bounds how many proposals get their contract votes
// fetched on refresh
const DefaultVoteLimit = 5

// refreshConcurrency caps in-flight vote reads during a refresh
const refreshConcurrency = 3

// ContractGateway is the contract side as the engine sees it.
// *contract.Gateway implements it.
type ContractGateway interface {
	ListProposals(ctx context.Context) []models.Proposal
	CreateProposal(ctx context.Context, w wallet.Wallet, title, description string) (contract.Created, error)
	CastVote(ctx context.Context, w wallet.Wallet, externalID, title, voteType string) error
	UpdateStatus(ctx context.Context, w wallet.Wallet, externalID, title, status string) error
	VotesForProposal(ctx context.Context, externalID, title string) []models.Vote
}

// DatabaseGateway is the database side as the engine sees it.
// *store.Store implements it.
type DatabaseGateway interface {
	ListProposals(ctx context.Context) ([]models.Proposal, error)
	ListVotes(ctx context.Context) ([]models.Vote, error)
	CreateProposal(ctx context.Context, title, description, createdBy string) (string, error)
	CastVote(ctx context.Context, proposalID, voterAddress, voteType string) (string, error)
	UpdateStatus(ctx context.Context, id, status string) error
	IsNativeID(id string) bool
}

// Mapper records identifier mappings. *idbridge.Bridge implements it.
type Mapper interface {
	StoreMapping(ctx context.Context, externalID string, contractID uint64)
}

// Session identifies the caller of a mutation. Wallet is nil when no
// wallet is connected; the contract is then skipped.
type Session struct {
	Address string
	Wallet  wallet.Wallet
}

// Connected reports whether the session has an identity
func (s Session) Connected() bool {
	return s.Address != ""
}

// Snapshot is the merged view of both stores
type Snapshot struct {
	Proposals []models.Proposal
	Votes     []models.Vote
}

// Ledger holds the in-memory state the engine validates against and
// updates. Replace always swaps the whole snapshot.
type Ledger interface {
	Snapshot() Snapshot
	ApplyProvisional(patch func(*Snapshot))
	Replace(Snapshot)
}

// Engine drives mutations through both gateways
type Engine struct {
	contract  ContractGateway
	db        DatabaseGateway
	mapper    Mapper
	voteLimit int
	now       func() time.Time
}

// NewEngine creates an engine. cg and mapper may be nil when no contract is
// configured; voteLimit <= 0 selects DefaultVoteLimit.
func NewEngine(db DatabaseGateway, cg ContractGateway, mapper Mapper, voteLimit int) *Engine {
	if voteLimit <= 0 {
		voteLimit = DefaultVoteLimit
	}
	return &Engine{
		contract:  cg,
		db:        db,
		mapper:    mapper,
		voteLimit: voteLimit,
		now:       time.Now,
	}
}

// HasContract reports whether a contract gateway is configured
func (e *Engine) HasContract() bool {
	return e.contract != nil
}

func (e *Engine) useContract(s Session) bool {
	return e.contract != nil && s.Wallet != nil
}

func (e *Engine) timestamp() string {
	return e.now().UTC().Format(time.RFC3339)
}

// databaseID finds the database-side identifier for a proposal known by id
// and title. The id itself is used when nothing better is found.
func (e *Engine) databaseID(proposals []models.Proposal, id, title string) string {
	if e.db.IsNativeID(id) {
		return id
	}
	// An exact title match anywhere beats a substring match on the ID
	if title != "" {
		for _, p := range proposals {
			if e.db.IsNativeID(p.ID) && strings.EqualFold(p.Title, title) {
				return p.ID
			}
		}
	}
	for _, p := range proposals {
		if e.db.IsNativeID(p.ID) && strings.Contains(p.ID, id) {
			return p.ID
		}
	}
	return id
}

func findProposal(proposals []models.Proposal, id string) (int, bool) {
	for i, p := range proposals {
		if p.ID == id {
			return i, true
		}
	}
	return -1, false
}
