// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/danielhkuo/votememaybe/auth"
	"github.com/danielhkuo/votememaybe/contract"
	"github.com/danielhkuo/votememaybe/models"
)

// CastVote records a vote on the contract (best effort) and the database.
// A duplicate reported by the contract ends the operation before the
// database is touched.
func (e *Engine) CastVote(ctx context.Context, l Ledger, s Session, proposalID, voteType string) (Outcome, error) {
	out := newOutcome()
	out.enter(PhaseValidating)

	if !s.Connected() {
		return e.reject(out, models.ErrNotConnected)
	}
	if !models.ValidVoteType(voteType) {
		return e.reject(out, models.ErrInvalidVoteType)
	}

	voter := auth.NormalizeAddress(s.Address)
	snap := l.Snapshot()
	i, ok := findProposal(snap.Proposals, proposalID)
	if !ok {
		return e.reject(out, models.ErrProposalNotFound)
	}
	p := snap.Proposals[i]

	for _, v := range snap.Votes {
		if v.ProposalID == p.ID && auth.SameAddress(v.VoterAddress, voter) {
			return e.reject(out, models.ErrDuplicateVote)
		}
	}
	if p.Status != models.StatusActive {
		return e.reject(out, models.ErrProposalNotActive)
	}

	if e.useContract(s) {
		out.enter(PhaseContractAttempt)
		err := e.contract.CastVote(ctx, s.Wallet, p.ID, p.Title, voteType)
		switch {
		case err == nil:
			out.ContractOK = true
		case contract.IsAlreadyVoted(err):
			out.ContractErr = err
			out.enter(PhaseFailed)
			slog.Info("contract reports duplicate vote", "proposal_id", p.ID, "voter", voter)
			if !errors.Is(err, models.ErrDuplicateVote) {
				err = &AttemptError{Errs: []error{err, models.ErrDuplicateVote}}
			}
			return *out, err
		default:
			out.ContractErr = err
			slog.Warn("contract vote failed, continuing with database", "proposal_id", p.ID, "error", err)
		}
	}

	out.enter(PhaseDatabaseAttempt)
	dbID := e.databaseID(snap.Proposals, p.ID, p.Title)
	voteID, err := e.db.CastVote(ctx, dbID, voter, voteType)
	if err != nil {
		out.DatabaseErr = err
		slog.Warn("database vote failed", "proposal_id", dbID, "error", err)
	} else {
		out.DatabaseOK = true
		out.ID = voteID
		e.patchVote(l, p.ID, models.Vote{
			ID:           voteID,
			ProposalID:   p.ID,
			VoterAddress: voter,
			VoteType:     voteType,
			VotedAt:      e.timestamp(),
			Provisional:  true,
		})
	}

	if !out.ContractOK && !out.DatabaseOK {
		out.enter(PhaseFailed)
		return *out, out.failure()
	}

	out.enter(PhaseReconciled)
	slog.Info("vote reconciled", "proposal_id", p.ID, "voter", voter, "vote_type", voteType,
		"contract", out.ContractOK, "database", out.DatabaseOK)
	e.refreshAfter(ctx, l, s)
	return *out, nil
}

// CreateProposal creates the proposal in both stores. When both succeed the
// database ID is mapped to the contract ID.
func (e *Engine) CreateProposal(ctx context.Context, l Ledger, s Session, title, description string) (Outcome, error) {
	out := newOutcome()
	out.enter(PhaseValidating)

	if !s.Connected() {
		return e.reject(out, models.ErrNotConnected)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return e.reject(out, models.ErrEmptyTitle)
	}
	creator := auth.NormalizeAddress(s.Address)

	var created contract.Created
	if e.useContract(s) {
		out.enter(PhaseContractAttempt)
		var err error
		created, err = e.contract.CreateProposal(ctx, s.Wallet, title, description)
		if err != nil {
			out.ContractErr = err
			slog.Warn("contract create failed, continuing with database", "error", err)
		} else {
			out.ContractOK = true
			out.ContractID = created.ID
		}
	}

	out.enter(PhaseDatabaseAttempt)
	dbID, err := e.db.CreateProposal(ctx, title, description, creator)
	if err != nil {
		out.DatabaseErr = err
		slog.Warn("database create failed", "error", err)
	} else {
		out.DatabaseOK = true
	}

	if !out.ContractOK && !out.DatabaseOK {
		out.enter(PhaseFailed)
		return *out, out.failure()
	}

	out.ID = created.ID
	if out.DatabaseOK {
		out.ID = dbID
	}
	if out.DatabaseOK && out.ContractOK && created.ContractID != 0 && e.mapper != nil {
		e.mapper.StoreMapping(ctx, dbID, created.ContractID)
	}

	l.ApplyProvisional(func(snap *Snapshot) {
		snap.Proposals = append(snap.Proposals, models.Proposal{
			ID:          out.ID,
			Title:       title,
			Description: description,
			Status:      models.StatusActive,
			CreatedBy:   creator,
			CreatedAt:   e.timestamp(),
			Provisional: true,
		})
	})

	out.enter(PhaseReconciled)
	slog.Info("proposal reconciled", "proposal_id", out.ID, "contract_id", out.ContractID,
		"contract", out.ContractOK, "database", out.DatabaseOK)
	e.refreshAfter(ctx, l, s)
	return *out, nil
}

// EndProposal moves an active proposal to passed or rejected. Only its
// creator may end it.
func (e *Engine) EndProposal(ctx context.Context, l Ledger, s Session, proposalID, status string) (Outcome, error) {
	out := newOutcome()
	out.enter(PhaseValidating)

	if !s.Connected() {
		return e.reject(out, models.ErrNotConnected)
	}
	if status != models.StatusPassed && status != models.StatusRejected {
		return e.reject(out, models.ErrInvalidStatus)
	}

	snap := l.Snapshot()
	i, ok := findProposal(snap.Proposals, proposalID)
	if !ok {
		return e.reject(out, models.ErrProposalNotFound)
	}
	p := snap.Proposals[i]

	if err := auth.RequireCreator(p, s.Address); err != nil {
		return e.reject(out, err)
	}
	if p.Status != models.StatusActive {
		return e.reject(out, models.ErrProposalNotActive)
	}

	if e.useContract(s) {
		out.enter(PhaseContractAttempt)
		if err := e.contract.UpdateStatus(ctx, s.Wallet, p.ID, p.Title, status); err != nil {
			out.ContractErr = err
			slog.Warn("contract status update failed, continuing with database", "proposal_id", p.ID, "error", err)
		} else {
			out.ContractOK = true
		}
	}

	out.enter(PhaseDatabaseAttempt)
	dbID := e.databaseID(snap.Proposals, p.ID, p.Title)
	if err := e.db.UpdateStatus(ctx, dbID, status); err != nil {
		out.DatabaseErr = err
		slog.Warn("database status update failed", "proposal_id", dbID, "error", err)
	} else {
		out.DatabaseOK = true
	}

	if !out.ContractOK && !out.DatabaseOK {
		out.enter(PhaseFailed)
		return *out, out.failure()
	}

	out.ID = p.ID
	l.ApplyProvisional(func(snap *Snapshot) {
		if i, ok := findProposal(snap.Proposals, p.ID); ok {
			snap.Proposals[i].Status = status
			snap.Proposals[i].Provisional = true
		}
	})

	out.enter(PhaseReconciled)
	slog.Info("proposal ended", "proposal_id", p.ID, "status", status,
		"contract", out.ContractOK, "database", out.DatabaseOK)
	e.refreshAfter(ctx, l, s)
	return *out, nil
}

func (e *Engine) reject(out *Outcome, err error) (Outcome, error) {
	out.enter(PhaseFailed)
	return *out, err
}

func (e *Engine) patchVote(l Ledger, proposalID string, v models.Vote) {
	l.ApplyProvisional(func(snap *Snapshot) {
		snap.Votes = append(snap.Votes, v)
		i, ok := findProposal(snap.Proposals, proposalID)
		if !ok {
			return
		}
		p := &snap.Proposals[i]
		if v.VoteType == models.VoteApprove {
			p.ApproveCount++
			p.VoteCount++
		} else {
			p.RejectCount++
		}
		p.TotalVotes++
		p.Provisional = true
	})
}

// refreshAfter runs the authoritative refresh that follows a successful
// mutation. A failed refresh leaves the provisional state in place.
func (e *Engine) refreshAfter(ctx context.Context, l Ledger, s Session) {
	if err := e.Refresh(ctx, l, s); err != nil {
		slog.Warn("refresh after mutation failed, keeping provisional state", "error", err)
	}
}
