// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/danielhkuo/votememaybe/idbridge"
	"github.com/danielhkuo/votememaybe/models"
	"github.com/danielhkuo/votememaybe/wallet"
)

// Sources of a created proposal's identifier
const (
	SourceEvent     = "event"
	SourceLatest    = "latest"
	SourceTimestamp = "timestamp"
)

// Created describes a proposal submitted to the contract.
// ContractID is 0 when the identifier is only a timestamp placeholder.
type Created struct {
	ID         string
	ContractID uint64
	TxHash     string
	Source     string
}

// Gateway exposes the voting contract with the same operations as the
// database. Reads never fail: they degrade to empty results.
type Gateway struct {
	backend  Backend
	bridge   *idbridge.Bridge
	resolver *idbridge.Resolver
	now      func() time.Time
}

func NewGateway(backend Backend, bridge *idbridge.Bridge) *Gateway {
	g := &Gateway{
		backend: backend,
		bridge:  bridge,
		now:     time.Now,
	}
	g.resolver = idbridge.NewResolver(bridge, g)
	return g
}

// Resolve translates an external identifier to a contract ID
func (g *Gateway) Resolve(ctx context.Context, externalID, title string) uint64 {
	n, _ := g.resolver.Resolve(ctx, externalID, title)
	return n
}

// ListProposals returns every proposal on the contract. Records that cannot
// be decoded are replaced by placeholders; a failed call yields an empty list.
func (g *Gateway) ListProposals(ctx context.Context) []models.Proposal {
	out, err := g.backend.Call(ctx, methodGetAllProposals)
	if err != nil {
		slog.Warn("failed to list contract proposals", "error", err)
		return []models.Proposal{}
	}

	items, err := elements(out)
	if err != nil {
		slog.Warn("failed to decode contract proposals", "error", err)
		return []models.Proposal{}
	}

	proposals := make([]models.Proposal, 0, len(items))
	for i, item := range items {
		raw, err := decodeProposal(item)
		if err != nil {
			slog.Warn("substituting placeholder for contract proposal", "index", i, "error", err)
			proposals = append(proposals, placeholderProposal(readableTitle(item), g.now()))
			continue
		}

		contractID := raw.Id.Uint64()
		numeric := strconv.FormatUint(contractID, 10)
		id := numeric
		if ext, ok := g.bridge.LookupExternalID(ctx, contractID); ok {
			id = ext
		}
		if id != numeric {
			g.bridge.StoreMapping(ctx, id, contractID)
		}

		proposals = append(proposals, raw.toProposal(id))
	}
	return proposals
}

// CreateProposal submits a new proposal and recovers its contract ID from
// the ProposalCreated event. Without the event, the transaction hash is kept
// as a temporary identifier and the newest listed proposal is assumed to be
// ours; failing that, a timestamp stands in.
func (g *Gateway) CreateProposal(ctx context.Context, w wallet.Wallet, title, description string) (Created, error) {
	opts, err := w.Signer(ctx)
	if err != nil {
		return Created{}, fmt.Errorf("failed to get signer: %w", err)
	}

	tx, receipt, _, err := g.transactLadder(ctx, opts, []method{
		{name: methodCreateProposal, args: []any{title, description}},
	})
	if err != nil {
		return Created{}, fmt.Errorf("failed to create proposal on contract: %w", err)
	}

	created := Created{}
	if tx != nil {
		created.TxHash = tx.Hash().Hex()
	}

	if id, ok := proposalCreatedID(receipt); ok {
		created.ContractID = id
		created.ID = strconv.FormatUint(id, 10)
		created.Source = SourceEvent
		return created, nil
	}
	slog.Warn("ProposalCreated event missing, recovering id", "tx", created.TxHash)

	if latest, ok := g.latestProposalID(ctx); ok {
		created.ContractID = latest
		created.ID = strconv.FormatUint(latest, 10)
		created.Source = SourceLatest
		return created, nil
	}

	created.ID = strconv.FormatInt(g.now().UnixMilli(), 10)
	created.Source = SourceTimestamp
	return created, nil
}

// CastVote records a vote on the contract, trying every known vote method.
// vote(uint256) has no vote type and is only tried for approvals.
func (g *Gateway) CastVote(ctx context.Context, w wallet.Wallet, externalID, title, voteType string) error {
	typeIndex, ok := indexOf(models.VoteTypes, voteType)
	if !ok {
		return models.ErrInvalidVoteType
	}

	contractID := g.Resolve(ctx, externalID, title)

	accounts, err := w.Accounts(ctx)
	if err == nil && len(accounts) > 0 && g.HasVoted(ctx, externalID, title, accounts[0]) {
		return models.ErrDuplicateVote
	}

	opts, err := w.Signer(ctx)
	if err != nil {
		return fmt.Errorf("failed to get signer: %w", err)
	}

	id := new(big.Int).SetUint64(contractID)
	ladder := []method{
		{name: methodCastVoteWithType, args: []any{id, typeIndex}},
		{name: methodCastVote, args: []any{id, typeIndex}},
		{name: methodVoteWithType, args: []any{id, typeIndex}},
	}
	if voteType == models.VoteApprove {
		ladder = append(ladder, method{name: methodVoteApproveOnly, args: []any{id}})
	}

	_, _, used, err := g.transactLadder(ctx, opts, ladder)
	if err != nil {
		return fmt.Errorf("failed to cast vote on contract: %w", err)
	}

	g.remember(ctx, externalID, contractID)
	slog.Info("vote cast on contract", "proposal_id", externalID, "contract_id", contractID, "method", used)
	return nil
}

// HasVoted reports whether voter already voted. Any failure reads as "not
// voted" so a broken check never blocks a vote.
//
// It tries up to five reads, stopping at the first that answers: the boolean
// checks hasVoted, hasVotedOnProposal and hasUserVoted, then getVoteByVoter,
// then the public votes mapping. The last two cover deployments that expose
// only the vote record.
func (g *Gateway) HasVoted(ctx context.Context, externalID, title, voter string) bool {
	if !common.IsHexAddress(voter) {
		return false
	}
	id := new(big.Int).SetUint64(g.Resolve(ctx, externalID, title))
	addr := common.HexToAddress(voter)

	v, err := g.callLadder(ctx, []method{
		{name: methodHasVoted, args: []any{id, addr}, parse: parseBool},
		{name: methodHasVotedOnProposal, args: []any{id, addr}, parse: parseBool},
		{name: methodHasUserVoted, args: []any{id, addr}, parse: parseBool},
		{name: methodGetVoteByVoter, args: []any{id, addr}, parse: parseVoteExists},
		{name: methodVotes, args: []any{id, addr}, parse: parseFlatVoteExists},
	})
	if err != nil {
		slog.Debug("vote check unavailable, assuming not voted", "proposal_id", externalID, "error", err)
		return false
	}
	return v.(bool)
}

// UpdateStatus changes a proposal's status on the contract
func (g *Gateway) UpdateStatus(ctx context.Context, w wallet.Wallet, externalID, title, status string) error {
	statusIndex, ok := indexOf(models.Statuses, status)
	if !ok {
		return models.ErrInvalidStatus
	}

	contractID := g.Resolve(ctx, externalID, title)

	opts, err := w.Signer(ctx)
	if err != nil {
		return fmt.Errorf("failed to get signer: %w", err)
	}

	_, _, _, err = g.transactLadder(ctx, opts, []method{
		{name: methodUpdateProposalStatus, args: []any{new(big.Int).SetUint64(contractID), statusIndex}},
	})
	if err != nil {
		return fmt.Errorf("failed to update proposal status on contract: %w", err)
	}

	g.remember(ctx, externalID, contractID)
	return nil
}

// VotesForProposal lists the contract's votes for one proposal. The votes
// carry externalID so they join with the caller's proposal.
func (g *Gateway) VotesForProposal(ctx context.Context, externalID, title string) []models.Vote {
	contractID := g.Resolve(ctx, externalID, title)

	out, err := g.backend.Call(ctx, methodGetProposalVotes, new(big.Int).SetUint64(contractID))
	if err != nil {
		slog.Warn("failed to list contract votes", "proposal_id", externalID, "error", err)
		return []models.Vote{}
	}

	items, err := elements(out)
	if err != nil {
		slog.Warn("failed to decode contract votes", "proposal_id", externalID, "error", err)
		return []models.Vote{}
	}

	votes := make([]models.Vote, 0, len(items))
	for i, item := range items {
		raw, err := decodeVote(item)
		if err != nil {
			slog.Warn("skipping malformed contract vote", "proposal_id", externalID, "index", i, "error", err)
			continue
		}
		votes = append(votes, raw.toVote(externalID))
	}
	return votes
}

// ProposalCount returns how many proposals the contract holds
func (g *Gateway) ProposalCount(ctx context.Context) (uint64, error) {
	v, err := g.callLadder(ctx, []method{
		{name: methodProposalCount, parse: parseUint},
		{name: methodGetProposalCount, parse: parseUint},
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

// ProposalTitle returns the title of the proposal with the given contract ID
func (g *Gateway) ProposalTitle(ctx context.Context, contractID uint64) (string, error) {
	id := new(big.Int).SetUint64(contractID)
	v, err := g.callLadder(ctx, []method{
		{name: methodGetProposal, args: []any{id}, parse: parseProposalTitle},
		{name: methodProposals, args: []any{id}, parse: parseFlatTitle},
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// remember caches a successful resolution in both the mapping and the
// legacy cache
func (g *Gateway) remember(ctx context.Context, externalID string, contractID uint64) {
	if _, numeric := idbridge.ParseNumeric(externalID); numeric {
		return
	}
	g.bridge.CacheLegacy(ctx, externalID, contractID)
	g.bridge.StoreMapping(ctx, externalID, contractID)
}

func (g *Gateway) latestProposalID(ctx context.Context) (uint64, bool) {
	out, err := g.backend.Call(ctx, methodGetAllProposals)
	if err != nil {
		return 0, false
	}
	items, err := elements(out)
	if err != nil || len(items) == 0 {
		return 0, false
	}
	raw, err := decodeProposal(items[len(items)-1])
	if err != nil {
		return 0, false
	}
	return raw.Id.Uint64(), true
}

// proposalCreatedID reads the proposal ID from a ProposalCreated log
func proposalCreatedID(receipt *types.Receipt) (uint64, bool) {
	if receipt == nil {
		return 0, false
	}
	event := VotingABI.Events[eventProposalCreated]

	var indexed abi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}

	for _, log := range receipt.Logs {
		if log == nil || len(log.Topics) == 0 || log.Topics[0] != event.ID {
			continue
		}
		fields := map[string]any{}
		if err := abi.ParseTopicsIntoMap(fields, indexed, log.Topics[1:]); err != nil {
			slog.Warn("failed to decode ProposalCreated topics", "error", err)
			continue
		}
		if id, ok := fields["proposalId"].(*big.Int); ok && id.IsUint64() {
			return id.Uint64(), true
		}
	}
	return 0, false
}

func parseBool(out []any) (any, error) {
	if len(out) == 0 {
		return nil, errMalformed
	}
	b, ok := out[0].(bool)
	if !ok {
		return nil, fmt.Errorf("%w: expected bool, got %T", errMalformed, out[0])
	}
	return b, nil
}

func parseUint(out []any) (any, error) {
	if len(out) == 0 {
		return nil, errMalformed
	}
	n, ok := out[0].(*big.Int)
	if !ok || n == nil || n.Sign() < 0 || !n.IsUint64() {
		return nil, fmt.Errorf("%w: expected uint256, got %T", errMalformed, out[0])
	}
	return n.Uint64(), nil
}

func parseProposalTitle(out []any) (any, error) {
	if len(out) == 0 {
		return nil, errMalformed
	}
	raw, err := decodeProposal(out[0])
	if err != nil {
		return nil, err
	}
	return raw.Title, nil
}

// parseFlatTitle reads the title from the public proposals getter, which
// returns the struct fields as separate values
func parseFlatTitle(out []any) (any, error) {
	if len(out) < 3 {
		return nil, errMalformed
	}
	title, ok := out[2].(string)
	if !ok {
		return nil, fmt.Errorf("%w: expected string title, got %T", errMalformed, out[2])
	}
	return title, nil
}

func parseVoteExists(out []any) (any, error) {
	if len(out) == 0 {
		return nil, errMalformed
	}
	raw, err := decodeVote(out[0])
	if err != nil {
		return nil, err
	}
	return raw.Voter != (common.Address{}), nil
}

func parseFlatVoteExists(out []any) (any, error) {
	if len(out) < 2 {
		return nil, errMalformed
	}
	voter, ok := out[1].(common.Address)
	if !ok {
		return nil, fmt.Errorf("%w: expected address, got %T", errMalformed, out[1])
	}
	return voter != (common.Address{}), nil
}

var _ idbridge.Catalog = (*Gateway)(nil)
