// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/votememaybe/idbridge"
	"github.com/danielhkuo/votememaybe/models"
	"github.com/danielhkuo/votememaybe/wallet"
)

// fakeBackend implements only the methods it is given; everything else
// fails the way a deployment lacking that method would.
type fakeBackend struct {
	calls map[string]func(args []any) ([]any, error)
	txs   map[string]func(args []any) (*types.Receipt, error)

	called []string
	sent   []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls: map[string]func([]any) ([]any, error){},
		txs:   map[string]func([]any) (*types.Receipt, error){},
	}
}

func (f *fakeBackend) Call(_ context.Context, method string, args ...any) ([]any, error) {
	f.called = append(f.called, method)
	fn, ok := f.calls[method]
	if !ok {
		return nil, fmt.Errorf("execution reverted: %s not implemented", method)
	}
	return fn(args)
}

func (f *fakeBackend) Transact(_ context.Context, _ *bind.TransactOpts, method string, args ...any) (*types.Transaction, *types.Receipt, error) {
	f.sent = append(f.sent, method)
	fn, ok := f.txs[method]
	if !ok {
		return nil, nil, fmt.Errorf("execution reverted: %s not implemented", method)
	}
	receipt, err := fn(args)
	if err != nil {
		return nil, nil, err
	}
	tx := types.NewTx(&types.LegacyTx{Nonce: uint64(len(f.sent))})
	return tx, receipt, nil
}

func okReceipt([]any) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func testWallet(t *testing.T) *wallet.Keyed {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return wallet.NewKeyedFromKey(key, big.NewInt(1337))
}

func sampleProposal(id uint64, title string, status uint8) rawProposal {
	return rawProposal{
		Id:           new(big.Int).SetUint64(id),
		Creator:      common.HexToAddress("0x52908400098527886E0F7030069857D2E4169EE7"),
		Title:        title,
		Description:  "description of " + title,
		ApproveCount: big.NewInt(2),
		RejectCount:  big.NewInt(1),
		TotalVotes:   big.NewInt(3),
		CreatedAt:    big.NewInt(1700000000),
		Status:       status,
	}
}

func proposalCreatedLog(t *testing.T, id uint64, creator common.Address, title string) *types.Log {
	t.Helper()
	event := VotingABI.Events[eventProposalCreated]
	data, err := event.Inputs.NonIndexed().Pack(title)
	require.NoError(t, err)
	return &types.Log{
		Topics: []common.Hash{
			event.ID,
			common.BigToHash(new(big.Int).SetUint64(id)),
			common.BytesToHash(creator.Bytes()),
		},
		Data: data,
	}
}

func newTestGateway(backend Backend) (*Gateway, *idbridge.Bridge) {
	bridge := idbridge.NewBridge(idbridge.NewMemoryKV())
	g := NewGateway(backend, bridge)
	g.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return g, bridge
}

func TestEmbeddedABI(t *testing.T) {
	for _, name := range []string{
		methodGetAllProposals, methodGetProposal, methodProposals, methodGetProposalVotes,
		methodHasVoted, methodHasVotedOnProposal, methodHasUserVoted, methodGetVoteByVoter,
		methodVotes, methodProposalCount, methodGetProposalCount, methodCreateProposal,
		methodCastVote, methodCastVoteWithType, methodVoteWithType, methodVoteApproveOnly,
		methodUpdateProposalStatus,
	} {
		_, ok := VotingABI.Methods[name]
		assert.True(t, ok, "method %s missing from ABI", name)
	}

	assert.Len(t, VotingABI.Methods[methodVoteWithType].Inputs, 2)
	assert.Len(t, VotingABI.Methods[methodVoteApproveOnly].Inputs, 1)
	_, ok := VotingABI.Events[eventProposalCreated]
	assert.True(t, ok)
}

func TestListProposals(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	backend.calls[methodGetAllProposals] = func([]any) ([]any, error) {
		return []any{[]rawProposal{
			sampleProposal(1, "First", 0),
			sampleProposal(2, "Second", 2),
		}}, nil
	}
	g, bridge := newTestGateway(backend)
	bridge.StoreMapping(ctx, "550e8400-e29b-41d4-a716-446655440000", 2)

	proposals := g.ListProposals(ctx)

	require.Len(t, proposals, 2)
	assert.Equal(t, "1", proposals[0].ID)
	assert.Equal(t, models.StatusActive, proposals[0].Status)
	assert.Equal(t, "0x52908400098527886e0f7030069857d2e4169ee7", proposals[0].CreatedBy)
	assert.Equal(t, "2023-11-14T22:13:20Z", proposals[0].CreatedAt)
	assert.Equal(t, int64(2), proposals[0].ApproveCount)
	assert.Equal(t, int64(2), proposals[0].VoteCount)
	assert.Equal(t, int64(3), proposals[0].TotalVotes)

	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", proposals[1].ID, "mapped proposals use their database id")
	assert.Equal(t, models.StatusPassed, proposals[1].Status)
}

func TestListProposalsMalformedRecord(t *testing.T) {
	backend := newFakeBackend()
	bad := sampleProposal(3, "Bad status", 9)
	backend.calls[methodGetAllProposals] = func([]any) ([]any, error) {
		return []any{[]any{
			sampleProposal(1, "One", 0),
			sampleProposal(2, "Two", 0),
			"not a proposal",
			sampleProposal(4, "Four", 1),
			bad,
		}}, nil
	}
	g, _ := newTestGateway(backend)

	proposals := g.ListProposals(context.Background())

	require.Len(t, proposals, 5)
	assert.Equal(t, "1", proposals[0].ID)
	assert.Equal(t, "2", proposals[1].ID)
	assert.Equal(t, "0", proposals[2].ID)
	assert.Equal(t, models.StatusActive, proposals[2].Status)
	assert.Equal(t, "", proposals[2].CreatedBy)
	assert.Equal(t, int64(0), proposals[2].TotalVotes)
	assert.Equal(t, "4", proposals[3].ID)
	assert.Equal(t, models.StatusPending, proposals[3].Status)
	assert.Equal(t, "0", proposals[4].ID, "out of range status is malformed")

	assert.Equal(t, "Unknown Proposal", proposals[2].Title)
	assert.Equal(t, "Bad status", proposals[4].Title, "readable title survives")
}

func TestPlaceholderKeepsReadableTitle(t *testing.T) {
	now := time.Unix(1700000000, 0)

	negative := sampleProposal(7, "Negative count", 0)
	negative.ApproveCount = big.NewInt(-1)
	p := placeholderProposal(readableTitle(negative), now)
	assert.Equal(t, "Negative count", p.Title)
	assert.Equal(t, "0", p.ID)
	assert.Equal(t, models.StatusActive, p.Status)
	assert.Equal(t, "2023-11-14T22:13:20Z", p.CreatedAt)

	untitled := sampleProposal(8, "", 9)
	assert.Equal(t, "Unknown Proposal", placeholderProposal(readableTitle(untitled), now).Title)
	assert.Equal(t, "Unknown Proposal", placeholderProposal(readableTitle(nil), now).Title)
	assert.Equal(t, "Unknown Proposal", placeholderProposal(readableTitle(42), now).Title)
}

func TestListProposalsUnavailable(t *testing.T) {
	g, _ := newTestGateway(newFakeBackend())

	proposals := g.ListProposals(context.Background())

	assert.NotNil(t, proposals)
	assert.Empty(t, proposals)
}

func TestCastVoteFallbackOrder(t *testing.T) {
	backend := newFakeBackend()
	var gotArgs []any
	backend.txs[methodVoteWithType] = func(args []any) (*types.Receipt, error) {
		gotArgs = args
		return okReceipt(args)
	}
	g, _ := newTestGateway(backend)

	err := g.CastVote(context.Background(), testWallet(t), "7", "Title", models.VoteReject)

	require.NoError(t, err)
	assert.Equal(t, []string{methodCastVoteWithType, methodCastVote, methodVoteWithType}, backend.sent)
	require.Len(t, gotArgs, 2)
	assert.Equal(t, 0, gotArgs[0].(*big.Int).Cmp(big.NewInt(7)))
	assert.Equal(t, uint8(1), gotArgs[1])
}

func TestCastVoteApproveOnlyLastResort(t *testing.T) {
	tests := []struct {
		name     string
		voteType string
		wantSent []string
		wantErr  bool
	}{
		{
			name:     "approve reaches vote(uint256)",
			voteType: models.VoteApprove,
			wantSent: []string{methodCastVoteWithType, methodCastVote, methodVoteWithType, methodVoteApproveOnly},
		},
		{
			name:     "reject never uses vote(uint256)",
			voteType: models.VoteReject,
			wantSent: []string{methodCastVoteWithType, methodCastVote, methodVoteWithType},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend()
			backend.txs[methodVoteApproveOnly] = okReceipt
			g, _ := newTestGateway(backend)

			err := g.CastVote(context.Background(), testWallet(t), "7", "", tt.voteType)

			assert.Equal(t, tt.wantSent, backend.sent)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNoMethod)
			var ladderErr *LadderError
			require.True(t, errors.As(err, &ladderErr))
			assert.Len(t, ladderErr.Errs, 3)
			assert.Contains(t, err.Error(), "castVoteWithType not implemented", "message carries the first failure")
		})
	}
}

func TestCastVoteAlreadyVoted(t *testing.T) {
	t.Run("pre-check positive", func(t *testing.T) {
		backend := newFakeBackend()
		backend.calls[methodHasVoted] = func([]any) ([]any, error) { return []any{true}, nil }
		backend.txs[methodCastVoteWithType] = okReceipt
		g, _ := newTestGateway(backend)

		err := g.CastVote(context.Background(), testWallet(t), "7", "", models.VoteApprove)

		assert.ErrorIs(t, err, models.ErrDuplicateVote)
		assert.Empty(t, backend.sent)
	})

	t.Run("revert reason stops the ladder", func(t *testing.T) {
		backend := newFakeBackend()
		backend.txs[methodCastVoteWithType] = func([]any) (*types.Receipt, error) {
			return nil, errors.New("execution reverted: Already voted")
		}
		backend.txs[methodCastVote] = okReceipt
		g, _ := newTestGateway(backend)

		err := g.CastVote(context.Background(), testWallet(t), "7", "", models.VoteApprove)

		assert.ErrorIs(t, err, models.ErrDuplicateVote)
		assert.True(t, IsAlreadyVoted(err))
		assert.Equal(t, []string{methodCastVoteWithType}, backend.sent)
	})
}

func TestHasVotedFailOpen(t *testing.T) {
	ctx := context.Background()
	w := testWallet(t)
	backend := newFakeBackend()
	backend.txs[methodCastVoteWithType] = okReceipt
	g, _ := newTestGateway(backend)

	assert.False(t, g.HasVoted(ctx, "7", "", w.Address()))

	require.NoError(t, g.CastVote(ctx, w, "7", "", models.VoteApprove))
	assert.Equal(t, []string{methodCastVoteWithType}, backend.sent, "a failed check must not block the vote")
}

func TestHasVotedLadder(t *testing.T) {
	voter := "0xde709f2102306220921060314715629080e2fb77"
	tests := []struct {
		name  string
		setup func(b *fakeBackend)
		want  bool
	}{
		{
			name: "hasVotedOnProposal answers",
			setup: func(b *fakeBackend) {
				b.calls[methodHasVotedOnProposal] = func([]any) ([]any, error) { return []any{true}, nil }
			},
			want: true,
		},
		{
			name: "hasUserVoted answers false",
			setup: func(b *fakeBackend) {
				b.calls[methodHasUserVoted] = func([]any) ([]any, error) { return []any{false}, nil }
			},
			want: false,
		},
		{
			name: "vote record lookup",
			setup: func(b *fakeBackend) {
				b.calls[methodGetVoteByVoter] = func(args []any) ([]any, error) {
					return []any{rawVote{
						ProposalId: big.NewInt(7),
						Voter:      args[1].(common.Address),
						VotedAt:    big.NewInt(1),
					}}, nil
				}
			},
			want: true,
		},
		{
			name: "public votes getter with empty voter",
			setup: func(b *fakeBackend) {
				b.calls[methodVotes] = func([]any) ([]any, error) {
					return []any{big.NewInt(0), common.Address{}, uint8(0), big.NewInt(0)}, nil
				}
			},
			want: false,
		},
		{
			name: "wrong result type falls through",
			setup: func(b *fakeBackend) {
				b.calls[methodHasVoted] = func([]any) ([]any, error) { return []any{"yes"}, nil }
				b.calls[methodHasUserVoted] = func([]any) ([]any, error) { return []any{true}, nil }
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend()
			tt.setup(backend)
			g, _ := newTestGateway(backend)

			assert.Equal(t, tt.want, g.HasVoted(context.Background(), "7", "", voter))
		})
	}
}

func TestCreateProposalRecovery(t *testing.T) {
	creator := common.HexToAddress("0x52908400098527886E0F7030069857D2E4169EE7")

	t.Run("event", func(t *testing.T) {
		backend := newFakeBackend()
		backend.txs[methodCreateProposal] = func(args []any) (*types.Receipt, error) {
			assert.Equal(t, []any{"Fund the park", "Trees"}, args)
			return &types.Receipt{
				Status: types.ReceiptStatusSuccessful,
				Logs:   []*types.Log{{Topics: []common.Hash{{}}}, proposalCreatedLog(t, 12, creator, "Fund the park")},
			}, nil
		}
		g, _ := newTestGateway(backend)

		created, err := g.CreateProposal(context.Background(), testWallet(t), "Fund the park", "Trees")

		require.NoError(t, err)
		assert.Equal(t, "12", created.ID)
		assert.Equal(t, uint64(12), created.ContractID)
		assert.Equal(t, SourceEvent, created.Source)
		assert.True(t, strings.HasPrefix(created.TxHash, "0x"))
	})

	t.Run("latest proposal", func(t *testing.T) {
		backend := newFakeBackend()
		backend.txs[methodCreateProposal] = okReceipt
		backend.calls[methodGetAllProposals] = func([]any) ([]any, error) {
			return []any{[]rawProposal{sampleProposal(4, "a", 0), sampleProposal(5, "b", 0)}}, nil
		}
		g, _ := newTestGateway(backend)

		created, err := g.CreateProposal(context.Background(), testWallet(t), "b", "")

		require.NoError(t, err)
		assert.Equal(t, "5", created.ID)
		assert.Equal(t, SourceLatest, created.Source)
		assert.NotEmpty(t, created.TxHash)
	})

	t.Run("timestamp", func(t *testing.T) {
		backend := newFakeBackend()
		backend.txs[methodCreateProposal] = okReceipt
		g, _ := newTestGateway(backend)

		created, err := g.CreateProposal(context.Background(), testWallet(t), "b", "")

		require.NoError(t, err)
		assert.Equal(t, "1700000000123", created.ID)
		assert.Equal(t, uint64(0), created.ContractID)
		assert.Equal(t, SourceTimestamp, created.Source)
	})

	t.Run("read-only wallet", func(t *testing.T) {
		g, _ := newTestGateway(newFakeBackend())

		_, err := g.CreateProposal(context.Background(), wallet.NewStatic("0xabc"), "b", "")

		assert.ErrorIs(t, err, wallet.ErrReadOnly)
	})
}

func TestResolveByTitle(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	backend.calls[methodGetProposalCount] = func([]any) ([]any, error) { return []any{big.NewInt(3)}, nil }
	backend.calls[methodProposals] = func(args []any) ([]any, error) {
		id := args[0].(*big.Int).Uint64()
		title := map[uint64]string{1: "Alpha", 2: "Beta", 3: "Gamma"}[id]
		return []any{args[0], common.Address{}, title, "", big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0), uint8(0)}, nil
	}
	var target *big.Int
	backend.txs[methodCastVoteWithType] = func(args []any) (*types.Receipt, error) {
		target = args[0].(*big.Int)
		return okReceipt(args)
	}
	g, bridge := newTestGateway(backend)

	err := g.CastVote(ctx, testWallet(t), "jdbetaproposal", "beta", models.VoteApprove)

	require.NoError(t, err)
	assert.Equal(t, int64(2), target.Int64())
	assert.Equal(t, uint64(2), bridge.LookupContractID(ctx, "jdbetaproposal"))
	assert.Equal(t, uint64(2), bridge.LookupLegacy(ctx, "jdbetaproposal"))
}

func TestVotesForProposal(t *testing.T) {
	backend := newFakeBackend()
	voter := common.HexToAddress("0xDE709F2102306220921060314715629080E2FB77")
	backend.calls[methodGetProposalVotes] = func(args []any) ([]any, error) {
		id := args[0].(*big.Int)
		return []any{[]any{
			rawVote{ProposalId: id, Voter: voter, VoteType: 1, VotedAt: big.NewInt(1700000000)},
			rawVote{ProposalId: id, Voter: voter, VoteType: 7, VotedAt: big.NewInt(1700000000)},
			rawVote{},
		}}, nil
	}
	g, bridge := newTestGateway(backend)
	bridge.StoreMapping(context.Background(), "db-id", 3)

	votes := g.VotesForProposal(context.Background(), "db-id", "")

	require.Len(t, votes, 2, "undecodable votes are skipped")
	assert.Equal(t, "db-id", votes[0].ProposalID)
	assert.Equal(t, "0xde709f2102306220921060314715629080e2fb77", votes[0].VoterAddress)
	assert.Equal(t, models.VoteReject, votes[0].VoteType)
	assert.Equal(t, models.VoteApprove, votes[1].VoteType, "unknown vote types read as approve")
}

func TestUpdateStatus(t *testing.T) {
	backend := newFakeBackend()
	var gotArgs []any
	backend.txs[methodUpdateProposalStatus] = func(args []any) (*types.Receipt, error) {
		gotArgs = args
		return okReceipt(args)
	}
	g, _ := newTestGateway(backend)

	require.NoError(t, g.UpdateStatus(context.Background(), testWallet(t), "4", "", models.StatusRejected))
	assert.Equal(t, uint8(3), gotArgs[1])

	err := g.UpdateStatus(context.Background(), testWallet(t), "4", "", "archived")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}
