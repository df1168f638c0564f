// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/danielhkuo/votememaybe/models"
)

var (
	errMalformed = errors.New("malformed contract record")
)

// rawProposal mirrors the contract's proposal tuple field for field
type rawProposal struct {
	Id           *big.Int
	Creator      common.Address
	Title        string
	Description  string
	ApproveCount *big.Int
	RejectCount  *big.Int
	TotalVotes   *big.Int
	CreatedAt    *big.Int
	Status       uint8
}

// rawVote mirrors the contract's vote tuple
type rawVote struct {
	ProposalId *big.Int
	Voter      common.Address
	VoteType   uint8
	VotedAt    *big.Int
}

// convert copies an ABI-decoded tuple into dst. abi.ConvertType panics on
// shape mismatch; the panic becomes an error.
func convert(in any, dst any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errMalformed, r)
		}
	}()
	if in == nil {
		return errMalformed
	}
	abi.ConvertType(in, dst)
	return nil
}

// elements returns the items of an ABI-decoded slice
func elements(out []any) ([]any, error) {
	if len(out) == 0 || out[0] == nil {
		return nil, errMalformed
	}
	v := reflect.ValueOf(out[0])
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: expected list, got %s", errMalformed, v.Kind())
	}
	items := make([]any, v.Len())
	for i := range items {
		items[i] = v.Index(i).Interface()
	}
	return items, nil
}

func decodeProposal(in any) (rawProposal, error) {
	var raw rawProposal
	if err := convert(in, &raw); err != nil {
		return rawProposal{}, err
	}
	for _, n := range []*big.Int{raw.Id, raw.ApproveCount, raw.RejectCount, raw.TotalVotes, raw.CreatedAt} {
		if n == nil || n.Sign() < 0 || !n.IsUint64() {
			return rawProposal{}, fmt.Errorf("%w: bad integer field", errMalformed)
		}
	}
	if int(raw.Status) >= len(models.Statuses) {
		return rawProposal{}, fmt.Errorf("%w: status %d out of range", errMalformed, raw.Status)
	}
	return raw, nil
}

func decodeVote(in any) (rawVote, error) {
	var raw rawVote
	if err := convert(in, &raw); err != nil {
		return rawVote{}, err
	}
	if raw.ProposalId == nil || raw.VotedAt == nil || !raw.VotedAt.IsUint64() {
		return rawVote{}, fmt.Errorf("%w: bad integer field", errMalformed)
	}
	return raw, nil
}

// toProposal maps a decoded record onto the domain type. id is the
// identifier the rest of the service knows the proposal by.
func (r rawProposal) toProposal(id string) models.Proposal {
	approve := int64(r.ApproveCount.Uint64())
	return models.Proposal{
		ID:           id,
		Title:        r.Title,
		Description:  r.Description,
		Status:       models.Statuses[r.Status],
		ApproveCount: approve,
		RejectCount:  int64(r.RejectCount.Uint64()),
		VoteCount:    approve,
		TotalVotes:   int64(r.TotalVotes.Uint64()),
		CreatedBy:    strings.ToLower(r.Creator.Hex()),
		CreatedAt:    unixToISO(r.CreatedAt.Uint64()),
	}
}

func (r rawVote) toVote(proposalID string) models.Vote {
	voteType := models.VoteApprove
	if int(r.VoteType) < len(models.VoteTypes) {
		voteType = models.VoteTypes[r.VoteType]
	}
	return models.Vote{
		ProposalID:   proposalID,
		VoterAddress: strings.ToLower(r.Voter.Hex()),
		VoteType:     voteType,
		VotedAt:      unixToISO(r.VotedAt.Uint64()),
	}
}

// readableTitle returns the title of a record whose tuple converts even
// though some other field is unusable, or "" when nothing converts
func readableTitle(in any) string {
	var raw rawProposal
	if err := convert(in, &raw); err != nil {
		return ""
	}
	return raw.Title
}

// placeholderProposal stands in for a record that could not be decoded. A
// readable title is kept.
func placeholderProposal(title string, now time.Time) models.Proposal {
	if title == "" {
		title = "Unknown Proposal"
	}
	return models.Proposal{
		ID:        "0",
		Title:     title,
		Status:    models.StatusActive,
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
}

func unixToISO(sec uint64) string {
	return time.Unix(int64(sec), 0).UTC().Format(time.RFC3339)
}

func indexOf(values []string, v string) (uint8, bool) {
	for i, candidate := range values {
		if candidate == v {
			return uint8(i), true
		}
	}
	return 0, false
}
