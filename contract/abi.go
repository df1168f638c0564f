// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import (
	_ "embed"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// voting.abi.json lists every method variant seen across deployed
// versions of the voting contract. Any single deployment implements a
// subset of it.
//
//go:embed voting.abi.json
var votingABIJSON string

// Method names. go-ethereum suffixes overloads in declaration order, so
// vote(uint256,uint8) is "vote" and vote(uint256) is "vote0".
const (
	methodGetAllProposals      = "getAllProposals"
	methodGetProposal          = "getProposal"
	methodProposals            = "proposals"
	methodGetProposalVotes     = "getProposalVotes"
	methodHasVoted             = "hasVoted"
	methodHasVotedOnProposal   = "hasVotedOnProposal"
	methodHasUserVoted         = "hasUserVoted"
	methodGetVoteByVoter       = "getVoteByVoter"
	methodVotes                = "votes"
	methodProposalCount        = "proposalCount"
	methodGetProposalCount     = "getProposalCount"
	methodCreateProposal       = "createProposal"
	methodCastVote             = "castVote"
	methodCastVoteWithType     = "castVoteWithType"
	methodVoteWithType         = "vote"
	methodVoteApproveOnly      = "vote0"
	methodUpdateProposalStatus = "updateProposalStatus"

	eventProposalCreated = "ProposalCreated"
)

// VotingABI is the parsed contract interface
var VotingABI = mustParseABI(votingABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("contract: invalid embedded ABI: " + err.Error())
	}
	return parsed
}
