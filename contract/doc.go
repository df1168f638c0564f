// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package contract exposes the on-chain voting contract with the same
operations as the database store.

# Backends

The Gateway talks to a Backend. EthBackend binds the embedded ABI to a
deployed contract with go-ethereum:

	backend, err := contract.DialBackend(ctx, rpcURL, contractAddress)
	gw := contract.NewGateway(backend, bridge)

Transactions block until mined and fail on a reverted receipt. Tests supply
their own Backend.

# Method Ladders

Deployed versions of the contract disagree on method names. Each operation
lists its candidates in order and the first that succeeds wins:

	cast vote:   castVoteWithType, castVote, vote(id,type), vote(id) (approve only)
	has voted:   hasVoted, hasVotedOnProposal, hasUserVoted, getVoteByVoter, votes
	count:       proposalCount, getProposalCount
	title by id: getProposal, proposals

When every candidate fails the caller gets a *LadderError. Its message is the
first failure and it matches ErrNoMethod with errors.Is. A revert mentioning
"already voted" stops the ladder and is reported as models.ErrDuplicateVote.

# Identifiers

Every operation takes the identifier the rest of the service uses and
resolves it through the idbridge policy. The Gateway is the idbridge.Catalog
used for the title search.

# Degradation

Reads never return errors. ListProposals replaces undecodable records with a
placeholder (ID "0", active, empty creator) and returns an empty list when
the call fails. HasVoted answers false when no variant answers.

# Creating Proposals

The proposal ID comes from the ProposalCreated event. Without it the
transaction hash is kept, the newest listed proposal is assumed to be the
new one, and as a last resort a millisecond timestamp is used.
*/
package contract
