// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types shared by every
layer of the service.

# Domain Types

  - Proposal: title, description, status, counters, creator
  - Vote: one choice by one lowercase address on one proposal
  - User: the identity currently acting through the wallet
  - Mapping: database identifier to numeric contract identifier

Both Proposal and Vote carry a Provisional flag. It is set while a record
holds an optimistic update that has not yet been replaced by a refresh.

# Counters

Every store keeps its own counters and they are never recomputed across
stores. After a successful vote:

	TotalVotes == ApproveCount + RejectCount

VoteCount is a legacy combined counter. Records written by this service keep
it equal to ApproveCount.

# Request and Response Types

  - CreateProposalRequest: title, description
  - CastVoteRequest: voteType
  - EndProposalRequest: status
  - CreateProposalResponse, CastVoteResponse, StateResponse, ErrorResponse

# Analytics Types

  - Stats: totals and per-status counts
  - DistributionEntry: votes per proposal
  - ActivityEntry: votes per day

# Errors

Sentinel errors for local validation live in errors.go. IsValidation groups
them so callers can map them to client errors.

# Constants

Proposal status:

	StatusActive   = "active"
	StatusPending  = "pending"
	StatusPassed   = "passed"
	StatusRejected = "rejected"

Vote type:

	VoteApprove = "approve"
	VoteReject  = "reject"

The order of Statuses and VoteTypes matches the contract's uint8 enums.
*/
package models
