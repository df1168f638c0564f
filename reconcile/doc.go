// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package reconcile keeps the contract and the database in step.

Every mutation goes through both stores where it can. The two stores never
share a transaction, so the engine validates against the merged in-memory
state, writes to the contract on a best-effort basis, always writes to the
database, and then replaces the in-memory state with a fresh read.

# Phases

Each mutation walks these phases and records them in its Outcome:

	idle -> validating -> contract_attempt -> database_attempt -> reconciled
	                  \                                       \
	                   failed                                  failed

Validating touches no store. It fails with models.ErrNotConnected,
models.ErrProposalNotFound, models.ErrDuplicateVote or
models.ErrProposalNotActive.

The contract attempt only runs when the session has a wallet and a contract
gateway is configured. A contract that reports "already voted" ends the
operation there. Any other contract error is recorded and the database
attempt runs anyway.

# Results

	contract   database   result
	ok         ok         success
	failed     ok         success
	ok         failed     success
	failed     failed     *AttemptError (message of the first failure)
	skipped    failed     *AttemptError

AttemptError unwraps to every failure, so errors.Is(err,
models.ErrDuplicateVote) works whichever store reported it.

# Two-Phase Updates

A successful mutation first patches the Ledger with records marked
Provisional. Refresh then replaces the whole Ledger with authoritative data.
Callers should treat provisional records as eventually consistent.

# Refresh

	session with wallet, contract configured:
	    proposals = contract.ListProposals
	    votes     = contract.VotesForProposal for the first N proposals
	    empty proposal list -> database snapshot
	otherwise:
	    database snapshot

N defaults to DefaultVoteLimit. Vote reads run concurrently with a small
bound.

# Identifiers

The database attempt needs a database ID. The proposal's ID is used when it
is already a database ID; otherwise a database-ID proposal in the ledger with
the same title, or whose ID contains the given one, is used; otherwise the
given ID is tried as is. When a proposal is created in both stores, the
mapping between the two IDs is stored through the Mapper.
*/
package reconcile
