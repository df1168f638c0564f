// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package appstate holds the application's view of proposals, votes and the
connected identity.

A Store is the reconcile.Ledger for its engine: mutations validate against
it, patch it provisionally and finally replace it with a refresh. Reads
always return copies.

# Identity

Connect asks the configured wallet for its accounts and adopts the first.
The store follows account switches until Disconnect. Without a connected
identity every mutation fails with models.ErrNotConnected and refreshes read
only the database.

# Example

	state := appstate.New(engine, w)
	if _, err := state.Connect(ctx); err != nil {
		return err
	}
	out, err := state.Vote(ctx, proposalID, models.VoteApprove)
*/
package appstate
