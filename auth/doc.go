// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identity helpers: record IDs, wallet address
normalization, and the creator check for ending proposals.

# Record IDs

Database records use random UUIDs:

	id, err := auth.GenerateID()

IsRecordID recognises that shape. Anything else reaching the database layer
is a contract-side identifier that still needs translating.

# Addresses

Addresses are compared case-insensitively everywhere. NormalizeAddress is the
single place that decides what "the same voter" means:

	auth.SameAddress("0xAbC...", "0xabc...") // true

ValidateAddress additionally checks the 20-byte hex form using go-ethereum's
common package.

# Creator Check

Only the creator of a proposal may end it:

	if err := auth.RequireCreator(p, caller); err != nil {
		return err // models.ErrNotAuthorized
	}
*/
package auth
