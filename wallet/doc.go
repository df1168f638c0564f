// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package wallet provides the signing identity used for contract writes.

A Wallet is passed explicitly to every operation that needs one. Keyed signs
with a secp256k1 key; Static only exposes addresses and is used for read-only
identities. Both notify subscribers when the active account changes.
*/
package wallet
