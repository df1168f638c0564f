// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the votememaybe command: the VoteMeMaybe API server
and a few maintenance commands.

VoteMeMaybe records proposals and approve/reject votes in two places at once,
an Ethereum voting contract and a SQL database, and keeps a single view of
both. Either store may fail; an operation succeeds when at least one of them
accepts it.

# Starting the Server

The server reads flags, environment variables, an optional .env file and an
optional votememaybe.yaml:

	DATABASE_URL=votes.db go run .

Or with flags:

	go run . serve -p 3318 -t postgres -d "postgres://..."

With a contract:

	go run . serve -d votes.db \
		--rpc-url http://localhost:8545 \
		--contract-address 0x... \
		--private-key $KEY

# Commands

	serve                          run the HTTP API (default)
	proposals [--status s]         load and print proposals
	mappings get <id>              print the contract ID mapped to an identifier
	mappings set <id> <n>          record a mapping
	mappings resolve <id>          resolve an identifier and record the result

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - RPC_URL, CONTRACT_ADDRESS, CHAIN_ID: voting contract
  - PRIVATE_KEY or WALLET_ADDRESS: the identity the server acts as
  - MAPPING_STORE, MAPPING_PATH, REDIS_URL: identifier mapping storage
  - REFRESH_VOTE_LIMIT: proposals whose contract votes load on refresh

# Architecture

  - reconcile: dual-store mutation engine and refresh
  - appstate: shared state, wallet connection, provisional updates
  - contract: contract gateway over go-ethereum bindings
  - store: database gateway
  - idbridge: identifier mappings and resolution (LevelDB, Redis, memory)
  - wallet: signing identities
  - handlers, router, middleware: HTTP surface
  - models, auth, db, cliparse: shared types, identity rules, schema, config

See package documentation for each component.
*/
package main
