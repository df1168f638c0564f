// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Commands that own their flag set register the flags with BindFlags and call
Load after parsing:

	cliparse.BindFlags(cmd.Flags())
	cfg, err := cliparse.Load(cmd.Flags())

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL or SQLite connection string (required)
  - DatabaseType: sqlite (default) or postgres
  - RPCURL, ContractAddress: voting contract endpoint (optional, set together)
  - ChainID: chain for signing (0 asks the node)
  - PrivateKey: signing wallet key (optional)
  - WalletAddress: read-only wallet when no key is given
  - MappingStore: leveldb (default), redis or memory
  - MappingPath: LevelDB directory (default: votememaybe-mappings)
  - RedisURL: Redis URL for the redis mapping store
  - RefreshVoteLimit: proposals whose contract votes are fetched on refresh (default: 5)

# CLI Flags

	-p, --port               Server port
	-d, --database-url       Database URL
	-t, --database-type      Database type
	--rpc-url                Ethereum JSON-RPC endpoint
	--contract-address       Voting contract address
	--chain-id               Chain ID
	--private-key            Hex private key
	--wallet-address         Read-only wallet address
	--mapping-store          leveldb, redis or memory
	--mapping-path           LevelDB directory
	--redis-url              Redis URL
	--refresh-vote-limit     Contract vote fetch bound
	--env-file               Env file (default .env)
	--config                 YAML config file

# Environment Variables

Every flag falls back to the upper-case, underscore-separated environment
variable of the same name:

	PORT              → -p
	DATABASE_URL      → -d
	CONTRACT_ADDRESS  → --contract-address
	PRIVATE_KEY       → --private-key

Variables from the env file are loaded first and never replace ones that are
already set. A votememaybe.yaml in the working directory, or the file named by
--config, supplies values below the environment.

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if values are missing or inconsistent:

  - DATABASE_URL must be provided
  - RPC_URL and CONTRACT_ADDRESS are set together
  - addresses must be hex addresses
  - the redis mapping store needs REDIS_URL
*/
package cliparse
