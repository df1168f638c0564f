// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/danielhkuo/votememaybe/appstate"
	"github.com/danielhkuo/votememaybe/cliparse"
	"github.com/danielhkuo/votememaybe/contract"
	"github.com/danielhkuo/votememaybe/db"
	"github.com/danielhkuo/votememaybe/idbridge"
	"github.com/danielhkuo/votememaybe/reconcile"
	"github.com/danielhkuo/votememaybe/store"
	"github.com/danielhkuo/votememaybe/wallet"
)

// app holds every long-lived dependency built from a Config
type app struct {
	cfg     cliparse.Config
	conn    *sql.DB
	db      *store.Store
	bridge  *idbridge.Bridge
	backend *contract.EthBackend
	gateway *contract.Gateway
	wallet  wallet.Wallet
	engine  *reconcile.Engine
	state   *appstate.Store
	closers []func() error
}

func openApp(ctx context.Context, cfg cliparse.Config) (*app, error) {
	a := &app{cfg: cfg}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.conn = conn
	a.closers = append(a.closers, conn.Close)

	if err := db.CreateSchema(conn); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)
	a.db = store.New(conn)

	kv, err := a.openMappings(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.bridge = idbridge.NewBridge(kv)

	chainID := big.NewInt(cfg.ChainID)
	if cfg.HasContract() {
		backend, err := contract.DialBackend(ctx, cfg.RPCURL, cfg.ContractAddress)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.backend = backend
		a.closers = append(a.closers, func() error { backend.Close(); return nil })
		a.gateway = contract.NewGateway(backend, a.bridge)

		if cfg.ChainID == 0 {
			if chainID, err = backend.ChainID(ctx); err != nil {
				a.Close()
				return nil, fmt.Errorf("failed to read chain id: %w", err)
			}
		}
		slog.Info("Contract configured", "address", cfg.ContractAddress, "chain_id", chainID)
	}

	switch {
	case cfg.PrivateKey != "":
		keyed, err := wallet.NewKeyed(cfg.PrivateKey, chainID)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.wallet = keyed
	case cfg.WalletAddress != "":
		a.wallet = wallet.NewStatic(cfg.WalletAddress)
	}

	if a.gateway != nil {
		a.engine = reconcile.NewEngine(a.db, a.gateway, a.bridge, cfg.RefreshVoteLimit)
	} else {
		a.engine = reconcile.NewEngine(a.db, nil, nil, cfg.RefreshVoteLimit)
	}
	a.state = appstate.New(a.engine, a.wallet)

	return a, nil
}

func (a *app) openMappings(ctx context.Context) (idbridge.KV, error) {
	switch a.cfg.MappingStore {
	case cliparse.MappingLevelDB:
		kv, err := idbridge.OpenLevelKV(a.cfg.MappingPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, kv.Close)
		return kv, nil
	case cliparse.MappingRedis:
		kv, err := idbridge.OpenRedisKV(ctx, a.cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, kv.Close)
		return kv, nil
	default:
		slog.Warn("Using in-memory id mappings; they are lost on exit")
		return idbridge.NewMemoryKV(), nil
	}
}

// start connects the configured wallet, if any, and loads the first state
func (a *app) start(ctx context.Context) error {
	if a.wallet != nil {
		user, err := a.state.Connect(ctx)
		if err != nil {
			return fmt.Errorf("failed to connect wallet: %w", err)
		}
		slog.Info("Wallet connected", "address", user.Address)
		return nil
	}
	return a.state.Refresh(ctx)
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
