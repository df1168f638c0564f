// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	ErrReverted = errors.New("transaction reverted")
)

// Backend executes contract methods by name.
// Call runs a read-only method. Transact submits a transaction signed with
// opts and blocks until it is mined.
type Backend interface {
	Call(ctx context.Context, method string, args ...any) ([]any, error)
	Transact(ctx context.Context, opts *bind.TransactOpts, method string, args ...any) (*types.Transaction, *types.Receipt, error)
}

// EthBackend talks to a deployed contract over JSON-RPC
type EthBackend struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	address  common.Address
}

// DialBackend connects to the node at rpcURL and binds the contract at address
func DialBackend(ctx context.Context, rpcURL, address string) (*EthBackend, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid contract address %q", address)
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial node: %w", err)
	}

	addr := common.HexToAddress(address)
	return &EthBackend{
		client:   client,
		contract: bind.NewBoundContract(addr, VotingABI, client, client, client),
		address:  addr,
	}, nil
}

// ChainID asks the node which chain it serves
func (b *EthBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return b.client.ChainID(ctx)
}

func (b *EthBackend) Close() {
	b.client.Close()
}

func (b *EthBackend) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	var out []any
	if err := b.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *EthBackend) Transact(ctx context.Context, opts *bind.TransactOpts, method string, args ...any) (*types.Transaction, *types.Receipt, error) {
	signer := *opts
	signer.Context = ctx

	tx, err := b.contract.Transact(&signer, method, args...)
	if err != nil {
		return nil, nil, err
	}

	receipt, err := bind.WaitMined(ctx, b.client, tx)
	if err != nil {
		return tx, nil, fmt.Errorf("failed to wait for transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx, receipt, fmt.Errorf("%w: %s", ErrReverted, tx.Hash().Hex())
	}

	return tx, receipt, nil
}
