// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrReadOnly   = errors.New("wallet cannot sign transactions")
	ErrNoAccounts = errors.New("wallet has no accounts")
)

// Wallet is the capability to act as an on-chain identity.
// It is passed explicitly to every operation that needs it.
type Wallet interface {
	// RequestAccounts asks the wallet to expose its accounts
	RequestAccounts(ctx context.Context) ([]string, error)
	// Accounts returns the currently exposed accounts without prompting
	Accounts(ctx context.Context) ([]string, error)
	// Signer returns transaction options for the active account
	Signer(ctx context.Context) (*bind.TransactOpts, error)
	// Subscribe registers fn for account changes and returns an unsubscribe func
	Subscribe(fn func(accounts []string)) func()
}

// notifier fans out account changes to subscribers
type notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func([]string)
}

func (n *notifier) Subscribe(fn func(accounts []string)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func([]string))
	}
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier) notify(accounts []string) {
	n.mu.Lock()
	subs := make([]func([]string), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	for _, fn := range subs {
		fn(append([]string(nil), accounts...))
	}
}

// Keyed is a wallet backed by a secp256k1 private key
type Keyed struct {
	notifier

	mu      sync.RWMutex
	key     *ecdsa.PrivateKey
	chainID *big.Int
}

// NewKeyed creates a wallet from a hex private key (with or without 0x)
func NewKeyed(hexKey string, chainID *big.Int) (*Keyed, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return NewKeyedFromKey(key, chainID), nil
}

func NewKeyedFromKey(key *ecdsa.PrivateKey, chainID *big.Int) *Keyed {
	if chainID == nil {
		chainID = big.NewInt(1)
	}
	return &Keyed{key: key, chainID: chainID}
}

// Address returns the lowercase address of the active key
func (k *Keyed) Address() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.key == nil {
		return ""
	}
	return strings.ToLower(crypto.PubkeyToAddress(k.key.PublicKey).Hex())
}

func (k *Keyed) RequestAccounts(ctx context.Context) ([]string, error) {
	return k.Accounts(ctx)
}

func (k *Keyed) Accounts(context.Context) ([]string, error) {
	addr := k.Address()
	if addr == "" {
		return nil, ErrNoAccounts
	}
	return []string{addr}, nil
}

func (k *Keyed) Signer(ctx context.Context) (*bind.TransactOpts, error) {
	k.mu.RLock()
	key, chainID := k.key, k.chainID
	k.mu.RUnlock()
	if key == nil {
		return nil, ErrNoAccounts
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}

// SwitchKey changes the active account and notifies subscribers.
// A nil key locks the wallet.
func (k *Keyed) SwitchKey(key *ecdsa.PrivateKey) {
	k.mu.Lock()
	k.key = key
	k.mu.Unlock()

	var accounts []string
	if addr := k.Address(); addr != "" {
		accounts = []string{addr}
	}
	k.notify(accounts)
}

// Static exposes fixed addresses and cannot sign.
// Used for read-only identities and tests.
type Static struct {
	notifier

	mu       sync.RWMutex
	accounts []string
}

func NewStatic(accounts ...string) *Static {
	return &Static{accounts: lowerAll(accounts)}
}

func (s *Static) RequestAccounts(ctx context.Context) ([]string, error) {
	accounts, _ := s.Accounts(ctx)
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	return accounts, nil
}

func (s *Static) Accounts(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.accounts...), nil
}

func (s *Static) Signer(context.Context) (*bind.TransactOpts, error) {
	return nil, ErrReadOnly
}

// SetAccounts replaces the exposed accounts and notifies subscribers
func (s *Static) SetAccounts(accounts ...string) {
	s.mu.Lock()
	s.accounts = lowerAll(accounts)
	current := append([]string(nil), s.accounts...)
	s.mu.Unlock()

	s.notify(current)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		out = append(out, strings.ToLower(a))
	}
	return out
}
