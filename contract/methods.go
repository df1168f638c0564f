// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/danielhkuo/votememaybe/models"
)

var (
	ErrNoMethod = errors.New("no contract method variant succeeded")
)

// method is one entry of a fallback ladder: a contract method name, its
// arguments, and how to read its result. parse may be nil for transactions.
type method struct {
	name  string
	args  []any
	parse func(out []any) (any, error)
}

// LadderError reports that every method in a ladder failed.
// Its message is that of the first failure.
type LadderError struct {
	Methods []string
	Errs    []error
}

func (e *LadderError) Error() string {
	if len(e.Errs) == 0 {
		return ErrNoMethod.Error()
	}
	return fmt.Sprintf("%s (tried %s)", e.Errs[0].Error(), strings.Join(e.Methods, ", "))
}

func (e *LadderError) Unwrap() []error {
	return append([]error{ErrNoMethod}, e.Errs...)
}

// callLadder runs read-only methods in order and returns the first parsed result
func (g *Gateway) callLadder(ctx context.Context, ladder []method) (any, error) {
	ladderErr := &LadderError{}
	for _, m := range ladder {
		ladderErr.Methods = append(ladderErr.Methods, m.name)

		out, err := g.backend.Call(ctx, m.name, m.args...)
		if err == nil && m.parse != nil {
			var v any
			v, err = m.parse(out)
			if err == nil {
				return v, nil
			}
		} else if err == nil {
			return out, nil
		}

		slog.Debug("contract method failed, trying next", "method", m.name, "error", err)
		ladderErr.Errs = append(ladderErr.Errs, fmt.Errorf("%s: %w", m.name, err))
	}
	return nil, ladderErr
}

// transactLadder submits methods in order until one is mined successfully.
// A revert reporting a duplicate vote ends the ladder at once.
func (g *Gateway) transactLadder(ctx context.Context, opts *bind.TransactOpts, ladder []method) (*types.Transaction, *types.Receipt, string, error) {
	ladderErr := &LadderError{}
	for _, m := range ladder {
		ladderErr.Methods = append(ladderErr.Methods, m.name)

		tx, receipt, err := g.backend.Transact(ctx, opts, m.name, m.args...)
		if err == nil {
			return tx, receipt, m.name, nil
		}
		if IsAlreadyVoted(err) {
			return nil, nil, m.name, fmt.Errorf("%w: %s: %v", models.ErrDuplicateVote, m.name, err)
		}

		slog.Debug("contract transaction failed, trying next", "method", m.name, "error", err)
		ladderErr.Errs = append(ladderErr.Errs, fmt.Errorf("%s: %w", m.name, err))
	}
	return nil, nil, "", ladderErr
}

// IsAlreadyVoted reports whether err says the voter already voted, either as
// the sentinel or as a contract revert reason.
func IsAlreadyVoted(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, models.ErrDuplicateVote) || strings.Contains(strings.ToLower(err.Error()), "already voted") {
		return true
	}
	switch e := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if IsAlreadyVoted(inner) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return IsAlreadyVoted(e.Unwrap())
	}
	return false
}
