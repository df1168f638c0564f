// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package idbridge

import (
	"context"
	"log/slog"
	"math/big"
	"regexp"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultScanDepth is how many proposals the title search walks when the
// contract does not report a count.
const DefaultScanDepth = 20

// Step names the rule that produced a resolution
type Step string

const (
	StepNumeric        Step = "numeric"
	StepMapping        Step = "mapping"
	StepLegacy         Step = "legacy"
	StepTrailingDigits Step = "trailing-digits"
	StepTitle          Step = "title"
	StepDigits         Step = "digits"
	StepHash           Step = "hash"
)

// Catalog enumerates contract proposals for the title search
type Catalog interface {
	ProposalCount(ctx context.Context) (uint64, error)
	ProposalTitle(ctx context.Context, contractID uint64) (string, error)
}

var (
	numericPattern  = regexp.MustCompile(`^\d+$`)
	trailingDigits  = regexp.MustCompile(`\d+$`)
	nonDigitPattern = regexp.MustCompile(`\D`)
)

// Resolver turns any external identifier into a numeric contract ID.
// It never fails: the last rule always produces a value in [1, 100].
type Resolver struct {
	bridge  *Bridge
	catalog Catalog
}

// NewResolver builds a resolver. catalog may be nil, which disables the
// title search.
func NewResolver(bridge *Bridge, catalog Catalog) *Resolver {
	return &Resolver{bridge: bridge, catalog: catalog}
}

// Resolve applies the resolution rules in order. title is optional.
// Every derived result is written back to the bridge before returning.
func (r *Resolver) Resolve(ctx context.Context, externalID, title string) (uint64, Step) {
	if n, ok := ParseNumeric(externalID); ok {
		return n, StepNumeric
	}

	if n := r.bridge.LookupContractID(ctx, externalID); n != 0 {
		return n, StepMapping
	}

	n, step := r.derive(ctx, externalID, title)
	if step != StepLegacy {
		r.bridge.CacheLegacy(ctx, externalID, n)
	}
	r.bridge.StoreMapping(ctx, externalID, n)

	slog.Debug("resolved contract id", "external_id", externalID, "contract_id", n, "step", step)
	return n, step
}

func (r *Resolver) derive(ctx context.Context, externalID, title string) (uint64, Step) {
	if n := r.bridge.LookupLegacy(ctx, externalID); n != 0 {
		return n, StepLegacy
	}

	if m := trailingDigits.FindString(externalID); m != "" {
		if n, err := strconv.ParseUint(m, 10, 64); err == nil && n > 0 {
			return n, StepTrailingDigits
		}
	}

	if title != "" && r.catalog != nil {
		if n, ok := r.searchTitle(ctx, title); ok {
			return n, StepTitle
		}
	}

	if digits := nonDigitPattern.ReplaceAllString(externalID, ""); digits != "" {
		return boundedDigits(digits), StepDigits
	}

	return hashID(externalID), StepHash
}

func (r *Resolver) searchTitle(ctx context.Context, title string) (uint64, bool) {
	count, err := r.catalog.ProposalCount(ctx)
	if err != nil || count == 0 {
		count = DefaultScanDepth
	}

	want := foldTitle(title)
	for i := count; i >= 1; i-- {
		if ctx.Err() != nil {
			return 0, false
		}
		got, err := r.catalog.ProposalTitle(ctx, i)
		if err != nil {
			continue
		}
		if foldTitle(got) == want {
			return i, true
		}
	}
	return 0, false
}

// foldTitle compares titles case-insensitively after NFC normalization
func foldTitle(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// boundedDigits keeps a digit string within [1, 1000]
func boundedDigits(digits string) uint64 {
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return 1
	}
	if n.Cmp(big.NewInt(1000)) > 0 {
		n.Mod(n, big.NewInt(1000))
	}
	if n.Sign() < 1 {
		return 1
	}
	return n.Uint64()
}

// hashID maps any string to [1, 100] using a 32-bit polynomial hash over
// UTF-16 code units.
func hashID(s string) uint64 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return uint64(abs%100) + 1
}

// ParseNumeric parses a plain non-negative integer identifier
func ParseNumeric(id string) (uint64, bool) {
	if !numericPattern.MatchString(id) {
		return 0, false
	}
	n, err := strconv.ParseUint(id, 10, 64)
	return n, err == nil
}
