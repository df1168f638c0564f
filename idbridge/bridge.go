// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package idbridge

import (
	"context"
	"log/slog"
	"strconv"
)

// Key prefixes in the KV store
const (
	forwardPrefix = "id_mapping_"
	reversePrefix = "reverse_id_mapping_"
	legacyPrefix  = "proposal_id_mapping_"
)

// Bridge records which numeric contract ID belongs to which database ID.
// Mapping writes never fail the caller: storage errors are logged and the
// operation that triggered them carries on.
type Bridge struct {
	kv KV
}

func NewBridge(kv KV) *Bridge {
	return &Bridge{kv: kv}
}

// StoreMapping records externalID <-> contractID in both directions.
// Repeating an identical mapping is a no-op. An established mapping is never
// replaced by a conflicting one.
func (b *Bridge) StoreMapping(ctx context.Context, externalID string, contractID uint64) {
	if externalID == "" || contractID == 0 {
		return
	}
	contractKey := strconv.FormatUint(contractID, 10)

	existing, ok, err := b.kv.Get(ctx, forwardPrefix+externalID)
	if err != nil {
		slog.Error("failed to read id mapping", "error", err, "external_id", externalID)
		return
	}
	if ok && existing != contractKey {
		slog.Warn("id mapping conflict, keeping existing",
			"external_id", externalID,
			"existing", existing,
			"rejected", contractID,
		)
		return
	}

	owner, hasOwner, err := b.kv.Get(ctx, reversePrefix+contractKey)
	if err != nil {
		slog.Error("failed to read reverse id mapping", "error", err, "contract_id", contractID)
		return
	}
	if hasOwner && owner != externalID {
		slog.Warn("contract id already mapped to another identifier",
			"contract_id", contractID,
			"existing", owner,
			"rejected", externalID,
		)
		return
	}

	if !ok {
		if err := b.kv.Set(ctx, forwardPrefix+externalID, contractKey); err != nil {
			slog.Error("failed to store id mapping", "error", err, "external_id", externalID)
			return
		}
	}
	if !hasOwner {
		if err := b.kv.Set(ctx, reversePrefix+contractKey, externalID); err != nil {
			slog.Error("failed to store reverse id mapping", "error", err, "contract_id", contractID)
			return
		}
	}

	if !ok || !hasOwner {
		slog.Debug("stored id mapping", "external_id", externalID, "contract_id", contractID)
	}
}

// LookupContractID returns the mapped contract ID, or 0 when none exists.
func (b *Bridge) LookupContractID(ctx context.Context, externalID string) uint64 {
	return b.lookupNumber(ctx, forwardPrefix+externalID)
}

// LookupExternalID returns the database ID mapped to contractID
func (b *Bridge) LookupExternalID(ctx context.Context, contractID uint64) (string, bool) {
	v, ok, err := b.kv.Get(ctx, reversePrefix+strconv.FormatUint(contractID, 10))
	if err != nil {
		slog.Error("failed to read reverse id mapping", "error", err, "contract_id", contractID)
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// CacheLegacy writes the older single-direction cache entry.
func (b *Bridge) CacheLegacy(ctx context.Context, externalID string, contractID uint64) {
	if externalID == "" || contractID == 0 {
		return
	}
	if err := b.kv.Set(ctx, legacyPrefix+externalID, strconv.FormatUint(contractID, 10)); err != nil {
		slog.Error("failed to store legacy id cache", "error", err, "external_id", externalID)
	}
}

// LookupLegacy reads the older single-direction cache, 0 when absent
func (b *Bridge) LookupLegacy(ctx context.Context, externalID string) uint64 {
	return b.lookupNumber(ctx, legacyPrefix+externalID)
}

func (b *Bridge) lookupNumber(ctx context.Context, key string) uint64 {
	v, ok, err := b.kv.Get(ctx, key)
	if err != nil {
		slog.Error("failed to read id mapping", "error", err, "key", key)
		return 0
	}
	if !ok {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		slog.Warn("ignoring malformed id mapping", "key", key, "value", v)
		return 0
	}
	return n
}
