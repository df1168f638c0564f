// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/danielhkuo/votememaybe/models"
)

var (
	ErrInvalidAddress = errors.New("invalid wallet address")
)

// GenerateID creates a random record ID for the database
func GenerateID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return id.String(), nil
}

// IsRecordID reports whether id has the shape of a database record ID
func IsRecordID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// NormalizeAddress lowercases and trims an address.
// Every address comparison goes through this.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// ValidateAddress checks the address is a 20-byte hex address and
// returns its normalized form
func ValidateAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", ErrInvalidAddress
	}
	return NormalizeAddress(common.HexToAddress(address).Hex()), nil
}

// SameAddress compares two addresses case-insensitively
func SameAddress(a, b string) bool {
	return a != "" && NormalizeAddress(a) == NormalizeAddress(b)
}

// RequireCreator checks that caller created the proposal
func RequireCreator(p models.Proposal, caller string) error {
	if !SameAddress(p.CreatedBy, caller) {
		return models.ErrNotAuthorized
	}
	return nil
}
