// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

var (
	ErrNotConnected      = errors.New("wallet not connected")
	ErrDuplicateVote     = errors.New("already voted on this proposal")
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrProposalNotActive = errors.New("proposal is not active")
	ErrNotAuthorized     = errors.New("only the proposal creator can end the proposal")
	ErrInvalidVoteType   = errors.New("invalid vote type")
	ErrInvalidStatus     = errors.New("invalid proposal status")
	ErrEmptyTitle        = errors.New("title is required")
)

// IsValidation reports whether err was raised by local validation
// before any store was written.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrNotConnected,
		ErrDuplicateVote,
		ErrProposalNotFound,
		ErrProposalNotActive,
		ErrNotAuthorized,
		ErrInvalidVoteType,
		ErrInvalidStatus,
		ErrEmptyTitle,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
