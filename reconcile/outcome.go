// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reconcile

import (
	"errors"
	"strings"
)

// Phase is one step of a mutation
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseContractAttempt
	PhaseDatabaseAttempt
	PhaseReconciled
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseContractAttempt:
		return "contract_attempt"
	case PhaseDatabaseAttempt:
		return "database_attempt"
	case PhaseReconciled:
		return "reconciled"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome traces one mutation through its phases
type Outcome struct {
	Trace []Phase

	// ID is the identifier the caller should use for the result: the
	// database ID when the database write succeeded, else the contract's.
	ID         string
	ContractID string

	ContractOK  bool
	DatabaseOK  bool
	ContractErr error
	DatabaseErr error
}

func newOutcome() *Outcome {
	return &Outcome{Trace: []Phase{PhaseIdle}}
}

func (o *Outcome) enter(p Phase) {
	o.Trace = append(o.Trace, p)
}

// Final returns the last phase reached
func (o Outcome) Final() Phase {
	if len(o.Trace) == 0 {
		return PhaseIdle
	}
	return o.Trace[len(o.Trace)-1]
}

// Reached reports whether the mutation entered phase p
func (o Outcome) Reached(p Phase) bool {
	for _, t := range o.Trace {
		if t == p {
			return true
		}
	}
	return false
}

// TouchedStores reports whether any store was contacted
func (o Outcome) TouchedStores() bool {
	return o.Reached(PhaseContractAttempt) || o.Reached(PhaseDatabaseAttempt)
}

func (o Outcome) String() string {
	names := make([]string, len(o.Trace))
	for i, p := range o.Trace {
		names[i] = p.String()
	}
	return strings.Join(names, " -> ")
}

// AttemptError reports a mutation where every attempted store failed. Its
// message is the first failure's; errors.Is and errors.As see every attempt.
type AttemptError struct {
	Errs []error
}

func (e *AttemptError) Error() string {
	if len(e.Errs) == 0 {
		return "all store attempts failed"
	}
	return e.Errs[0].Error()
}

func (e *AttemptError) Unwrap() []error {
	return e.Errs
}

// IsStoreFailure reports whether err came from failed store attempts rather
// than validation
func IsStoreFailure(err error) bool {
	var attemptErr *AttemptError
	return errors.As(err, &attemptErr)
}

func (o *Outcome) failure() error {
	var errs []error
	if o.ContractErr != nil {
		errs = append(errs, o.ContractErr)
	}
	if o.DatabaseErr != nil {
		errs = append(errs, o.DatabaseErr)
	}
	return &AttemptError{Errs: errs}
}
