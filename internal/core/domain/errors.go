package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable is returned when no wallet provider is reachable.
	ErrProviderUnavailable = errors.New("wallet provider is not reachable")
	// ErrUserRejected is returned when the user declines an account request or
	// a signature request on the wallet side.
	ErrUserRejected = errors.New("request rejected by the user")
	// ErrNoSession is returned by operations that require a connected session.
	ErrNoSession = errors.New("no active session, connect first")
	// ErrSessionClosed ...
	ErrSessionClosed = errors.New("session has been closed")
	// ErrNetworkMismatch is returned when the contract is bound to a chain
	// different from the one of the active session.
	ErrNetworkMismatch = errors.New("contract chain does not match session chain")
	// ErrRPCTransient is returned once the bounded retry policy on reads has
	// been exhausted.
	ErrRPCTransient = errors.New("ledger RPC unavailable after retries")
	// ErrAlreadyInFlight is returned when a purchase for the same entry id is
	// already being processed.
	ErrAlreadyInFlight = errors.New("another purchase for this entry is in flight")
	// ErrTrackNotFound ...
	ErrTrackNotFound = errors.New("track not found in catalog")
	// ErrAlreadyPurchased is returned when the active account already owns the
	// target entry according to the ledger.
	ErrAlreadyPurchased = errors.New("entry already purchased by this account")

	// Intent state machine guards.
	ErrIntentMustBeIdle       = errors.New("intent must be in idle status")
	ErrIntentMustBeEstimating = errors.New("intent must be in estimating status")
	ErrIntentMustBeAwaiting   = errors.New("intent must be awaiting signature")
	ErrIntentMustBeSubmitted  = errors.New("intent must be in submitted status")
	ErrIntentMustBeConfirming = errors.New("intent must be in confirming status")
	ErrIntentIsTerminal       = errors.New("intent already reached a terminal status")
)

// EstimationError is returned when fee estimation fails before broadcast. The
// reason string is the ledger's revert reason, reported verbatim.
type EstimationError struct {
	Reason string
}

func (e *EstimationError) Error() string {
	if e.Reason == "" {
		return "fee estimation failed"
	}
	return fmt.Sprintf("fee estimation failed: %s", e.Reason)
}

// ValidationError is returned for preconditions that fail locally, before any
// network call is made.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}

// DuplicateEventAnomaly reports purchase events observed more than once for
// the same entry id within a scanned log range. The ledger enforces one
// purchase per entry per account, so duplicates indicate a client
// double-submission and are surfaced as a diagnostic, never merged away.
type DuplicateEventAnomaly struct {
	TrackID uint64
	Count   int
}

func (e *DuplicateEventAnomaly) Error() string {
	return fmt.Sprintf(
		"duplicate purchase event for track %d observed %d times", e.TrackID, e.Count,
	)
}
