package domain

import (
	"math/big"
	"time"

	"github.com/google/uuid"
)

// IntentKind is the kind of mutating operation an intent drives.
type IntentKind int

const (
	// IntentPurchase pays for a catalog entry.
	IntentPurchase IntentKind = iota
	// IntentWithdraw withdraws the account's accrued balance.
	IntentWithdraw
	// IntentUpload publishes a new catalog entry.
	IntentUpload
)

func (k IntentKind) String() string {
	switch k {
	case IntentPurchase:
		return "purchase"
	case IntentWithdraw:
		return "withdraw"
	case IntentUpload:
		return "upload"
	default:
		return "unknown"
	}
}

// Intent status codes, in pipeline order. Codes at or above
// IntentStatusConfirmed are terminal.
const (
	IntentStatusIdle = iota
	IntentStatusEstimating
	IntentStatusAwaitingSignature
	IntentStatusSubmitted
	IntentStatusConfirming
	IntentStatusConfirmed
	IntentStatusReverted
	IntentStatusRejected
	IntentStatusTimedOut
)

// Intent is the data structure representing one orchestrated mutating
// transaction. It lives for the duration of a single estimate, sign,
// broadcast, confirm pipeline and always ends in exactly one terminal
// status.
type Intent struct {
	ID           string
	Kind         IntentKind
	TargetID     uint64
	Account      string
	ValueWei     *big.Int
	EstimatedFee *big.Int
	TxID         string
	Status       int
	// Terminal details.
	ConfirmedHeight uint64
	RevertReason    string
	SettledAt       int64
}

// NewIntent returns an intent with a new id and Idle status.
func NewIntent(kind IntentKind, account string, targetID uint64, valueWei *big.Int) *Intent {
	return &Intent{
		ID:       uuid.New().String(),
		Kind:     kind,
		Account:  account,
		TargetID: targetID,
		ValueWei: valueWei,
		Status:   IntentStatusIdle,
	}
}

// Estimate brings an Idle intent to the Estimating status.
func (i *Intent) Estimate() error {
	if i.IsTerminal() {
		return ErrIntentIsTerminal
	}
	if i.Status != IntentStatusIdle {
		return ErrIntentMustBeIdle
	}
	i.Status = IntentStatusEstimating
	return nil
}

// AwaitSignature brings an Estimating intent to the AwaitingSignature status
// and records the estimated fee.
func (i *Intent) AwaitSignature(fee *big.Int) error {
	if i.IsTerminal() {
		return ErrIntentIsTerminal
	}
	if i.Status != IntentStatusEstimating {
		return ErrIntentMustBeEstimating
	}
	i.EstimatedFee = fee
	i.Status = IntentStatusAwaitingSignature
	return nil
}

// Submit brings an AwaitingSignature intent to the Submitted status once the
// wallet has broadcast the transaction identified by txID.
func (i *Intent) Submit(txID string) error {
	if i.IsTerminal() {
		return ErrIntentIsTerminal
	}
	if i.Status != IntentStatusAwaitingSignature {
		return ErrIntentMustBeAwaiting
	}
	i.TxID = txID
	i.Status = IntentStatusSubmitted
	return nil
}

// StartConfirming brings a Submitted intent to the Confirming status.
func (i *Intent) StartConfirming() error {
	if i.IsTerminal() {
		return ErrIntentIsTerminal
	}
	if i.Status != IntentStatusSubmitted {
		return ErrIntentMustBeSubmitted
	}
	i.Status = IntentStatusConfirming
	return nil
}

// Confirm settles the intent at the given block height.
func (i *Intent) Confirm(height uint64) error {
	if i.IsTerminal() {
		return ErrIntentIsTerminal
	}
	if i.Status != IntentStatusConfirming {
		return ErrIntentMustBeConfirming
	}
	i.ConfirmedHeight = height
	i.SettledAt = time.Now().Unix()
	i.Status = IntentStatusConfirmed
	return nil
}

// Revert terminates the intent with the ledger's revert reason, reported
// verbatim. Valid from any non-terminal status past Idle: estimation,
// broadcast and confirmation can all surface a revert.
func (i *Intent) Revert(reason string) error {
	if i.IsTerminal() {
		return ErrIntentIsTerminal
	}
	if i.Status == IntentStatusIdle {
		return ErrIntentMustBeEstimating
	}
	i.RevertReason = reason
	i.Status = IntentStatusReverted
	return nil
}

// Reject terminates the intent after the user declined to sign.
func (i *Intent) Reject() error {
	if i.IsTerminal() {
		return ErrIntentIsTerminal
	}
	if i.Status != IntentStatusAwaitingSignature {
		return ErrIntentMustBeAwaiting
	}
	i.Status = IntentStatusRejected
	return nil
}

// TimeOut terminates the intent after the confirmation ceiling elapsed. The
// transaction's final status on the ledger is unknown at this point, not
// failed.
func (i *Intent) TimeOut() error {
	if i.IsTerminal() {
		return ErrIntentIsTerminal
	}
	if i.Status != IntentStatusConfirming {
		return ErrIntentMustBeConfirming
	}
	i.Status = IntentStatusTimedOut
	return nil
}

// IsTerminal returns whether the intent reached one of the terminal statuses.
func (i *Intent) IsTerminal() bool {
	return i.Status >= IntentStatusConfirmed
}

// IsConfirmed returns whether the intent is in Confirmed status.
func (i *Intent) IsConfirmed() bool {
	return i.Status == IntentStatusConfirmed
}

// IsReverted returns whether the intent is in Reverted status.
func (i *Intent) IsReverted() bool {
	return i.Status == IntentStatusReverted
}

// IsRejected returns whether the intent is in Rejected status.
func (i *Intent) IsRejected() bool {
	return i.Status == IntentStatusRejected
}

// IsTimedOut returns whether the intent is in TimedOut status.
func (i *Intent) IsTimedOut() bool {
	return i.Status == IntentStatusTimedOut
}

// InFlight returns whether the intent has started and not yet reached a
// terminal status.
func (i *Intent) InFlight() bool {
	return i.Status > IntentStatusIdle && !i.IsTerminal()
}
