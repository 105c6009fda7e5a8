package application

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/tunex-network/tunex-client/internal/core/domain"
)

// EarningsLedger tracks and withdraws an account's accrued balance.
type EarningsLedger interface {
	// FetchBalance reads the account's balance from the ledger. A failed
	// fetch is an error, never a zero balance.
	FetchBalance(ctx context.Context, account string) (*domain.Balance, error)
	// Withdraw drives a withdrawal through the estimate, sign, confirm
	// pipeline. On confirmation the balance is re-fetched from the ledger
	// before reporting: the contract's accounting is authoritative, the
	// client never assumes the balance became zero.
	Withdraw(ctx context.Context) (*domain.Intent, *domain.Balance, error)
	// LastKnown returns the most recently fetched balance, nil if none or
	// invalidated.
	LastKnown() *domain.Balance
	// Invalidate drops the last known balance.
	Invalidate()
}

// EarningsOpts groups the dependencies of an earnings ledger.
type EarningsOpts struct {
	Gateway  LedgerGateway
	Sessions SessionManager
}

type earningsLedger struct {
	gateway  LedgerGateway
	sessions SessionManager

	mtx       sync.RWMutex
	lastKnown *domain.Balance
}

// NewEarningsLedger returns an EarningsLedger reading and writing through the
// given gateway.
func NewEarningsLedger(opts EarningsOpts) EarningsLedger {
	return &earningsLedger{
		gateway:  opts.Gateway,
		sessions: opts.Sessions,
	}
}

func (e *earningsLedger) FetchBalance(
	ctx context.Context, account string,
) (*domain.Balance, error) {
	value, err := e.gateway.Read(ctx, MethodBalances, account)
	if err != nil {
		return nil, err
	}
	balance := &domain.Balance{Account: account, AmountWei: value.BigInt()}

	e.mtx.Lock()
	e.lastKnown = balance
	e.mtx.Unlock()
	return balance, nil
}

func (e *earningsLedger) Withdraw(ctx context.Context) (*domain.Intent, *domain.Balance, error) {
	session, err := e.sessions.Current()
	if err != nil {
		return nil, nil, err
	}
	if !session.HasAccount() {
		return nil, nil, domain.ErrNoSession
	}

	intent := domain.NewIntent(domain.IntentWithdraw, session.Account, 0, nil)
	intent, err = e.gateway.Write(ctx, intent, MethodWithdrawFunds)
	if err != nil {
		return nil, nil, err
	}
	if !intent.IsConfirmed() {
		return intent, nil, nil
	}

	e.Invalidate()
	balance, err := e.FetchBalance(ctx, session.Account)
	if err != nil {
		return intent, nil, err
	}
	log.Infof(
		"withdrawal confirmed for %s, remaining balance %s wei",
		session.Account, balance.AmountWei,
	)
	return intent, balance, nil
}

func (e *earningsLedger) LastKnown() *domain.Balance {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.lastKnown
}

func (e *earningsLedger) Invalidate() {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.lastKnown = nil
}
