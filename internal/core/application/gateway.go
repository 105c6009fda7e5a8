package application

import (
	"context"
	"errors"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/tunex-network/tunex-client/internal/core/domain"
	"github.com/tunex-network/tunex-client/internal/core/ports"
	"github.com/tunex-network/tunex-client/pkg/circuitbreaker"
)

const (
	// DefaultReadAttempts is the retry bound for transient read failures.
	DefaultReadAttempts = 3
	// DefaultRetryBaseDelay is the base delay of the exponential backoff
	// between read attempts.
	DefaultRetryBaseDelay = 300 * time.Millisecond
	// DefaultAttemptTimeout bounds a single read attempt.
	DefaultAttemptTimeout = 10 * time.Second
	// DefaultConfirmCeiling bounds the wait for a confirmation. Past this
	// point the transaction status is unknown, not failed.
	DefaultConfirmCeiling = 2 * time.Minute
	// DefaultConfirmPollInterval is the pause between confirmation polls.
	DefaultConfirmPollInterval = 2 * time.Second
	// DefaultReadsPerSecond caps the rate of remote reads to avoid remote
	// rate-limiting.
	DefaultReadsPerSecond = 20

	retryJitterRatio = 0.2
)

// LedgerGateway wraps raw read and write access to the deployed marketplace
// contract with the retry, rate-limit and fee-estimation policy shared by all
// services.
type LedgerGateway interface {
	// Read performs a non-mutating contract call, retrying transient
	// failures with bounded exponential backoff.
	Read(ctx context.Context, method string, args ...interface{}) (ports.Value, error)
	// Write drives the given intent through the estimate, sign, broadcast,
	// confirm pipeline. The returned intent is always terminal. A broadcast
	// is never retried: a failed submission requires a brand new intent.
	Write(ctx context.Context, intent *domain.Intent, method string, args ...interface{}) (*domain.Intent, error)
	// Height returns the latest confirmed block height.
	Height(ctx context.Context) (uint64, error)
	// Logs returns the logs matching the filter, with the read retry policy.
	Logs(ctx context.Context, filter ports.LogFilter) ([]ports.Log, error)
	// BlockTimestamp returns the timestamp of the block at the given height.
	BlockTimestamp(ctx context.Context, height uint64) (time.Time, error)
}

// GatewayOpts groups the dependencies and tunables of a ledger gateway. Zero
// tunables fall back to the defaults above.
type GatewayOpts struct {
	RPC      ports.LedgerRPC
	Wallet   ports.WalletProvider
	Sessions SessionManager

	ReadAttempts        int
	RetryBaseDelay      time.Duration
	AttemptTimeout      time.Duration
	ConfirmCeiling      time.Duration
	ConfirmPollInterval time.Duration
	ReadsPerSecond      int
}

type ledgerGateway struct {
	rpc      ports.LedgerRPC
	wallet   ports.WalletProvider
	sessions SessionManager

	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter

	readAttempts        int
	retryBaseDelay      time.Duration
	attemptTimeout      time.Duration
	confirmCeiling      time.Duration
	confirmPollInterval time.Duration
}

// NewLedgerGateway returns a LedgerGateway with the configured policy.
func NewLedgerGateway(opts GatewayOpts) LedgerGateway {
	readAttempts := opts.ReadAttempts
	if readAttempts <= 0 {
		readAttempts = DefaultReadAttempts
	}
	retryBaseDelay := opts.RetryBaseDelay
	if retryBaseDelay <= 0 {
		retryBaseDelay = DefaultRetryBaseDelay
	}
	attemptTimeout := opts.AttemptTimeout
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	confirmCeiling := opts.ConfirmCeiling
	if confirmCeiling <= 0 {
		confirmCeiling = DefaultConfirmCeiling
	}
	confirmPollInterval := opts.ConfirmPollInterval
	if confirmPollInterval <= 0 {
		confirmPollInterval = DefaultConfirmPollInterval
	}
	readsPerSecond := opts.ReadsPerSecond
	if readsPerSecond <= 0 {
		readsPerSecond = DefaultReadsPerSecond
	}

	return &ledgerGateway{
		rpc:                 opts.RPC,
		wallet:              opts.Wallet,
		sessions:            opts.Sessions,
		breaker:             circuitbreaker.NewCircuitBreaker("ledger-gateway"),
		rateLimiter:         rate.NewLimiter(rate.Limit(readsPerSecond), readsPerSecond),
		readAttempts:        readAttempts,
		retryBaseDelay:      retryBaseDelay,
		attemptTimeout:      attemptTimeout,
		confirmCeiling:      confirmCeiling,
		confirmPollInterval: confirmPollInterval,
	}
}

func (g *ledgerGateway) Read(
	ctx context.Context, method string, args ...interface{},
) (ports.Value, error) {
	contract, err := g.sessions.Contract()
	if err != nil {
		return ports.Value{}, err
	}

	var value ports.Value
	err = g.retryRead(ctx, func(attemptCtx context.Context) error {
		res, err := g.breaker.Execute(func() (interface{}, error) {
			return g.rpc.Call(attemptCtx, contract.Address, method, args...)
		})
		if err != nil {
			return err
		}
		value = res.(ports.Value)
		return nil
	})
	return value, err
}

func (g *ledgerGateway) Height(ctx context.Context) (uint64, error) {
	var height uint64
	err := g.retryRead(ctx, func(attemptCtx context.Context) error {
		h, err := g.rpc.BlockHeight(attemptCtx)
		if err != nil {
			return err
		}
		height = h
		return nil
	})
	return height, err
}

func (g *ledgerGateway) Logs(
	ctx context.Context, filter ports.LogFilter,
) ([]ports.Log, error) {
	var logs []ports.Log
	err := g.retryRead(ctx, func(attemptCtx context.Context) error {
		l, err := g.rpc.GetLogs(attemptCtx, filter)
		if err != nil {
			return err
		}
		logs = l
		return nil
	})
	return logs, err
}

func (g *ledgerGateway) BlockTimestamp(
	ctx context.Context, height uint64,
) (time.Time, error) {
	var timestamp time.Time
	err := g.retryRead(ctx, func(attemptCtx context.Context) error {
		block, err := g.rpc.GetBlock(attemptCtx, height)
		if err != nil {
			return err
		}
		timestamp = block.Timestamp
		return nil
	})
	return timestamp, err
}

// retryRead runs fn with the bounded retry policy: capped attempts,
// exponential backoff with jitter, retrying only failures classified as
// transient. Exhausting the bound surfaces ErrRPCTransient wrapping the last
// cause.
func (g *ledgerGateway) retryRead(
	ctx context.Context, fn func(ctx context.Context) error,
) error {
	var lastErr error
	delay := g.retryBaseDelay

	for attempt := 1; attempt <= g.readAttempts; attempt++ {
		if err := g.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, g.attemptTimeout)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}

		lastErr = err
		if attempt == g.readAttempts {
			break
		}

		log.WithError(err).Debugf(
			"transient read failure, attempt %d of %d", attempt, g.readAttempts,
		)
		select {
		case <-time.After(jitter(delay)):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}

	return errors.Join(domain.ErrRPCTransient, lastErr)
}

func (g *ledgerGateway) Write(
	ctx context.Context, intent *domain.Intent, method string, args ...interface{},
) (*domain.Intent, error) {
	session, err := g.sessions.Current()
	if err != nil {
		return nil, err
	}
	contract, err := g.sessions.Contract()
	if err != nil {
		return nil, err
	}
	if err := contract.CheckChain(session); err != nil {
		return nil, err
	}

	if err := intent.Estimate(); err != nil {
		return nil, err
	}

	req := ports.TxRequest{
		From:     session.Account,
		Contract: contract.Address,
		Method:   method,
		Args:     args,
		ValueWei: intent.ValueWei,
	}

	// Estimation must succeed before anything is ever broadcast. A failure
	// carries the ledger's revert reason verbatim.
	fee, err := g.rpc.EstimateFee(ctx, req)
	if err != nil {
		reason := revertReason(err)
		log.WithError(err).Debugf("estimation failed for %s intent", intent.Kind)
		if stateErr := intent.Revert(reason); stateErr != nil {
			return nil, stateErr
		}
		return intent, nil
	}
	if err := intent.AwaitSignature(fee); err != nil {
		return nil, err
	}

	txID, err := g.wallet.SignAndBroadcast(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrUserRejected) {
			if stateErr := intent.Reject(); stateErr != nil {
				return nil, stateErr
			}
			return intent, nil
		}
		// Submission failed before the wallet broadcast anything. The intent
		// is terminal: re-submitting the same intent risks a duplicate
		// transaction, so the caller must build a new one.
		if stateErr := intent.Revert(err.Error()); stateErr != nil {
			return nil, stateErr
		}
		return intent, nil
	}
	if err := intent.Submit(txID); err != nil {
		return nil, err
	}
	if err := intent.StartConfirming(); err != nil {
		return nil, err
	}

	return g.awaitConfirmation(ctx, intent)
}

// awaitConfirmation polls the transaction status until the ledger reports a
// terminal outcome or the confirmation ceiling elapses.
func (g *ledgerGateway) awaitConfirmation(
	ctx context.Context, intent *domain.Intent,
) (*domain.Intent, error) {
	deadline := time.NewTimer(g.confirmCeiling)
	defer deadline.Stop()
	ticker := time.NewTicker(g.confirmPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := intent.TimeOut(); err != nil {
				return nil, err
			}
			return intent, ctx.Err()
		case <-deadline.C:
			log.Warnf(
				"no confirmation for tx %s within %s, status unknown",
				intent.TxID, g.confirmCeiling,
			)
			if err := intent.TimeOut(); err != nil {
				return nil, err
			}
			return intent, nil
		case <-ticker.C:
			status, err := g.rpc.TransactionStatus(ctx, intent.TxID)
			if err != nil {
				// A failed poll is not a failed transaction, keep polling
				// until the ceiling.
				log.WithError(err).Debugf("status poll failed for tx %s", intent.TxID)
				continue
			}
			if status.Reverted {
				if err := intent.Revert(status.Reason); err != nil {
					return nil, err
				}
				return intent, nil
			}
			if status.Confirmed {
				if err := intent.Confirm(status.Height); err != nil {
					return nil, err
				}
				log.Debugf(
					"%s intent %s confirmed at height %d",
					intent.Kind, intent.ID, status.Height,
				)
				return intent, nil
			}
		}
	}
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var transient ports.TransientError
	if errors.As(err, &transient) {
		return transient.Transient()
	}
	return false
}

func jitter(delay time.Duration) time.Duration {
	spread := float64(delay) * retryJitterRatio
	offset := (rand.Float64()*2 - 1) * spread
	return time.Duration(float64(delay) + offset)
}

func revertReason(err error) string {
	var estimation *domain.EstimationError
	if errors.As(err, &estimation) {
		return estimation.Reason
	}
	return err.Error()
}
