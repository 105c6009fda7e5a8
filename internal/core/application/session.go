package application

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/tunex-network/tunex-client/internal/core/domain"
	"github.com/tunex-network/tunex-client/internal/core/ports"
)

// SessionEvent is pushed to subscribers whenever the session is replaced.
type SessionEvent struct {
	Session   domain.Session
	Connected bool
}

// SessionManager owns the wallet connection and the account/chain identity
// every other service reads from.
type SessionManager interface {
	// Connect requests account access from the wallet and establishes the
	// session.
	Connect(ctx context.Context) (domain.Session, error)
	// Disconnect clears the session and notifies subscribers. Any contract
	// handle or catalog snapshot derived from the old session is invalid
	// afterwards.
	Disconnect()
	// Current returns the active session, or ErrNoSession.
	Current() (domain.Session, error)
	// Contract resolves the contract handle bound to the session's chain.
	Contract() (domain.ContractHandle, error)
	// Subscribe registers for session change notifications. The returned
	// function unsubscribes.
	Subscribe() (<-chan SessionEvent, func())
	// Close stops watching wallet notifications and closes the provider.
	Close() error
}

// SessionManagerOpts groups the dependencies of a session manager.
type SessionManagerOpts struct {
	Wallet ports.WalletProvider
	// ContractAddresses maps a chain id to the marketplace contract deployed
	// on it.
	ContractAddresses map[uint64]string
}

type sessionManager struct {
	wallet    ports.WalletProvider
	addresses map[uint64]string

	mtx         sync.RWMutex
	session     *domain.Session
	subscribers map[int]chan SessionEvent
	nextSubID   int
	watching    bool
	done        chan struct{}
}

// NewSessionManager returns a SessionManager backed by the given wallet
// provider.
func NewSessionManager(opts SessionManagerOpts) SessionManager {
	return &sessionManager{
		wallet:      opts.Wallet,
		addresses:   opts.ContractAddresses,
		subscribers: map[int]chan SessionEvent{},
		done:        make(chan struct{}),
	}
}

func (m *sessionManager) Connect(ctx context.Context) (domain.Session, error) {
	accounts, err := m.wallet.RequestAccounts(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if len(accounts) <= 0 {
		return domain.Session{}, domain.ErrUserRejected
	}

	chainID, err := m.wallet.ChainID(ctx)
	if err != nil {
		return domain.Session{}, err
	}

	session := domain.Session{ChainID: chainID, Account: accounts[0]}

	m.mtx.Lock()
	m.session = &session
	if !m.watching {
		m.watching = true
		go m.watchWallet()
	}
	m.mtx.Unlock()

	log.Debugf("session connected, account %s on chain %d", session.Account, chainID)
	m.notify(SessionEvent{Session: session, Connected: true})
	return session, nil
}

func (m *sessionManager) Disconnect() {
	m.mtx.Lock()
	m.session = nil
	m.mtx.Unlock()

	log.Debug("session disconnected")
	m.notify(SessionEvent{Connected: false})
}

func (m *sessionManager) Current() (domain.Session, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	if m.session == nil {
		return domain.Session{}, domain.ErrNoSession
	}
	return *m.session, nil
}

func (m *sessionManager) Contract() (domain.ContractHandle, error) {
	session, err := m.Current()
	if err != nil {
		return domain.ContractHandle{}, err
	}
	address, ok := m.addresses[session.ChainID]
	if !ok {
		return domain.ContractHandle{}, domain.ErrNetworkMismatch
	}
	return domain.ContractHandle{Address: address, BoundChainID: session.ChainID}, nil
}

func (m *sessionManager) Subscribe() (<-chan SessionEvent, func()) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	id := m.nextSubID
	m.nextSubID++
	ch := make(chan SessionEvent, 10)
	m.subscribers[id] = ch

	return ch, func() {
		m.mtx.Lock()
		defer m.mtx.Unlock()
		if sub, ok := m.subscribers[id]; ok {
			delete(m.subscribers, id)
			close(sub)
		}
	}
}

func (m *sessionManager) Close() error {
	close(m.done)
	return m.wallet.Close()
}

// watchWallet forwards wallet push notifications into replaced session
// values. No business logic runs here: consumers react through their own
// subscriptions.
func (m *sessionManager) watchWallet() {
	for {
		select {
		case <-m.done:
			return
		case event, more := <-m.wallet.Notifications():
			if !more {
				return
			}
			m.applyWalletEvent(event)
		}
	}
}

func (m *sessionManager) applyWalletEvent(event ports.WalletEvent) {
	m.mtx.Lock()
	if m.session == nil {
		m.mtx.Unlock()
		return
	}
	updated := *m.session
	switch event.Type {
	case ports.WalletEventAccountsChanged:
		account := ""
		if len(event.Accounts) > 0 {
			account = event.Accounts[0]
		}
		updated.Account = account
	case ports.WalletEventChainChanged:
		updated.ChainID = event.ChainID
	}
	m.session = &updated
	m.mtx.Unlock()

	log.Debugf("session updated, account %s on chain %d", updated.Account, updated.ChainID)
	m.notify(SessionEvent{Session: updated, Connected: true})
}

func (m *sessionManager) notify(event SessionEvent) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			log.Warn("dropping session event for slow subscriber")
		}
	}
}
