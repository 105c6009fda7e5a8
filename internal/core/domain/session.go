package domain

// Session holds the wallet identity shared by every service. It is an
// immutable value: on any account or chain change the session manager
// replaces it wholesale and consumers re-read, nobody mutates fields in
// place.
type Session struct {
	ChainID uint64
	Account string
}

// HasAccount returns whether the session carries an active account.
func (s Session) HasAccount() bool {
	return s.Account != ""
}

// ContractHandle binds a deployed contract address to the chain it was
// resolved on. It is immutable once resolved; a chain change requires
// resolving a new handle.
type ContractHandle struct {
	Address      string
	BoundChainID uint64
}

// CheckChain returns ErrNetworkMismatch if the handle was resolved on a chain
// different from the session's. Every write operation must pass this check
// before touching the network.
func (c ContractHandle) CheckChain(s Session) error {
	if c.BoundChainID != s.ChainID {
		return ErrNetworkMismatch
	}
	return nil
}
