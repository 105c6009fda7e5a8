// Package walletbridge implements the wallet provider port over a websocket
// connection to an external wallet bridge endpoint.
package walletbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/tunex-network/tunex-client/internal/core/domain"
	"github.com/tunex-network/tunex-client/internal/core/ports"
)

const notificationQueueSize = 16

// Bridge is a websocket client implementing ports.WalletProvider. Requests
// are correlated to responses by id; account and chain changes pushed by the
// wallet are fanned into the notifications channel.
type Bridge struct {
	conn *websocket.Conn

	writeMtx sync.Mutex
	nextID   uint64

	pendingMtx sync.Mutex
	pending    map[uint64]chan frame

	notifications chan ports.WalletEvent
	done          chan struct{}
	closeOnce     sync.Once
}

// Connect dials the wallet bridge endpoint. An unreachable endpoint is
// reported as ErrProviderUnavailable.
func Connect(ctx context.Context, url string) (*Bridge, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, err)
	}

	bridge := &Bridge{
		conn:          conn,
		pending:       map[uint64]chan frame{},
		notifications: make(chan ports.WalletEvent, notificationQueueSize),
		done:          make(chan struct{}),
	}
	go bridge.readLoop()
	return bridge, nil
}

func (b *Bridge) RequestAccounts(ctx context.Context) ([]string, error) {
	resp, err := b.request(ctx, methodRequestAccounts, nil)
	if err != nil {
		return nil, err
	}
	var accounts []string
	if err := json.Unmarshal(resp, &accounts); err != nil {
		return nil, fmt.Errorf("unmarshal accounts: %w", err)
	}
	return accounts, nil
}

func (b *Bridge) ChainID(ctx context.Context) (uint64, error) {
	resp, err := b.request(ctx, methodChainID, nil)
	if err != nil {
		return 0, err
	}
	var chainID uint64
	if err := json.Unmarshal(resp, &chainID); err != nil {
		return 0, fmt.Errorf("unmarshal chain id: %w", err)
	}
	return chainID, nil
}

func (b *Bridge) SignAndBroadcast(ctx context.Context, req ports.TxRequest) (string, error) {
	params := signParams{
		From:     req.From,
		Contract: req.Contract,
		Method:   req.Method,
		Args:     req.Args,
	}
	if req.ValueWei != nil {
		params.Value = req.ValueWei.String()
	}

	resp, err := b.request(ctx, methodSignAndBroadcast, params)
	if err != nil {
		return "", err
	}
	var txID string
	if err := json.Unmarshal(resp, &txID); err != nil {
		return "", fmt.Errorf("unmarshal tx id: %w", err)
	}
	return txID, nil
}

func (b *Bridge) Notifications() <-chan ports.WalletEvent {
	return b.notifications
}

func (b *Bridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		err = b.conn.Close()
	})
	return err
}

// request sends one frame and waits for the matching response, the context
// to expire, or the bridge to shut down.
func (b *Bridge) request(
	ctx context.Context, method string, params interface{},
) (json.RawMessage, error) {
	id := atomic.AddUint64(&b.nextID, 1)

	req := frame{ID: id, Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		req.Params = raw
	}

	respChan := make(chan frame, 1)
	b.pendingMtx.Lock()
	b.pending[id] = respChan
	b.pendingMtx.Unlock()
	defer func() {
		b.pendingMtx.Lock()
		delete(b.pending, id)
		b.pendingMtx.Unlock()
	}()

	b.writeMtx.Lock()
	err := b.conn.WriteJSON(req)
	b.writeMtx.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.done:
		return nil, domain.ErrSessionClosed
	case resp := <-respChan:
		if resp.Error != nil {
			return nil, mapBridgeError(resp.Error)
		}
		return resp.Result, nil
	}
}

func (b *Bridge) readLoop() {
	defer close(b.notifications)
	for {
		var msg frame
		if err := b.conn.ReadJSON(&msg); err != nil {
			select {
			case <-b.done:
			default:
				log.WithError(err).Warn("wallet bridge connection lost")
			}
			return
		}

		if msg.Event != "" {
			b.dispatchPush(msg)
			continue
		}

		b.pendingMtx.Lock()
		respChan, ok := b.pending[msg.ID]
		b.pendingMtx.Unlock()
		if !ok {
			log.Debugf("dropping response for unknown request id %d", msg.ID)
			continue
		}
		respChan <- msg
	}
}

func (b *Bridge) dispatchPush(msg frame) {
	var event ports.WalletEvent
	switch msg.Event {
	case pushAccountsChanged:
		var params accountsPush
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			log.WithError(err).Warn("malformed accountsChanged push")
			return
		}
		event = ports.WalletEvent{
			Type:     ports.WalletEventAccountsChanged,
			Accounts: params.Accounts,
		}
	case pushChainChanged:
		var params chainPush
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			log.WithError(err).Warn("malformed chainChanged push")
			return
		}
		event = ports.WalletEvent{
			Type:    ports.WalletEventChainChanged,
			ChainID: params.ChainID,
		}
	default:
		log.Debugf("ignoring unknown push event %q", msg.Event)
		return
	}

	select {
	case b.notifications <- event:
	default:
		log.Warn("dropping wallet event, notification queue full")
	}
}

func mapBridgeError(bridgeErr *BridgeError) error {
	switch bridgeErr.Code {
	case codeUserRejected:
		return fmt.Errorf("%w: %s", domain.ErrUserRejected, bridgeErr.Message)
	case codeProviderUnavailable:
		return fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, bridgeErr.Message)
	default:
		return bridgeErr
	}
}

var _ ports.WalletProvider = (*Bridge)(nil)
