// Package ledgerrpc implements the ledger RPC port over HTTP JSON-RPC.
package ledgerrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tunex-network/tunex-client/internal/core/domain"
	"github.com/tunex-network/tunex-client/internal/core/ports"
)

const defaultTimeout = 30 * time.Second

// Client is a JSON-RPC 2.0 client implementing ports.LedgerRPC.
type Client struct {
	rpcURL     string
	httpClient *http.Client
	nextID     uint64
}

// Opts holds client configuration.
type Opts struct {
	RPCURL  string
	Timeout time.Duration
}

// NewClient returns a new ledger RPC client after checking the endpoint is
// reachable.
func NewClient(opts Opts) (*Client, error) {
	if opts.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL required")
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		rpcURL:     opts.RPCURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	if _, err := client.BlockHeight(context.Background()); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return client, nil
}

func (c *Client) Call(
	ctx context.Context, contract, method string, args ...interface{},
) (ports.Value, error) {
	if args == nil {
		args = []interface{}{}
	}
	result, err := c.call(ctx, "ledger_call", []interface{}{contract, method, args})
	if err != nil {
		return ports.Value{}, err
	}
	var raw interface{}
	if err := json.Unmarshal(result, &raw); err != nil {
		return ports.Value{}, fmt.Errorf("unmarshal call result: %w", err)
	}
	return ports.NewValue(raw), nil
}

func (c *Client) EstimateFee(ctx context.Context, req ports.TxRequest) (*big.Int, error) {
	params := map[string]interface{}{
		"from":     req.From,
		"contract": req.Contract,
		"method":   req.Method,
		"args":     req.Args,
	}
	if req.ValueWei != nil {
		params["value"] = req.ValueWei.String()
	}

	result, err := c.call(ctx, "ledger_estimateFee", []interface{}{params})
	if err != nil {
		if reverted, reason := asRevert(err); reverted {
			return nil, &domain.EstimationError{Reason: reason}
		}
		return nil, err
	}

	var fee string
	if err := json.Unmarshal(result, &fee); err != nil {
		return nil, fmt.Errorf("unmarshal fee: %w", err)
	}
	amount, ok := new(big.Int).SetString(fee, 10)
	if !ok {
		return nil, fmt.Errorf("malformed fee amount %q", fee)
	}
	return amount, nil
}

func (c *Client) GetLogs(ctx context.Context, filter ports.LogFilter) ([]ports.Log, error) {
	params := map[string]interface{}{
		"contract":   filter.Contract,
		"topics":     filter.Topics,
		"fromHeight": filter.FromHeight,
		"toHeight":   filter.ToHeight,
	}
	result, err := c.call(ctx, "ledger_getLogs", []interface{}{params})
	if err != nil {
		return nil, err
	}

	var rawLogs []struct {
		Height   uint64        `json:"height"`
		LogIndex uint32        `json:"logIndex"`
		TxID     string        `json:"txid"`
		Topics   []string      `json:"topics"`
		Data     []interface{} `json:"data"`
	}
	if err := json.Unmarshal(result, &rawLogs); err != nil {
		return nil, fmt.Errorf("unmarshal logs: %w", err)
	}

	logs := make([]ports.Log, 0, len(rawLogs))
	for _, l := range rawLogs {
		data := make([]ports.Value, 0, len(l.Data))
		for _, d := range l.Data {
			data = append(data, ports.NewValue(d))
		}
		logs = append(logs, ports.Log{
			Height:   l.Height,
			LogIndex: l.LogIndex,
			TxID:     l.TxID,
			Topics:   l.Topics,
			Data:     data,
		})
	}
	return logs, nil
}

func (c *Client) GetBlock(ctx context.Context, height uint64) (ports.Block, error) {
	result, err := c.call(ctx, "ledger_getBlock", []interface{}{height})
	if err != nil {
		return ports.Block{}, err
	}
	var block struct {
		Height    uint64 `json:"height"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := json.Unmarshal(result, &block); err != nil {
		return ports.Block{}, fmt.Errorf("unmarshal block: %w", err)
	}
	return ports.Block{
		Height:    block.Height,
		Timestamp: time.Unix(block.Timestamp, 0).UTC(),
	}, nil
}

func (c *Client) BlockHeight(ctx context.Context) (uint64, error) {
	result, err := c.call(ctx, "ledger_blockHeight", nil)
	if err != nil {
		return 0, err
	}
	var height uint64
	if err := json.Unmarshal(result, &height); err != nil {
		return 0, fmt.Errorf("unmarshal height: %w", err)
	}
	return height, nil
}

func (c *Client) TransactionStatus(ctx context.Context, txID string) (ports.TxStatus, error) {
	result, err := c.call(ctx, "ledger_getTransactionStatus", []interface{}{txID})
	if err != nil {
		return ports.TxStatus{}, err
	}
	var status struct {
		Confirmed bool   `json:"confirmed"`
		Height    uint64 `json:"height"`
		Reverted  bool   `json:"reverted"`
		Reason    string `json:"reason"`
	}
	if err := json.Unmarshal(result, &status); err != nil {
		return ports.TxStatus{}, fmt.Errorf("unmarshal tx status: %w", err)
	}
	return ports.TxStatus(status), nil
}

// call posts a JSON-RPC request and returns the raw result.
func (c *Client) call(
	ctx context.Context, method string, params []interface{},
) (json.RawMessage, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      atomic.AddUint64(&c.nextID, 1),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{Status: resp.StatusCode}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}

func classifyTransportError(err error) error {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return &TransportError{cause: err, timeout: true}
	}
	return &TransportError{cause: err}
}
