// Package contentstore implements the content store port against an HTTP
// gateway to content-addressed storage. Payloads are opaque blobs: they are
// stored and resolved by content identifier, never inspected.
package contentstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tunex-network/tunex-client/internal/core/ports"
)

const defaultTimeout = 60 * time.Second

type gatewayStore struct {
	apiURL     string
	httpClient *http.Client
}

// NewGatewayStore returns a ports.ContentStore backed by the HTTP gateway at
// apiURL. Blobs are added with POST {api}/add and resolved with GET
// {api}/cat/{cid}.
func NewGatewayStore(apiURL string) ports.ContentStore {
	return &gatewayStore{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (s *gatewayStore) Put(ctx context.Context, r io.Reader) (string, error) {
	url := fmt.Sprintf("%s/add", s.apiURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, r)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("store blob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("store blob: gateway returned status %d", resp.StatusCode)
	}

	var result struct {
		CID string `json:"cid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode gateway response: %w", err)
	}
	if result.CID == "" {
		return "", fmt.Errorf("gateway returned no content identifier")
	}
	return result.CID, nil
}

func (s *gatewayStore) Get(ctx context.Context, cid string) (io.ReadCloser, error) {
	url := fmt.Sprintf("%s/cat/%s", s.apiURL, cid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch blob %s: %w", cid, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch blob %s: gateway returned status %d", cid, resp.StatusCode)
	}
	return resp.Body, nil
}
