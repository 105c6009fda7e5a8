package main

import (
	"context"

	"github.com/tunex-network/tunex-client/internal/config"
	"github.com/tunex-network/tunex-client/internal/core/application"
	"github.com/tunex-network/tunex-client/pkg/contentstore"
	"github.com/tunex-network/tunex-client/pkg/ledgerrpc"
	"github.com/tunex-network/tunex-client/pkg/walletbridge"
)

// services bundles the connected client stack for one CLI invocation.
type services struct {
	sessions application.SessionManager
	catalog  application.CatalogSynchronizer
	purchase application.PurchaseOrchestrator
	earnings application.EarningsLedger
	history  application.EventHistoryReconstructor
	pub      application.CatalogPublisher
}

// connect builds the full stack from environment config and establishes the
// wallet session. The returned teardown must run before exit.
func connect(ctx context.Context) (*services, func(), error) {
	if err := config.InitConfig(); err != nil {
		return nil, nil, err
	}

	rpcClient, err := ledgerrpc.NewClient(ledgerrpc.Opts{
		RPCURL: config.GetString(config.LedgerRPCURLKey),
	})
	if err != nil {
		return nil, nil, err
	}

	bridge, err := walletbridge.Connect(ctx, config.GetString(config.WalletBridgeURLKey))
	if err != nil {
		return nil, nil, err
	}

	addresses, err := config.GetContractAddresses()
	if err != nil {
		bridge.Close()
		return nil, nil, err
	}

	sessions := application.NewSessionManager(application.SessionManagerOpts{
		Wallet:            bridge,
		ContractAddresses: addresses,
	})
	if _, err := sessions.Connect(ctx); err != nil {
		bridge.Close()
		return nil, nil, err
	}

	gateway := application.NewLedgerGateway(application.GatewayOpts{
		RPC:            rpcClient,
		Wallet:         bridge,
		Sessions:       sessions,
		ReadAttempts:   config.GetInt(config.ReadAttemptsKey),
		ConfirmCeiling: config.GetDuration(config.ConfirmCeilingKey),
		ReadsPerSecond: config.GetInt(config.ReadsPerSecondKey),
	})
	catalog := application.NewCatalogSynchronizer(application.CatalogOpts{
		Gateway:  gateway,
		Sessions: sessions,
		Workers:  config.GetInt(config.CatalogWorkersKey),
	})
	earnings := application.NewEarningsLedger(application.EarningsOpts{
		Gateway:  gateway,
		Sessions: sessions,
	})
	history := application.NewEventHistoryReconstructor(application.HistoryOpts{
		Gateway:  gateway,
		Sessions: sessions,
	})
	purchase := application.NewPurchaseOrchestrator(application.PurchaseOpts{
		Gateway:   gateway,
		Sessions:  sessions,
		Catalog:   catalog,
		Listeners: []application.InvalidationListener{catalog, earnings, history},
	})
	store := contentstore.NewGatewayStore(config.GetString(config.ContentGatewayURLKey))
	pub := application.NewCatalogPublisher(application.PublisherOpts{
		Gateway:   gateway,
		Sessions:  sessions,
		Catalog:   catalog,
		Store:     store,
		Listeners: []application.InvalidationListener{catalog},
	})

	teardown := func() {
		sessions.Disconnect()
		sessions.Close()
	}
	return &services{
		sessions: sessions,
		catalog:  catalog,
		purchase: purchase,
		earnings: earnings,
		history:  history,
		pub:      pub,
	}, teardown, nil
}
