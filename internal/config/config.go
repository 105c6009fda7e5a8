package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// LedgerRPCURLKey is the HTTP endpoint of the ledger RPC node.
	LedgerRPCURLKey = "LEDGER_RPC_URL"
	// WalletBridgeURLKey is the websocket endpoint of the wallet bridge.
	WalletBridgeURLKey = "WALLET_BRIDGE_URL"
	// ContentGatewayURLKey is the HTTP endpoint of the content storage gateway.
	ContentGatewayURLKey = "CONTENT_GATEWAY_URL"
	// ContractAddressesKey maps chain ids to the marketplace contract deployed
	// on them, as a list of chainId:address pairs.
	ContractAddressesKey = "CONTRACT_ADDRESSES"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// CatalogWorkersKey bounds the concurrent reads of a catalog refresh.
	CatalogWorkersKey = "CATALOG_WORKERS"
	// ReadAttemptsKey is the retry bound for transient read failures.
	ReadAttemptsKey = "READ_ATTEMPTS"
	// ConfirmCeilingKey is the maximum duration to wait for a confirmation.
	ConfirmCeilingKey = "CONFIRM_CEILING"
	// ReadsPerSecondKey caps the rate of remote reads.
	ReadsPerSecondKey = "READS_PER_SECOND"
)

var vip *viper.Viper

// InitConfig reads the environment with the TUNEX prefix and validates it.
func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("TUNEX")
	vip.AutomaticEnv()

	vip.SetDefault(LedgerRPCURLKey, "http://localhost:8545")
	vip.SetDefault(WalletBridgeURLKey, "ws://localhost:8546")
	vip.SetDefault(ContentGatewayURLKey, "http://localhost:8080/api/v0")
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(CatalogWorkersKey, 5)
	vip.SetDefault(ReadAttemptsKey, 3)
	vip.SetDefault(ConfirmCeilingKey, 2*time.Minute)
	vip.SetDefault(ReadsPerSecondKey, 20)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	log.SetLevel(log.Level(GetInt(LogLevelKey)))
	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetStringSlice(key string) []string {
	return vip.GetStringSlice(key)
}

// GetContractAddresses parses the chainId:address pairs of
// ContractAddressesKey.
func GetContractAddresses() (map[uint64]string, error) {
	addresses := map[uint64]string{}
	for _, pair := range GetStringSlice(ContractAddressesKey) {
		chainID, address, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("malformed contract address pair %q", pair)
		}
		id, err := strconv.ParseUint(chainID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed chain id in pair %q", pair)
		}
		addresses[id] = address
	}
	return addresses, nil
}

func validate() error {
	if GetString(LedgerRPCURLKey) == "" {
		return fmt.Errorf("missing ledger RPC URL")
	}
	if GetString(WalletBridgeURLKey) == "" {
		return fmt.Errorf("missing wallet bridge URL")
	}
	if GetInt(ReadAttemptsKey) <= 0 {
		return fmt.Errorf("%s must be positive", ReadAttemptsKey)
	}
	if _, err := GetContractAddresses(); err != nil {
		return err
	}
	return nil
}
