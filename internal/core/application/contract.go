package application

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Method and event names of the marketplace contract. The signature set is
// fixed by the deployed contract and shared by every service in this package.
const (
	MethodNextEntryID    = "nextEntryId"
	MethodGetEntryDetail = "getEntryDetails"
	MethodVerifyPurchase = "verifyPurchase"
	MethodPurchaseEntry  = "purchaseEntry"
	MethodBalances       = "balances"
	MethodWithdrawFunds  = "withdrawFunds"
	MethodUploadEntry    = "uploadEntry"

	// EventEntryPurchased is the signature of the log emitted on a confirmed
	// purchase. The buyer is the indexed counterparty.
	EventEntryPurchased = "EntryPurchasedBy(uint256,address)"
)

// eventTopic returns the topic hash of an event signature, hex encoded with a
// 0x prefix.
func eventTopic(signature string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// addressTopic left-pads an account address to the 32-byte topic layout used
// for indexed address parameters.
func addressTopic(address string) string {
	hexAddr := strings.ToLower(strings.TrimPrefix(address, "0x"))
	if len(hexAddr) >= 64 {
		return "0x" + hexAddr
	}
	return "0x" + strings.Repeat("0", 64-len(hexAddr)) + hexAddr
}
