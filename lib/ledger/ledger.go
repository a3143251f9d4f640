// Package ledger defines the interface for the append-only log of completed disbursements.
package ledger

import (
	"time"
)

// Entry is the immutable record of one completed disbursement. Written only after the node confirms the send; never
// mutated or deleted.
type Entry struct {
	When    time.Time `json:"ts" bson:"ts"`
	Net     string    `json:"net" bson:"net"`
	Address string    `json:"address" bson:"address"`
	Amount  string    `json:"amount" bson:"amount"` // amount with denomination suffix
	Hash    string    `json:"hash" bson:"hash"`
	Balance string    `json:"balance" bson:"balance"` // faucet balance after the send
}

// Line renders the entry as one CSV line: ISO-8601 timestamp at second precision, chain id, destination address,
// amount with denomination, transaction hash, post-send faucet balance.
func (e Entry) Line() string {
	return e.When.Format("2006-01-02T15:04:05") + "," +
		e.Net + "," +
		e.Address + "," +
		e.Amount + "," +
		e.Hash + "," +
		e.Balance + "\n"
}

// Ledger is the append-only store of disbursement entries.
type Ledger interface {
	Append(Entry) error
}
