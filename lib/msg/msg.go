// Package msg defines the interface for different message brokers.
//
package msg

import (
	"sync"
)

// DisburseEvent is the message the faucet publishes when a disbursement completes.
type DisburseEvent struct {
	Net       string `json:"net"`
	Requester string `json:"requester"`
	Address   string `json:"address"`
	Amount    string `json:"amount"` // amount with denomination
	Hash      string `json:"hash"`
}

type MsgBroker interface {
	Setup(interface{}) error
	Close() error

	// SendDisbursement publishes a completed disbursement for the given network.
	SendDisbursement(net string, d DisburseEvent) error
	// GetDisbursements consumes disbursement events for consumers such as dashboards or notifiers.
	GetDisbursements(net string, mut *sync.Mutex) (<-chan DisburseEvent, <-chan error, error)
}
