// Package chain defines the interface required for all node connections the faucet drives.
package chain

import (
	"context"
	"log"

	"github.com/LianD-09/discord-faucet-bot/lib/chain/gethexec"
	"github.com/LianD-09/discord-faucet-bot/lib/chain/rpc"
	"github.com/LianD-09/discord-faucet-bot/lib/config"
)

// Client is the node boundary reduced to the three operations the faucet needs. All three are stateless
// request/response exchanges; each call carries its own deadline through the context.
type Client interface {
	// GetBalance returns the balance for the address as the node reports it.
	GetBalance(ctx context.Context, address string) (string, error)
	// Unlock authorizes the faucet account on the node to sign a transaction.
	Unlock(ctx context.Context, address string) (bool, error)
	// Send submits a transfer and returns the raw node reply. Success recognition is left to the caller.
	Send(ctx context.Context, from, to, amount string) (string, error)
	Close()
}

// Init loads a node client for every configured network into a map keyed by chain id.
func Init(bc []config.NetworkConfig) (m map[string]Client, err error) {
	m = make(map[string]Client)

	for _, net := range bc {
		switch net.Mode {
		case "", config.ModeExec:
			m[net.ChainID] = gethexec.New(net.Binary, net.DataDir, net.Node)
		case config.ModeRPC:
			var c Client

			if c, err = rpc.Init(net.Node, net.Secret, net.Key); err != nil {
				return
			}

			m[net.ChainID] = c
		default:
			log.Printf("Node client mode not defined for %s. Ignoring...\n", net.ChainID)
		}
	}

	return
}

// End closes gracefully all the node clients opened.
func End(bc map[string]Client) {
	for _, c := range bc {
		c.Close()
	}
}
