// Package rpc implements the node client over JSON-RPC using ethcli. In this mode the faucet signs with a configured
// key instead of asking the node to unlock an account, so Unlock only reports whether a key is available.
package rpc

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/tarancss/ethcli"

	"github.com/LianD-09/discord-faucet-bot/lib/chain/types"
)

// Client wraps an ethcli connection to an ethereum-type node.
type Client struct {
	c   *ethcli.EthCli
	key string
}

// Init returns a connection to a node, using secret if necessary for basic authentication. key is the hex-encoded
// private key used to sign transfers.
func Init(node, secret, key string) (*Client, error) {
	c := ethcli.Init(node, secret)
	if c == nil {
		return nil, errors.New("cannot connect to node in " + node)
	}
	return &Client{c: c, key: key}, nil
}

// Close ends the connection.
func (c *Client) Close() {
	c.c.End()
}

// GetBalance returns the balance of the address in the smallest denomination.
func (c *Client) GetBalance(ctx context.Context, address string) (string, error) {
	bal, _, err := c.c.GetBalance(address, "")
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrProcess, err)
	}
	return bal.String(), nil
}

// Unlock reports whether a signing key is configured. There is no account to unlock on the node side: rpc mode signs
// locally and submits raw transactions.
func (c *Client) Unlock(ctx context.Context, address string) (bool, error) {
	return c.key != "", nil
}

// Send signs and submits a transfer, returning the reply in the same quoted-hash shape the console backend produces
// so the caller recognizes success the same way for both modes.
func (c *Client) Send(ctx context.Context, from, to, amount string) (string, error) {
	_, _, hash, err := c.c.SendTrx(from, to, "", amount, nil, c.key, 0, false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrProcess, err)
	}
	if len(hash) == 0 {
		return "", fmt.Errorf("%w: node returned no transaction hash", types.ErrParse)
	}
	return `"0x` + hex.EncodeToString(hash) + `"`, nil
}
