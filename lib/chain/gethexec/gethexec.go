// Package gethexec implements the node client by shelling out to the node binary (geth attach style).
package gethexec

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"

	"github.com/LianD-09/discord-faucet-bot/lib/chain/types"
)

// Unlock parameters passed to personal.unlockAccount. The password is the throwaway one the testnet keystores are
// created with; the duration only needs to outlive the send that follows.
const (
	unlockPassword = "1"
	unlockSeconds  = 300
)

// callTimeout bounds every node invocation so a hung node cannot stall the request pipeline.
const callTimeout = 30 * time.Second

// Client runs the node binary once per operation: <binary> --datadir <dir> --exec <js> attach <node>.
type Client struct {
	binary  string
	datadir string
	node    string
	timeout time.Duration
}

// New returns a client for the node binary at the given data directory and node url.
func New(binary, datadir, node string) *Client {
	return &Client{binary: binary, datadir: datadir, node: node, timeout: callTimeout}
}

// Close ends a connection. The exec client holds no resources.
func (c *Client) Close() {}

// run executes one console statement against the node and returns its output with newlines stripped.
func (c *Client) run(ctx context.Context, script string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, "--datadir", c.datadir, "--exec", script, "attach", c.node)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Printf("Called Process Error: %v, stderr: %s", err, firstLine(stderr.String()))
		return "", fmt.Errorf("%w: %s", types.ErrProcess, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(strings.ReplaceAll(out.String(), "\n", "")), nil
}

// GetBalance queries the node for the balance of the given address.
func (c *Client) GetBalance(ctx context.Context, address string) (string, error) {
	reply, err := c.run(ctx, fmt.Sprintf("eth.getBalance('%s')", address))
	if err != nil {
		return "", err
	}
	if reply == "" {
		return "", fmt.Errorf("%w: empty balance response", types.ErrParse)
	}
	return reply, nil
}

// Unlock asks the node to unlock the given account for signing.
func (c *Client) Unlock(ctx context.Context, address string) (bool, error) {
	reply, err := c.run(ctx,
		fmt.Sprintf("personal.unlockAccount('%s','%s',%d)", address, unlockPassword, unlockSeconds))
	if err != nil {
		return false, err
	}
	switch reply {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: unlock replied %q", types.ErrParse, reply)
}

// Send submits a transfer through the node console and returns the raw reply. A successful submission is the quoted
// transaction hash; anything else is the node's error text, which the caller decides how to surface.
func (c *Client) Send(ctx context.Context, from, to, amount string) (string, error) {
	reply, err := c.run(ctx, fmt.Sprintf("eth.sendTransaction({from:'%s',to:'%s',value:'%s'})", from, to, amount))
	if err != nil {
		return "", err
	}
	if reply == "" {
		return "", fmt.Errorf("%w: empty send response", types.ErrParse)
	}
	return reply, nil
}

// firstLine trims stderr output for the log, full detail travels in the wrapped error.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
