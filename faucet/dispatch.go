package faucet

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/LianD-09/discord-faucet-bot/lib/convert"
)

// usage holds the per-command usage texts shown on argument-count mismatches.
type usage struct {
	request string
	address string
	balance string
	convert string
}

// buildHelp renders the help message and the usage texts for the configured chain ids (sorted).
func buildHelp(ids []string) (string, usage) {
	netsSuffix := ""
	if len(ids) > 1 {
		netsSuffix = " " + strings.Join(ids, "|")
	}

	u := usage{
		request: "Request tokens through the faucet:\n`$request [0xaddress]" + netsSuffix + "`\n\n",
		address: "Request the faucet address: \n`$faucet_address" + netsSuffix + "`\n\n",
		balance: "Request the address balance:\n`$balance [0xaddress]" + netsSuffix + "`\n\n",
		convert: "Convert HEX address:\n`$convert [compress_public_key_base64]" + netsSuffix + "`",
	}

	var chains strings.Builder
	for _, id := range ids {
		chains.WriteString("- " + id + "\n")
	}

	help := "**Supported chains:**\n" + chains.String() +
		"\n**List of available commands:**\n" +
		"1. " + u.request +
		"2. " + u.address +
		"3. " + u.balance +
		"4. " + u.convert

	return help, u
}

// Dispatch parses one chat command and runs the matching operation, returning the reply text. content that is not a
// command produces an empty reply; every command produces exactly one. requester identifies who asked, it is the chat
// platform's stable user id.
func (s *Service) Dispatch(ctx context.Context, requester, content string) string {
	if !strings.HasPrefix(content, "$") {
		return ""
	}

	fields := strings.Fields(content)
	if fields[0] == "$help" {
		return s.help
	}

	multi := len(s.nets) > 1

	// resolve the target network: trailing argument when more than one is configured
	var net string
	if multi {
		net = fields[len(fields)-1]
		if _, ok := s.nets[net]; !ok {
			return s.help
		}
	} else {
		for id := range s.nets {
			net = id
		}
	}

	// expected field count: command plus its arguments, plus the network name when several are configured
	want := func(args int) bool {
		if multi {
			args++
		}
		return len(fields) == args+1
	}

	switch fields[0] {
	case "$faucet_address":
		if !want(0) {
			return "Please check again. " + s.usage.address
		}
		return fmt.Sprintf("The %s faucet has address `%s`", net, s.nets[net].FaucetAddress)
	case "$balance":
		if !want(1) {
			return "Please check again. " + s.usage.balance
		}
		return s.balanceReply(ctx, fields[1], net)
	case "$request":
		if !want(1) {
			return "Please check again. " + s.usage.request
		}
		res := s.Disburse(ctx, net, requester, fields[1])
		if res.Outcome == Sent {
			return "✅ Hash ID: " + res.Hash
		}
		return res.Reason
	case "$convert":
		if !want(1) {
			return "Please check again. " + s.usage.convert
		}
		return convertReply(fields[1], s.nets[net].Bech32Prefix)
	}

	return s.help
}

// balanceReply queries the node for the balance of an address and renders the reply.
func (s *Service) balanceReply(ctx context.Context, address, netID string) string {
	bal, err := s.bc[netID].GetBalance(ctx, address)
	if err != nil {
		log.Printf("[%s] could not get balance for %s: %v", netID, address, err)
		return replyCannotProcess
	}
	return fmt.Sprintf("Balance for address `%s` in `%s`:\n```%s\n```\n", address, netID, bal)
}

// convertReply derives all address forms of a compressed public key and renders them.
func convertReply(pubKey, prefix string) string {
	a, err := convert.Derive(pubKey, prefix)
	if err != nil {
		log.Printf("could not convert public key: %v", err)
		return "❗ could not handle your request"
	}

	return "```\n" +
		"-------------------------------------------------------------\n" +
		"Your compressed 33-byte secp256k1 public key (base64-encoded): " + pubKey + "\n" +
		"Ethereum Address: " + a.EVM + "\n" +
		"Compressed Public Key (hex): " + a.CompressedHex + "\n" +
		"Uncompressed Public Key (hex): " + a.UncompressedHex + "\n" +
		"-------------------------------------------------------------\n" +
		"Cosmos Wallet Address (bech32): " + a.Wallet + "\n" +
		"Valoper Address (bech32): " + a.Valoper + "\n" +
		"Valcons Address (bech32): " + a.Valcons + "\n" +
		"Consensus HEX Address (hex): " + a.ConsensusHex + "\n" +
		"-------------------------------------------------------------\n" +
		"```"
}
