// Package faucetbot and its sub-packages implement a chat-command-driven token faucet for one or more blockchain
// test networks.
/*
The faucet receives commands from a chat frontend (or its RESTful API), enforces per-requester and per-address time
limits plus a daily disbursement cap for each configured network, drives the node to unlock the faucet account and
submit the transfer, and records every successful disbursement to an append-only ledger.

Architecture

The core service (package faucet) is split in three parts. The admission store owns all mutable accounting state: one
entry per network holding the active reservations and the daily tally, serialized behind a per-network lock. The
disbursement orchestrator runs the cap check, the time-limit check, the unlock and the send in order, and compensates
the accounting state whenever a later step fails. The command dispatcher parses chat commands ($request, $balance,
$convert, $faucet_address, $help) and renders the replies; it is transport agnostic, so any chat frontend that can
deliver "a command with arguments" and post back "a reply" can drive it.

A node layer (package lib/chain) reduces the blockchain node to three operations: balance query, account unlock and
transaction send. The default backend shells out to the node binary (geth attach style); an alternative backend talks
JSON-RPC directly. The faucet never signs transactions itself, key management stays with the node.

The ledger layer (package lib/ledger) provides a product agnostic interface for the append-only disbursement log with
file (CSV), MongoDB and PostgreSQL backends, configured via the JSON config file at service startup.

Completed disbursements can also be published as events to a message broker (package lib/msg) so other services can
consume them in real time. The broker is optional and implemented as a product agnostic layer.

The service can be monitored via a Prometheus API by setting the flag "-m" at startup.

Faucet

The faucet service can be started running cmd/faucetd/main.go. It exposes an HTTP RESTful API mirroring the chat
command surface: available networks, address balances, the faucet address, the public key converter and the
disbursement request itself.
*/
package faucetbot
