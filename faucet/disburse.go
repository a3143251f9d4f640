package faucet

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/LianD-09/discord-faucet-bot/lib/ledger"
	"github.com/LianD-09/discord-faucet-bot/lib/msg"
)

// Outcome classifies the terminal state of a disbursement request.
type Outcome int

const (
	// Sent means the node confirmed the transfer and the ledger was appended.
	Sent Outcome = iota
	// Rejected means a business rule denied the request: time limit or daily cap. Not an error.
	Rejected
	// Failed means the disbursement was attempted but did not complete; all accounting was rolled back.
	Failed
)

// Result is the terminal state of one disbursement request. Reason carries the user-facing message for Rejected and
// Failed outcomes.
type Result struct {
	Outcome Outcome
	Hash    string
	Balance string
	Reason  string
}

// Replies surfaced to the requester.
const (
	replyCannotProcess = "❗ request could not be processed"
	replyDailyCap      = "Sorry, the daily cap for this faucet has been reached"
)

// hashPrefix is the shape of a successful send reply: the node returns the transaction hash as a quoted string.
const hashPrefix = `"0x`

// parseSendResult recognizes a successful transaction submission in the node's raw reply. The format assumption is
// fragile so it lives here and nowhere else: a reply is a success only when it is a quoted transaction hash.
func parseSendResult(reply string) (hash string, ok bool) {
	if !strings.HasPrefix(reply, hashPrefix) {
		return "", false
	}
	return strings.Trim(reply, `"`), true
}

// Disburse runs the admission checks and drives the node through unlock and send, recording the result to the ledger
// on success. Any failure after admission rolls the accounting back so the request leaves no trace. Once the send is
// issued the sequence runs to a terminal state, it cannot be cancelled.
func (s *Service) Disburse(ctx context.Context, netID, requester, address string) (res Result) {
	net, okN := s.nets[netID]
	client, okC := s.bc[netID]
	if !okN || !okC {
		return Result{Outcome: Failed, Reason: replyCannotProcess}
	}

	// the accounting state must never be left reserved after an unhandled failure
	var capped, reserved bool
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[%s] panic during disbursement for %s: %v", netID, address, r)
			if reserved {
				s.store.Rollback(netID, requester, address)
			} else if capped {
				s.store.RollbackCap(netID)
			}
			requestsTotal.WithLabelValues(netID, "failed").Inc()
			res = Result{Outcome: Failed, Reason: replyCannotProcess}
		}
	}()

	// daily cap first: a cap denial must not consume a time-limit reservation
	if !s.store.CheckDailyCap(netID) {
		log.Printf("[%s] %s requested tokens for %s but the daily cap has been reached", netID, requester, address)
		requestsTotal.WithLabelValues(netID, "rejected").Inc()
		rejectionsTotal.WithLabelValues(netID, "cap").Inc()

		return Result{Outcome: Rejected, Reason: replyDailyCap}
	}
	capped = true

	ok, wait := s.store.CheckTimeLimit(netID, requester, address)
	if !ok {
		s.store.RollbackCap(netID)
		log.Printf("[%s] %s requested tokens for %s and was rejected", netID, requester, address)
		requestsTotal.WithLabelValues(netID, "rejected").Inc()
		rejectionsTotal.WithLabelValues(netID, "timelimit").Inc()

		return Result{Outcome: Rejected, Reason: waitReply(s.store.Timeout(), wait)}
	}
	reserved = true

	// admission is secured: from here the sequence runs to a terminal state. The requester hanging up must not kill
	// a send the node may already have broadcast, so the node calls run detached from the caller's cancellation and
	// are bounded only by each backend's own call deadline.
	ctx = context.Background()

	unlocked, err := client.Unlock(ctx, net.FaucetAddress)
	if err != nil || !unlocked {
		if err != nil {
			log.Printf("[%s] failed to unlock faucet: %v", netID, err)
		} else {
			log.Printf("[%s] failed to unlock faucet", netID)
		}
		s.store.Rollback(netID, requester, address)
		requestsTotal.WithLabelValues(netID, "failed").Inc()

		return Result{Outcome: Failed, Reason: replyCannotProcess}
	}

	reply, err := client.Send(ctx, net.FaucetAddress, address, amountString(net))
	if err != nil {
		log.Printf("[%s] send failed: %v", netID, err)
		s.store.Rollback(netID, requester, address)
		requestsTotal.WithLabelValues(netID, "failed").Inc()

		return Result{Outcome: Failed, Reason: replyCannotProcess}
	}

	log.Printf("[%s] %s requested tokens for %s", netID, requester, address)

	hash, sent := parseSendResult(reply)
	if !sent {
		// the node's structured refusal is passed through to the requester
		s.store.Rollback(netID, requester, address)
		requestsTotal.WithLabelValues(netID, "failed").Inc()

		return Result{Outcome: Failed, Reason: replyCannotProcess + "\n" + reply}
	}

	// best effort from here on: the transfer happened, a balance or ledger hiccup must not undo it
	var balance string
	if bal, errBal := client.GetBalance(ctx, net.FaucetAddress); errBal != nil {
		log.Printf("[%s] could not read faucet balance after send: %v", netID, errBal)
	} else {
		balance = bal + net.Denomination
	}

	entry := ledger.Entry{
		When:    time.Now(),
		Net:     netID,
		Address: address,
		Amount:  amountString(net) + net.Denomination,
		Hash:    hash,
		Balance: balance,
	}
	if errLg := s.ledger.Append(entry); errLg != nil {
		log.Printf("[%s] could not append ledger entry: %v", netID, errLg)
	}

	if s.mb != nil {
		event := msg.DisburseEvent{Net: netID, Requester: requester, Address: address, Amount: entry.Amount, Hash: hash}
		if errMb := s.mb.SendDisbursement(netID, event); errMb != nil {
			log.Printf("[%s] could not publish disbursement event: %v", netID, errMb)
		}
	}

	requestsTotal.WithLabelValues(netID, "sent").Inc()
	disbursedTotal.WithLabelValues(netID).Add(float64(net.Amount))

	return Result{Outcome: Sent, Hash: hash, Balance: balance}
}

// waitReply renders the time-limit denial with the remaining wait.
func waitReply(timeout, wait time.Duration) string {
	return fmt.Sprintf("🚫 You can request coins no more than once every %d hours for the same testnet, "+
		"please try again in %s", int(timeout.Hours()), formatWait(wait))
}

// formatWait reports the remaining wait in whole minutes, switching to whole hours above two hours.
func formatWait(wait time.Duration) string {
	minutes := int(wait.Minutes())
	if wait > hoursThreshold {
		return strconv.Itoa(minutes/60) + " hours"
	}
	return strconv.Itoa(minutes) + " minutes"
}
