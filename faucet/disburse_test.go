package faucet

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/LianD-09/discord-faucet-bot/lib/chain"
	"github.com/LianD-09/discord-faucet-bot/lib/config"
	"github.com/LianD-09/discord-faucet-bot/lib/ledger"
)

// fakeClient implements chain.Client with canned replies. sendFn, when set, replaces the canned send reply.
type fakeClient struct {
	balance   string
	balErr    error
	unlocked  bool
	unlockErr error
	sendReply string
	sendErr   error
	sendFn    func(ctx context.Context) (string, error)
	sends     int
}

func (f *fakeClient) GetBalance(ctx context.Context, address string) (string, error) {
	return f.balance, f.balErr
}

func (f *fakeClient) Unlock(ctx context.Context, address string) (bool, error) {
	return f.unlocked, f.unlockErr
}

func (f *fakeClient) Send(ctx context.Context, from, to, amount string) (string, error) {
	f.sends++
	if f.sendFn != nil {
		return f.sendFn(ctx)
	}
	return f.sendReply, f.sendErr
}

func (f *fakeClient) Close() {}

// recLedger records appended entries.
type recLedger struct {
	entries []ledger.Entry
	err     error
}

func (r *recLedger) Append(e ledger.Entry) error {
	r.entries = append(r.entries, e)
	return r.err
}

func newTestService(c *fakeClient, lg ledger.Ledger) *Service {
	nets := []config.NetworkConfig{{
		ChainID:       "testnet-1",
		FaucetAddress: "0xfaucet",
		Amount:        1000,
		Denomination:  "wei",
		DailyCap:      5000,
	}}

	return New("file", lg, nil, map[string]chain.Client{"testnet-1": c}, nets, time.Hour)
}

func TestDisburse(t *testing.T) {
	c := &fakeClient{unlocked: true, sendReply: `"0xdeadbeef"`, balance: "999"}
	lg := &recLedger{}
	s := newTestService(c, lg)

	res := s.Disburse(context.Background(), "testnet-1", "user1", "0xaaa")
	if res.Outcome != Sent {
		t.Fatalf("expected Sent, got %v reason %q", res.Outcome, res.Reason)
	}
	if res.Hash != "0xdeadbeef" {
		t.Errorf("expected hash 0xdeadbeef, got %s", res.Hash)
	}
	if res.Balance != "999wei" {
		t.Errorf("expected balance 999wei, got %s", res.Balance)
	}

	if len(lg.entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(lg.entries))
	}
	e := lg.entries[0]
	if e.Net != "testnet-1" || e.Address != "0xaaa" || e.Amount != "1000wei" || e.Hash != "0xdeadbeef" {
		t.Errorf("unexpected ledger entry %+v", e)
	}

	// the identities are now reserved
	res = s.Disburse(context.Background(), "testnet-1", "user1", "0xbbb")
	if res.Outcome != Rejected {
		t.Errorf("expected Rejected for reserved requester, got %v", res.Outcome)
	}
	if !strings.Contains(res.Reason, "1 hours") {
		t.Errorf("expected the window in the denial, got %q", res.Reason)
	}
}

func TestDisburseUnknownNet(t *testing.T) {
	s := newTestService(&fakeClient{}, &recLedger{})

	if res := s.Disburse(context.Background(), "nosuchnet", "user1", "0xaaa"); res.Outcome != Failed {
		t.Errorf("expected Failed for unknown network, got %v", res.Outcome)
	}
}

func TestDisburseSendError(t *testing.T) {
	c := &fakeClient{unlocked: true, sendErr: errors.New("node down")}
	lg := &recLedger{}
	s := newTestService(c, lg)

	res := s.Disburse(context.Background(), "testnet-1", "user1", "0xaaa")
	if res.Outcome != Failed {
		t.Fatalf("expected Failed, got %v", res.Outcome)
	}
	if len(lg.entries) != 0 {
		t.Errorf("failed disbursement must not reach the ledger")
	}

	// the rollback released the reservations and returned the amount, so a retry goes through
	c.sendErr = nil
	c.sendReply = `"0xdeadbeef"`

	if res = s.Disburse(context.Background(), "testnet-1", "user1", "0xaaa"); res.Outcome != Sent {
		t.Errorf("expected retry to be Sent after rollback, got %v reason %q", res.Outcome, res.Reason)
	}
}

func TestDisburseUnlockFailure(t *testing.T) {
	c := &fakeClient{unlocked: false}
	s := newTestService(c, &recLedger{})

	res := s.Disburse(context.Background(), "testnet-1", "user1", "0xaaa")
	if res.Outcome != Failed {
		t.Fatalf("expected Failed on unlock refusal, got %v", res.Outcome)
	}
	if c.sends != 0 {
		t.Errorf("send must not be attempted after a failed unlock")
	}

	c.unlockErr = errors.New("no keystore")
	if res = s.Disburse(context.Background(), "testnet-1", "user1", "0xaaa"); res.Outcome != Failed {
		t.Errorf("expected Failed on unlock error, got %v", res.Outcome)
	}
}

func TestDisburseNodeRefusal(t *testing.T) {
	c := &fakeClient{unlocked: true, sendReply: "Error: insufficient funds for gas * price + value"}
	lg := &recLedger{}
	s := newTestService(c, lg)

	res := s.Disburse(context.Background(), "testnet-1", "user1", "0xaaa")
	if res.Outcome != Failed {
		t.Fatalf("expected Failed on node refusal, got %v", res.Outcome)
	}
	// the node's message is surfaced verbatim after the generic line
	if !strings.Contains(res.Reason, "insufficient funds") {
		t.Errorf("expected node refusal in the reason, got %q", res.Reason)
	}
	if len(lg.entries) != 0 {
		t.Errorf("refused disbursement must not reach the ledger")
	}

	// reservations were rolled back
	if ok, _ := s.store.CheckTimeLimit("testnet-1", "user1", "0xaaa"); !ok {
		t.Errorf("identities should be free to retry after a refusal")
	}
}

func TestDisburseIgnoresCancelMidSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := &fakeClient{unlocked: true, balance: "999"}
	// the requester hangs up while the send is in flight
	c.sendFn = func(sendCtx context.Context) (string, error) {
		cancel()
		if err := sendCtx.Err(); err != nil {
			return "", err
		}
		return `"0xdeadbeef"`, nil
	}

	lg := &recLedger{}
	s := newTestService(c, lg)

	res := s.Disburse(ctx, "testnet-1", "user1", "0xaaa")
	if res.Outcome != Sent {
		t.Fatalf("a disconnect after the send was issued must not fail the disbursement, got %v reason %q",
			res.Outcome, res.Reason)
	}
	if len(lg.entries) != 1 {
		t.Errorf("expected the completed transfer in the ledger, got %d entries", len(lg.entries))
	}
}

func TestDisburseBalanceFailureStillSent(t *testing.T) {
	c := &fakeClient{unlocked: true, sendReply: `"0xdeadbeef"`, balErr: errors.New("timeout")}
	lg := &recLedger{}
	s := newTestService(c, lg)

	res := s.Disburse(context.Background(), "testnet-1", "user1", "0xaaa")
	if res.Outcome != Sent {
		t.Fatalf("a balance hiccup must not undo a confirmed transfer, got %v", res.Outcome)
	}
	if res.Balance != "" {
		t.Errorf("expected empty balance, got %s", res.Balance)
	}
	if len(lg.entries) != 1 || lg.entries[0].Balance != "" {
		t.Errorf("expected ledger entry with empty balance, got %+v", lg.entries)
	}
}

func TestDisburseDailyCap(t *testing.T) {
	c := &fakeClient{unlocked: true, sendReply: `"0xdeadbeef"`}
	s := newTestService(c, &recLedger{}) // cap 5000, amount 1000

	for i, pair := range [][2]string{
		{"u1", "0x1"}, {"u2", "0x2"}, {"u3", "0x3"}, {"u4", "0x4"}, {"u5", "0x5"},
	} {
		if res := s.Disburse(context.Background(), "testnet-1", pair[0], pair[1]); res.Outcome != Sent {
			t.Fatalf("request %d should fit the cap, got %v", i, res.Outcome)
		}
	}

	res := s.Disburse(context.Background(), "testnet-1", "u6", "0x6")
	if res.Outcome != Rejected {
		t.Fatalf("expected cap rejection, got %v", res.Outcome)
	}
	if res.Reason != replyDailyCap {
		t.Errorf("expected %q, got %q", replyDailyCap, res.Reason)
	}
}

func TestParseSendResult(t *testing.T) {
	if hash, ok := parseSendResult(`"0xabc123"`); !ok || hash != "0xabc123" {
		t.Errorf("expected hash 0xabc123, got %q ok:%v", hash, ok)
	}
	if _, ok := parseSendResult("Error: exceeds block gas limit"); ok {
		t.Errorf("node error text must not parse as a hash")
	}
	if _, ok := parseSendResult(""); ok {
		t.Errorf("empty reply must not parse as a hash")
	}
}
