package faucet

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/LianD-09/discord-faucet-bot/lib/config"
)

func newTestStore(amount, cap int64, timeout time.Duration) *Store {
	return NewStore([]config.NetworkConfig{
		{ChainID: "testnet-1", Amount: amount, DailyCap: cap},
	}, timeout)
}

func TestCheckDailyCap(t *testing.T) {
	s := newTestStore(40, 100, time.Hour)

	// 40 + 40 fit the cap of 100, the third request does not
	if !s.CheckDailyCap("testnet-1") {
		t.Errorf("first request should fit the cap")
	}
	if !s.CheckDailyCap("testnet-1") {
		t.Errorf("second request should fit the cap")
	}
	if s.CheckDailyCap("testnet-1") {
		t.Errorf("third request should exceed the cap")
	}

	if s.CheckDailyCap("nosuchnet") {
		t.Errorf("unknown network should never be admitted")
	}
}

func TestCheckDailyCapDayRollover(t *testing.T) {
	s := newTestStore(500, 100, time.Hour)

	base := time.Date(2023, 5, 10, 23, 50, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	// the single amount exceeds the cap, yet the first request of a fresh day is admitted
	if !s.CheckDailyCap("testnet-1") {
		t.Errorf("first request of the day should be admitted even above the cap")
	}
	if s.CheckDailyCap("testnet-1") {
		t.Errorf("second request should exceed the cap")
	}

	// midnight passes, the tally resets and the next request goes through
	s.now = func() time.Time { return base.Add(20 * time.Minute) }
	if !s.CheckDailyCap("testnet-1") {
		t.Errorf("first request after the date change should be admitted")
	}
}

func TestCheckTimeLimit(t *testing.T) {
	s := newTestStore(10, 1000, time.Hour)

	base := time.Date(2023, 5, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	ok, _ := s.CheckTimeLimit("testnet-1", "user1", "0xaaa")
	if !ok {
		t.Fatalf("first request should be approved")
	}

	// 30 minutes in, both identities are still reserved
	s.now = func() time.Time { return base.Add(30 * time.Minute) }
	ok, wait := s.CheckTimeLimit("testnet-1", "user1", "0xbbb")
	if ok {
		t.Errorf("requester should still be reserved")
	}
	if got := formatWait(wait); got != "30 minutes" {
		t.Errorf("expected wait of 30 minutes, got %s", got)
	}

	ok, _ = s.CheckTimeLimit("testnet-1", "user2", "0xaaa")
	if ok {
		t.Errorf("address should still be reserved")
	}

	// an unrelated pair is free
	ok, _ = s.CheckTimeLimit("testnet-1", "user2", "0xbbb")
	if !ok {
		t.Errorf("unrelated identities should be approved")
	}

	// just past the window the original pair is free again
	s.now = func() time.Time { return base.Add(time.Hour + time.Second) }
	ok, _ = s.CheckTimeLimit("testnet-1", "user1", "0xaaa")
	if !ok {
		t.Errorf("expired reservation should be dropped and the request approved")
	}
}

func TestRollbackIdempotent(t *testing.T) {
	s := newTestStore(40, 100, time.Hour)

	if !s.CheckDailyCap("testnet-1") {
		t.Fatalf("cap check should admit")
	}
	if ok, _ := s.CheckTimeLimit("testnet-1", "user1", "0xaaa"); !ok {
		t.Fatalf("time check should approve")
	}

	s.Rollback("testnet-1", "user1", "0xaaa")
	s.Rollback("testnet-1", "user1", "0xaaa") // second call must be a no-op

	n := s.nets["testnet-1"]
	if n.tally != 0 {
		t.Errorf("expected tally 0 after rollback, got %d", n.tally)
	}
	if len(n.reservations) != 0 {
		t.Errorf("expected no reservations after rollback, got %d", len(n.reservations))
	}

	// the identities can request again right away
	if ok, _ := s.CheckTimeLimit("testnet-1", "user1", "0xaaa"); !ok {
		t.Errorf("rolled back identities should be free to request")
	}
}

func TestRollbackCap(t *testing.T) {
	s := newTestStore(40, 100, time.Hour)

	if !s.CheckDailyCap("testnet-1") {
		t.Fatalf("cap check should admit")
	}
	s.RollbackCap("testnet-1")

	if n := s.nets["testnet-1"]; n.tally != 0 {
		t.Errorf("expected tally 0 after cap rollback, got %d", n.tally)
	}

	// never below zero
	s.RollbackCap("testnet-1")
	if n := s.nets["testnet-1"]; n.tally != 0 {
		t.Errorf("tally must not go negative, got %d", n.tally)
	}
}

func TestCheckDailyCapConcurrent(t *testing.T) {
	s := newTestStore(1, 50, time.Hour)

	var wg sync.WaitGroup

	admitted := make(chan bool, 200)

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			admitted <- s.CheckDailyCap("testnet-1")
		}()
	}
	wg.Wait()
	close(admitted)

	var n int
	for ok := range admitted {
		if ok {
			n++
		}
	}
	if n != 50 {
		t.Errorf("expected exactly 50 admissions, got %d", n)
	}
}

func TestFormatWait(t *testing.T) {
	cases := []struct {
		wait time.Duration
		exp  string
	}{
		{90 * time.Second, "1 minutes"},
		{30 * time.Minute, "30 minutes"},
		{120 * time.Minute, "120 minutes"},
		{121 * time.Minute, "2 hours"},
		{5*time.Hour + 59*time.Minute, "5 hours"},
	}

	for i, c := range cases {
		if got := formatWait(c.wait); got != c.exp {
			t.Errorf("case %s: expected %q got %q", strconv.Itoa(i), c.exp, got)
		}
	}
}
