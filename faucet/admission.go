package faucet

import (
	"sync"
	"time"

	"github.com/LianD-09/discord-faucet-bot/lib/config"
)

// dayFormat is the calendar resolution of the daily tally.
const dayFormat = "2006-01-02"

// hoursThreshold is the wait above which the remaining time is reported in whole hours instead of minutes.
const hoursThreshold = 120 * time.Minute

// netState is the accounting record for one network: the live reservations keyed by identity (requester id or
// destination address) and the running tally for the active day. All access goes through the mutex; node calls never
// happen while it is held.
type netState struct {
	mu           sync.Mutex
	amount       int64
	cap          int64
	reservations map[string]time.Time // identity -> next eligible request time
	tally        int64
	activeDay    string
}

// Store owns the mutable accounting state of every network: the admission checks, the reservations they take and the
// rollbacks that undo them. Nothing else in the service mutates this state.
type Store struct {
	nets    map[string]*netState
	timeout time.Duration
	now     func() time.Time
}

// NewStore builds the accounting entries for the configured networks. timeout is the window during which an identity
// that received a disbursement may not request again.
func NewStore(nets []config.NetworkConfig, timeout time.Duration) *Store {
	s := &Store{
		nets:    make(map[string]*netState),
		timeout: timeout,
		now:     time.Now,
	}
	for _, n := range nets {
		s.nets[n.ChainID] = &netState{
			amount:       n.Amount,
			cap:          n.DailyCap,
			reservations: make(map[string]time.Time),
			activeDay:    s.now().Format(dayFormat),
		}
	}
	return s
}

// CheckDailyCap reports whether one more disbursement fits the network's daily budget, counting it into the tally
// when it does. The first request after the date advances always resets the tally and is admitted, even when a single
// amount exceeds the cap; that behaviour is deliberate, a fresh day never starts blocked.
func (s *Store) CheckDailyCap(netID string) bool {
	n, ok := s.nets[netID]
	if !ok {
		return false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	today := s.now().Format(dayFormat)
	if today != n.activeDay {
		// the date has changed, reset the tally
		n.activeDay = today
		n.tally = n.amount

		return true
	}

	if n.tally+n.amount <= n.cap {
		n.tally += n.amount

		return true
	}

	return false
}

// CheckTimeLimit reports whether requester and address are both free of a live reservation on the network. When they
// are, reservations for both are taken and the caller owns them: it must either complete the disbursement or call
// Rollback, otherwise the identities stay blocked for the full window with nothing sent. On denial the remaining wait
// is returned. Expired reservations are dropped as they are observed.
func (s *Store) CheckTimeLimit(netID, requester, address string) (bool, time.Duration) {
	n, ok := s.nets[netID]
	if !ok {
		return false, 0
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	now := s.now()
	for _, id := range []string{requester, address} {
		next, held := n.reservations[id]
		if !held {
			continue
		}
		if next.After(now) {
			return false, next.Sub(now)
		}
		delete(n.reservations, id)
	}

	next := now.Add(s.timeout)
	n.reservations[requester] = next
	n.reservations[address] = next

	return true, 0
}

// Rollback releases the reservations held by requester and address on the network and returns the reserved amount to
// the daily budget. The tally is only adjusted when a reservation was actually released, so calling it twice leaves
// the state exactly as calling it once.
func (s *Store) Rollback(netID, requester, address string) {
	n, ok := s.nets[netID]
	if !ok {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	released := false
	for _, id := range []string{requester, address} {
		if _, held := n.reservations[id]; held {
			delete(n.reservations, id)
			released = true
		}
	}

	if released {
		n.tally -= n.amount
		if n.tally < 0 {
			n.tally = 0
		}
	}
}

// RollbackCap undoes the tally increment of a CheckDailyCap approval when no reservations were taken, which happens
// when the time-limit check denies right after the cap admitted the amount.
func (s *Store) RollbackCap(netID string) {
	n, ok := s.nets[netID]
	if !ok {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.tally -= n.amount
	if n.tally < 0 {
		n.tally = 0
	}
}

// Timeout returns the configured reservation window.
func (s *Store) Timeout() time.Duration {
	return s.timeout
}
