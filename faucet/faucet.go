// package faucet implements the testnet token faucet service.
//
// The service answers chat commands (and the mirroring RESTful API) for one or more configured test networks: it
// checks balances, converts public keys, and disburses a fixed amount of test currency per request, gated by
// per-identity time limits and a per-network daily cap.
package faucet

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/LianD-09/discord-faucet-bot/lib/chain"
	"github.com/LianD-09/discord-faucet-bot/lib/config"
	"github.com/LianD-09/discord-faucet-bot/lib/ledger"
	"github.com/LianD-09/discord-faucet-bot/lib/ledger/db"
	"github.com/LianD-09/discord-faucet-bot/lib/msg"
	"github.com/LianD-09/discord-faucet-bot/lib/util"
)

// Service contains the data necessary to deliver the faucet.
type Service struct {
	dbtype string
	ledger ledger.Ledger           // disbursement log
	bc     map[string]chain.Client // node clients by chain id
	nets   map[string]config.NetworkConfig
	store  *Store        // admission accounting
	mb     msg.MsgBroker // optional, nil disables event publishing
	help   string
	usage  usage
	s      *http.Server  // http server
	ss     *http.Server  // https server
	sc     chan struct{} // http server channel used for graceful shutdowns
}

// New returns a pointer to a new faucet Service.
func New(dbtype string, lg ledger.Ledger, mb msg.MsgBroker, bc map[string]chain.Client, nets []config.NetworkConfig,
	timeout time.Duration) *Service {
	m := make(map[string]config.NetworkConfig, len(nets))
	for _, n := range nets {
		m[n.ChainID] = n
	}

	s := &Service{
		dbtype: dbtype,
		ledger: lg,
		bc:     bc,
		nets:   m,
		store:  NewStore(nets, timeout),
		mb:     mb,
	}
	s.help, s.usage = buildHelp(util.SortedKeys(m))

	return s
}

// Stop shuts down the http servers implementing the RESTful API and closes gracefully the connections to the message
// broker, the node clients and the ledger.
func (s *Service) Stop() {
	var err error
	// shutdown http server
	if s.s != nil {
		if err = s.s.Shutdown(context.Background()); err != nil {
			log.Printf("Error in http server shutdown:%e", err)
		}
	}
	if s.ss != nil {
		if err = s.ss.Shutdown(context.Background()); err != nil {
			log.Printf("Error in https server shutdown:%e", err)
		}
	}
	if s.sc != nil {
		close(s.sc) // close server channel to indicate shutdowns have finished
	}
	// close message broker
	if s.mb != nil {
		if err = s.mb.Close(); err != nil {
			log.Printf("Error closing message broker:%e", err)
		}
	}
	// close node clients
	chain.End(s.bc)
	// close ledger
	if s.ledger != nil {
		err = db.Close(s.dbtype, s.ledger)
		log.Printf("Disconnecting %v ledger, err:%e\n", s.dbtype, err)
	}
}

// amountString renders a network's per-request amount the way the node expects it.
func amountString(n config.NetworkConfig) string {
	return strconv.FormatInt(n.Amount, 10)
}
