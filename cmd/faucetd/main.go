// Package main: faucet service.
//
// The faucet disburses a fixed amount of test currency per request to the configured networks, gated by per-identity
// time limits and a per-network daily cap. Disbursements are appended to the ledger database and, when a message
// broker is configured, published so downstream consumers (chat bots, dashboards) can react to them.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LianD-09/discord-faucet-bot/faucet"
	"github.com/LianD-09/discord-faucet-bot/lib/chain"
	"github.com/LianD-09/discord-faucet-bot/lib/config"
	"github.com/LianD-09/discord-faucet-bot/lib/ledger"
	"github.com/LianD-09/discord-faucet-bot/lib/ledger/db"
	"github.com/LianD-09/discord-faucet-bot/lib/msg"
	"github.com/LianD-09/discord-faucet-bot/lib/msg/amqp"
)

func main() {
	// get command line flags
	confPath := flag.String("c", "", "flag to get configuration from json file")
	monitor := flag.Bool("m", false, "flag to monitor the server with Prometheus at http://localhost:9100")
	flag.Parse()

	// extract configuration
	conf, err := config.ExtractConfiguration(*confPath)
	if err != nil {
		panic(err)
	}

	if err = conf.Validate(); err != nil {
		panic(err)
	}

	log.Printf("Configuration:%+v", conf)

	// connect to ledger database
	var lg ledger.Ledger

	if lg, err = db.New(conf.DBType, conf.DBConn); err != nil {
		panic(err)
	}

	log.Printf("Connecting to ledger:%+v\n", conf.DBConn)

	// load all node clients
	bc, err := chain.Init(conf.Networks)
	if err != nil {
		panic(err)
	}

	log.Print("Node clients loaded")

	// load Prometheus monitor
	if *monitor {
		go func() {
			log.Println("Serving metrics API")

			h := http.NewServeMux()

			h.Handle("/metrics", promhttp.Handler())
			http.ListenAndServe(":9100", h)
		}()
	}

	// load message broker
	var mb msg.MsgBroker

	switch conf.MbType {
	case "amqp":
		if mb, err = amqp.New(conf.MbConn); err != nil {
			time.Sleep(10 * time.Second) // wait 10s for AMQP to be ready and try to reconnect

			if mb, err = amqp.New(conf.MbConn); err != nil {
				panic(err)
			}
		}

		if err = mb.Setup(nil); err != nil {
			panic(err)
		}
	case "":
		log.Print("No message broker configured, disbursement events disabled")
	default:
		log.Printf("Unknown message broker type: %s\n", conf.MbType)
	}

	// create faucet service
	f := faucet.New(conf.DBType, lg, mb, bc, conf.Networks, time.Duration(conf.RequestTimeout)*time.Second)

	// capture CTRL+C or docker's SIGTERM for gracious exit
	finish := make(chan int)

	go func() {
		sigchan := make(chan os.Signal, 10)
		signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
		<-sigchan
		log.Println("Program killed !")
		// do last actions and wait for all write operations to end
		f.Stop()
		close(finish)
	}()

	// init RESTful API, wait for its return and log response
	log.Printf("Faucet: %s\n", f.Init(conf.RestfulEndpoint, conf.Port, conf.SSLPort, conf.SSLCert, conf.SSLKey))

	<-finish
}
