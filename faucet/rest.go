package faucet

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const timeout = 15

// Init sets up and starts the http/https server to service the RESTful API for the faucet service. If sslPort,
// sslCert and sslKey are informed, it will start an https (TLS) server on the specified endpoint.
func (s *Service) Init(endpoint, port, sslPort, sslCert, sslKey string) string {
	var err, errTLS error

	// API definition
	r := mux.NewRouter()
	r.HandleFunc("/", s.homeHandler)
	r.HandleFunc("/networks", s.networksHandler).Methods("GET")         // get all available networks
	r.HandleFunc("/address/{address}", s.addrBalHandler).Methods("GET") // get address balance
	r.HandleFunc("/faucet_address", s.faucetAddrHandler).Methods("GET") // get the faucet address
	r.HandleFunc("/convert/{pubkey}", s.convertHandler).Methods("GET")  // derive addresses from a public key
	r.HandleFunc("/request", s.requestHandler).Methods("POST")          // request a disbursement
	http.Handle("/", r)

	// setup shutdown channel
	s.sc = make(chan struct{})

	// start http server
	if port != "" {
		s.s = &http.Server{
			Handler: r,
			Addr:    endpoint + ":" + port,
			// Good practice: enforce timeouts for servers you create!
			WriteTimeout: timeout * time.Second,
			ReadTimeout:  timeout * time.Second,
		}

		go func() {
			err = s.s.ListenAndServe()
		}()

		log.Printf("Listening to API http requests on %s:%s", endpoint, port)
	}
	// start https server
	if sslPort != "" && sslCert != "" && sslKey != "" {
		s.ss = &http.Server{
			Handler: r,
			Addr:    endpoint + ":" + sslPort,
			// Good practice: enforce timeouts for servers you create!
			WriteTimeout: timeout * time.Second,
			ReadTimeout:  timeout * time.Second,
		}

		go func() {
			errTLS = s.ss.ListenAndServeTLS(sslCert, sslKey)
		}()

		log.Printf("Listening to API https requests on %s:%s", endpoint, sslPort)
	}
	// wait for servers to be shutdown
	<-s.sc

	return fmt.Sprintf("shutdown http server:%e, https server:%e", err, errTLS)
}
