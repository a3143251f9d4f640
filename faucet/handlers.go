package faucet

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/LianD-09/discord-faucet-bot/lib/convert"
	"github.com/LianD-09/discord-faucet-bot/lib/util"
)

// DisburseReq is the request data required to ask for a disbursement over the RESTful API. Requester is the stable
// identity of whoever asks (chat user id, API client id); it is rate limited exactly like the destination address.
type DisburseReq struct {
	Net       string `json:"net"`
	Requester string `json:"requester"`
	Address   string `json:"address"`
}

// Errors returned to client requests.
var (
	ErrBadRequest = errors.New("bad request")
	ErrMissingNet = errors.New("undefined network - missing query: ?net=<network>")
	ErrNoAddr     = errors.New("undefined address - missing in uri")
	ErrNoNet      = errors.New("network not available")
)

// Response defines the data structure returned to the client making the http request.
type Response struct {
	Body  string `json:"body"`
	Error string `json:"error,omitempty"`
}

// homeHandler just replies a welcome message to the client.
func (s *Service) homeHandler(rw http.ResponseWriter, r *http.Request) {
	var res Response
	// log request
	log.Printf("httpreq from %v %s\n", r.RemoteAddr, r.RequestURI)
	// just reply a welcome message
	res.Body = "Hello, this is your testnet faucet!"
	// reply
	rw.Header().Set("Content-Type", "application/json;charset=utf8")
	_ = json.NewEncoder(rw).Encode(res)
}

// networksHandler replies the networks served by the faucet.
func (s *Service) networksHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var pl []string

	defer func() {
		// reply to requester accordingly
		if err != nil {
			res.Error = fmt.Sprintf("%s", err)

			rw.WriteHeader(http.StatusBadRequest)
		} else {
			rw.WriteHeader(http.StatusOK)
			tmp, _ := json.Marshal(pl)
			res.Body = string(tmp)
		}
		// log request
		log.Printf("httpreq from %v %s res:%+v err:%e\n", r.RemoteAddr, r.RequestURI, pl, err)
		// reply
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	pl = util.SortedKeys(s.nets)
}

// addrBalance struct used to reply balances of addresses from the networks.
type addrBalance struct {
	Net string `json:"net"` // network name
	Bal string `json:"bal"` // balance of the address as the node reports it
}

// addrBalHandler replies the balance of the address requested for all the networks specified in the query, or all
// the configured networks when none is given.
func (s *Service) addrBalHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var bals []addrBalance

	defer func() {
		// reply to requester accordingly
		if err != nil {
			res.Error = fmt.Sprintf("%s", err)

			rw.WriteHeader(http.StatusBadRequest)
		} else {
			rw.WriteHeader(http.StatusOK)
			tmp, _ := json.Marshal(bals)
			res.Body = string(tmp)
		}
		// log request and balances
		log.Printf("httpreq from %v %s bals:%+v err:%e\n", r.RemoteAddr, r.RequestURI, bals, err)
		// reply
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	// parse request
	if err = r.ParseForm(); err != nil {
		log.Print("Error parsing request URL")

		return
	}

	v := mux.Vars(r)
	address, ok := v["address"]
	if !ok {
		err = ErrNoAddr

		return
	}

	var nets []string
	if r.Form != nil {
		nets = r.Form["net"]
	}
	// call all the matching node clients
	for name, client := range s.bc {
		if len(nets) == 0 || util.In(nets, name) {
			var bal string

			if bal, err = client.GetBalance(r.Context(), address); err != nil {
				log.Printf("error getting balance for network %s:%e\n", name, err)

				return
			}

			bals = append(bals, addrBalance{Net: name, Bal: bal})
		}
	}
}

// faucetAddrHandler replies the faucet address of the queried network.
func (s *Service) faucetAddrHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	defer func() {
		// reply to requester accordingly
		if err != nil {
			res.Error = fmt.Sprintf("%s", err)

			if errors.Is(err, ErrNoNet) {
				rw.WriteHeader(http.StatusNotFound)
			} else {
				rw.WriteHeader(http.StatusBadRequest)
			}
		} else {
			rw.WriteHeader(http.StatusOK)
		}
		// log request
		log.Printf("httpreq from %v %s res:%s err:%e\n", r.RemoteAddr, r.RequestURI, res.Body, err)
		// reply
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	var net string
	if net, err = s.netFromQuery(r); err != nil {
		return
	}

	res.Body = s.nets[net].FaucetAddress
}

// convertHandler derives all the address forms of the given compressed public key. The bech32 prefix is taken from
// the queried network when given.
func (s *Service) convertHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var addrs convert.Addresses

	defer func() {
		// reply to requester accordingly
		if err != nil {
			res.Error = fmt.Sprintf("%s", err)

			rw.WriteHeader(http.StatusBadRequest)
		} else {
			rw.WriteHeader(http.StatusOK)
			tmp, _ := json.Marshal(addrs)
			res.Body = string(tmp)
		}
		// log request
		log.Printf("httpreq from %v %s addrs:%+v err:%e\n", r.RemoteAddr, r.RequestURI, addrs, err)
		// reply
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	if err = r.ParseForm(); err != nil {
		log.Print("Error parsing request URL")

		return
	}

	v := mux.Vars(r)
	pubkey, ok := v["pubkey"]
	if !ok {
		err = ErrBadRequest

		return
	}

	prefix := ""
	if net, okN := r.Form["net"]; okN && len(net) == 1 {
		n, okC := s.nets[net[0]]
		if !okC {
			err = ErrNoNet

			return
		}
		prefix = n.Bech32Prefix
	}

	addrs, err = convert.Derive(pubkey, prefix)
}

// requestHandler runs a disbursement and replies the transaction hash, or the denial/failure message otherwise.
func (s *Service) requestHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var result Result

	var req DisburseReq

	defer func() {
		// reply to requester accordingly
		if err != nil {
			res.Error = fmt.Sprintf("%s", err)

			if errors.Is(err, ErrNoNet) {
				rw.WriteHeader(http.StatusNotFound)
			} else {
				rw.WriteHeader(http.StatusBadRequest)
			}
		} else {
			switch result.Outcome {
			case Sent:
				rw.WriteHeader(http.StatusAccepted)
				tmp, _ := json.Marshal(result)
				res.Body = string(tmp)
			case Rejected:
				rw.WriteHeader(http.StatusTooManyRequests)
				res.Error = result.Reason
			case Failed:
				rw.WriteHeader(http.StatusBadGateway)
				res.Error = result.Reason
			}
		}
		// log request and tx hash
		log.Printf("httpreq from %v %s hash:%s err:%e\n", r.RemoteAddr, r.RequestURI, result.Hash, err)
		// reply
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	// get request
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding disbursement request %+v\n", r.Body)

		return
	}

	if req.Address == "" || req.Requester == "" {
		err = ErrBadRequest

		return
	}

	if len(s.nets) == 1 && req.Net == "" {
		for id := range s.nets {
			req.Net = id
		}
	}

	if _, ok := s.nets[req.Net]; !ok {
		err = ErrNoNet

		return
	}

	result = s.Disburse(r.Context(), req.Net, req.Requester, req.Address)
}

// netFromQuery resolves the ?net= query parameter, defaulting to the single configured network when only one exists.
func (s *Service) netFromQuery(r *http.Request) (string, error) {
	if err := r.ParseForm(); err != nil {
		return "", ErrBadRequest
	}

	net, ok := r.Form["net"]
	switch {
	case ok && len(net) == 1:
		if _, okN := s.nets[net[0]]; !okN {
			return "", ErrNoNet
		}
		return net[0], nil
	case len(s.nets) == 1:
		for id := range s.nets {
			return id, nil
		}
	}

	return "", ErrMissingNet
}
