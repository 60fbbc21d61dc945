// Package rpcserver exposes WordQuizzle's registration method over a
// well-known RPC registry, grounded on the original Java server's RMI
// registration object (RegistrationRMI/WQServer.registerUser bound under
// "REGISTRATION" at registry port 5678). Go's net/rpc is the closest
// standard-library analogue to RMI's remote-object/registry model without
// opening an HTTP listener; no example in the retrieval pack offers a closer
// non-HTTP RPC substitute, so this one ambient concern rides the standard
// library (see DESIGN.md).
package rpcserver

import (
	"fmt"
	"net"
	"net/rpc"

	"github.com/sirupsen/logrus"

	"github.com/frjnn/wordquizzle/internal/store"
)

// ServiceName is the RPC name the registration method is bound under,
// matching the original "REGISTRATION" RMI binding.
const ServiceName = "REGISTRATION"

// RegisterArgs carries the registration request.
type RegisterArgs struct {
	Username string
	Password string
}

// Registration implements the single registration method. Its Register
// method is exported so net/rpc can bind it under ServiceName.
type Registration struct {
	store *store.UserStore
	log   *logrus.Logger
}

// NewRegistration builds the RPC-exposed registration service.
func NewRegistration(s *store.UserStore, log *logrus.Logger) *Registration {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registration{store: s, log: log}
}

// Register implements the net/rpc method signature (args, *reply) error.
// The four possible reply strings are the wire contract spec.md §4.6
// guarantees regardless of RPC transport.
func (r *Registration) Register(args RegisterArgs, reply *string) error {
	if args.Username == "" {
		*reply = "Invalid username."
		return nil
	}
	if args.Password == "" {
		*reply = "Invalid password."
		return nil
	}

	added, err := r.store.Register(args.Username, args.Password)
	if err != nil {
		r.log.WithError(err).WithField("nickname", args.Username).Error("registration snapshot failed")
	}
	if !added {
		*reply = "Nickname already taken."
		return nil
	}
	*reply = "Registration succeeded."
	r.log.WithField("nickname", args.Username).Info("user registered")
	return nil
}

// Serve binds the registration service under ServiceName and blocks,
// accepting connections on addr (default port 5678). Intended to be run in
// its own goroutine.
func Serve(addr string, reg *Registration) error {
	server := rpc.NewServer()
	if err := server.RegisterName(ServiceName, reg); err != nil {
		return fmt.Errorf("rpcserver: registering %s: %w", ServiceName, err)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rpcserver: listening on %s: %w", addr, err)
	}

	reg.log.WithField("addr", addr).Info("registration RPC endpoint listening")
	server.Accept(ln)
	return nil
}
