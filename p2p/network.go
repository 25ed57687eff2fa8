//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"log"
	"net"
	"time"

	"github.com/cockroachdb/errors"
)

// Listen listens for TCP connections at addr and returns the
// connection of the first peer.
func Listen(addr string) (*Conn, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", addr)
	}
	defer listener.Close()

	log.Printf("Listening at %s\n", addr)
	nc, err := listener.Accept()
	if err != nil {
		return nil, errors.Wrap(err, "accept")
	}
	log.Printf("New connection from %s\n", nc.RemoteAddr())

	return NewConn(nc), nil
}

// Dial connects to the peer at addr. A failed connect is retried
// after delay until retries attempts have been made.
func Dial(addr string, retries int, delay time.Duration) (*Conn, error) {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			log.Printf("Connect to %s failed, retrying in %s\n", addr, delay)
			<-time.After(delay)
		}
		var nc net.Conn
		nc, err = net.Dial("tcp", addr)
		if err == nil {
			log.Printf("Connected to %s\n", addr)
			return NewConn(nc), nil
		}
	}
	return nil, errors.Wrapf(err, "dial %s", addr)
}
