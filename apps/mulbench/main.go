//
// main.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Command mulbench runs one party of the secure multiplication chain
// benchmark. Start the SERVER with -r 0 and the CLIENT with -r 1:
//
//	mulbench -r 0 -x 2.0 -y 1.5
//	mulbench -r 1 -x 2.0 -y 1.5
package main

import (
	"flag"
	"log"
	"os"

	"github.com/markkurossi/mpcbench/bench"
)

func main() {
	log.SetFlags(0)

	err := bench.Main(os.Args[1:], os.Stdout)
	if err == flag.ErrHelp {
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}
