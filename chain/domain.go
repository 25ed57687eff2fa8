//
// domain.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package chain builds the dependent multiplication chains of the
// benchmark.
package chain

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/share"
)

// Domain specifies the numeric domain of the chain.
type Domain int

// Numeric domains.
const (
	FixedPoint Domain = iota
	FloatEmulated
	ScaledFixedPoint
)

var domains = map[Domain]string{
	FixedPoint:       "fixed",
	FloatEmulated:    "float",
	ScaledFixedPoint: "scaled",
}

func (d Domain) String() string {
	name, ok := domains[d]
	if ok {
		return name
	}
	return fmt.Sprintf("{Domain %d}", int(d))
}

// Sharing returns the sharing scheme the domain is computed with.
func (d Domain) Sharing() share.Sharing {
	if d == FixedPoint {
		return share.Arithmetic
	}
	return share.Boolean
}

// ParseDomain parses the domain name.
func ParseDomain(name string) (Domain, error) {
	for d, n := range domains {
		if strings.EqualFold(n, name) {
			return d, nil
		}
	}
	return 0, errors.Newf("unknown domain '%s'", name)
}
