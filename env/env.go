//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package env implements the runtime environment of the computing
// parties.
package env

import (
	"crypto/elliptic"
	"crypto/rand"
	"io"

	"github.com/markkurossi/mpcbench/ot"
	"github.com/markkurossi/mpcbench/otext"
)

// DefaultSecurityLevel defines the default symmetric security level
// in bits.
const DefaultSecurityLevel = 128

// Config defines the runtime configuration for the backends. Config
// must not be modified after being passed to any module. It is safe
// for concurrent use by multiple modules as they do not modify it.
type Config struct {
	// Rand is the source of entropy for garbling, OT, and sharing.
	Rand io.Reader

	// SecurityLevel selects the base OT curve.
	SecurityLevel int

	// Threads is the number of worker goroutines for SIMD lanes.
	Threads int

	// Verbose enables progress output.
	Verbose bool
}

// GetRandom returns the source of entropy for garbling, OT, and other
// cryptography operations.
func (config *Config) GetRandom() io.Reader {
	if config.Rand != nil {
		return config.Rand
	}
	return rand.Reader
}

// GetSecurityLevel returns the configured security level.
func (config *Config) GetSecurityLevel() int {
	if config.SecurityLevel == 0 {
		return DefaultSecurityLevel
	}
	return config.SecurityLevel
}

// GetThreads returns the number of worker goroutines.
func (config *Config) GetThreads() int {
	if config.Threads <= 0 {
		return 1
	}
	return config.Threads
}

// Curve returns the base OT curve for the security level.
func (config *Config) Curve() (elliptic.Curve, error) {
	return ot.CurveForSecurity(config.GetSecurityLevel())
}

// NewBaseOT creates a new Chou-Orlandi base OT.
func (config *Config) NewBaseOT() (ot.OT, error) {
	curve, err := config.Curve()
	if err != nil {
		return nil, err
	}
	return ot.NewCO(curve, config.GetRandom()), nil
}

// NewOT creates a new IKNP extended OT on top of the base OT.
func (config *Config) NewOT() (ot.OT, error) {
	base, err := config.NewBaseOT()
	if err != nil {
		return nil, err
	}
	return otext.NewIKNP(base, config.GetRandom()), nil
}
