//
// config.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package party

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/markkurossi/mpcbench/env"
	"github.com/markkurossi/mpcbench/share"
)

// Connection defaults.
const (
	DefaultAddress     = "127.0.0.1"
	DefaultPort        = 7766
	DefaultDialRetries = 50
	DefaultDialDelay   = 100 * time.Millisecond
)

// ConfigError reports an invalid party configuration. It is returned
// before any network activity.
type ConfigError struct {
	Field string
	Value interface{}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Value)
}

// Config defines the party configuration.
type Config struct {
	Role          share.Role
	Address       string
	Port          int
	SecurityLevel int
	Threads       int
	Verbose       bool

	// DialRetries and DialDelay control how long the CLIENT waits for
	// the SERVER to start listening.
	DialRetries int
	DialDelay   time.Duration

	// Rand overrides the source of entropy.
	Rand io.Reader
}

// Validate checks the configuration. The endpoint is checked only if
// network is true.
func (cfg *Config) Validate(network bool) error {
	if cfg.Role != share.Server && cfg.Role != share.Client {
		return &ConfigError{
			Field: "role",
			Value: int(cfg.Role),
		}
	}
	switch cfg.SecurityLevel {
	case 0, 80, 112, 128, 192, 256:
	default:
		return &ConfigError{
			Field: "security level",
			Value: cfg.SecurityLevel,
		}
	}
	if cfg.Threads < 0 {
		return &ConfigError{
			Field: "thread count",
			Value: cfg.Threads,
		}
	}
	if !network {
		return nil
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return &ConfigError{
			Field: "port",
			Value: cfg.Port,
		}
	}
	if cfg.Role == share.Client && len(cfg.Address) == 0 {
		return &ConfigError{
			Field: "address",
			Value: cfg.Address,
		}
	}
	if cfg.DialRetries < 0 {
		return &ConfigError{
			Field: "dial retries",
			Value: cfg.DialRetries,
		}
	}
	return nil
}

// Endpoint returns the host:port of the SERVER. Port 0 selects
// DefaultPort.
func (cfg *Config) Endpoint() string {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(cfg.Address, strconv.Itoa(port))
}

func (cfg *Config) dialDelay() time.Duration {
	if cfg.DialDelay <= 0 {
		return DefaultDialDelay
	}
	return cfg.DialDelay
}

func (cfg *Config) env() *env.Config {
	return &env.Config{
		Rand:          cfg.Rand,
		SecurityLevel: cfg.SecurityLevel,
		Threads:       cfg.Threads,
		Verbose:       cfg.Verbose,
	}
}
