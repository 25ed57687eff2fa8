//
// options.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package bench implements the multiplication chain benchmark: the
// command line options, the run of one party, and the result
// reporting.
package bench

import (
	"flag"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/mpcbench/chain"
	"github.com/markkurossi/mpcbench/party"
	"github.com/markkurossi/mpcbench/results"
	"github.com/markkurossi/mpcbench/share"
)

// Flags holds the command line options before the inputs are parsed
// into their numeric type.
type Flags struct {
	Role      int
	Lanes     int
	Bits      int
	Security  int
	Address   string
	Port      int
	Domain    string
	X         string
	Y         string
	Depth     int
	Precision int
	Threads   int
	Swap      bool
	Verbose   bool
	Redis     string
	HTTP      string
	MySQL     string
	JSON      string
	Chart     string
}

// Register registers the flags to the flag set.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.IntVar(&f.Role, "r", -1, "role: 0 (SERVER) or 1 (CLIENT)")
	fs.IntVar(&f.Lanes, "n", 1, "number of parallel SIMD lanes")
	fs.IntVar(&f.Bits, "b", 64, "bit length of the fixed point domains")
	fs.IntVar(&f.Security, "s", 128, "symmetric security bits")
	fs.StringVar(&f.Address, "a", party.DefaultAddress, "server address")
	fs.IntVar(&f.Port, "p", party.DefaultPort, "server port, 0 for the default")
	fs.StringVar(&f.Domain, "t", "",
		"domain: fixed, float, or scaled (default from inputs)")
	fs.StringVar(&f.X, "x", "0", "input a")
	fs.StringVar(&f.Y, "y", "0", "input b")
	fs.IntVar(&f.Depth, "d", chain.DefaultDepth, "chain depth")
	fs.IntVar(&f.Precision, "prec", chain.DefaultPrecision,
		"fractional bits of the scaled domain")
	fs.IntVar(&f.Threads, "threads", 1, "number of worker threads")
	fs.BoolVar(&f.Swap, "swap", false, "swap the input owners")
	fs.BoolVar(&f.Verbose, "v", false, "verbose output")
	fs.StringVar(&f.Redis, "redis", "", "publish results to Redis `url`")
	fs.StringVar(&f.HTTP, "http", "", "post results to `url`")
	fs.StringVar(&f.MySQL, "mysql", "", "insert results to MySQL `dsn`")
	fs.StringVar(&f.JSON, "json", "", "append results to JSON lines `file`")
	fs.StringVar(&f.Chart, "chart", "", "write phase timing chart to `file`")
}

// ParseFlags registers the flags to fs and parses the arguments.
func ParseFlags(fs *flag.FlagSet, args []string) (*Flags, error) {
	f := new(Flags)
	f.Register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, errors.Newf("unexpected arguments: %v", fs.Args())
	}
	return f, nil
}

func isFloat(s string) bool {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strings.ContainsAny(s, "pP")
	}
	return strings.ContainsAny(strings.ToLower(s), ".ein")
}

// ChainDomain returns the selected domain. Without an explicit
// domain, inputs written as floats select the float domain and
// integers the fixed point domain.
func (f *Flags) ChainDomain() (chain.Domain, error) {
	if len(f.Domain) > 0 {
		return chain.ParseDomain(f.Domain)
	}
	if isFloat(f.X) || isFloat(f.Y) {
		return chain.FloatEmulated, nil
	}
	return chain.FixedPoint, nil
}

// Party returns the party configuration.
func (f *Flags) Party() party.Config {
	return party.Config{
		Role:          share.Role(f.Role),
		Address:       f.Address,
		Port:          f.Port,
		SecurityLevel: f.Security,
		Threads:       f.Threads,
		Verbose:       f.Verbose,
		DialRetries:   party.DefaultDialRetries,
	}
}

// Options define a benchmark run with inputs of type T.
type Options[T chain.Number] struct {
	Party     party.Config
	Domain    chain.Domain
	Lanes     int
	Bits      int
	Depth     int
	Precision int
	X         T
	Y         T
	Swap      bool
}

// NewOptions creates the run options from the flags.
func NewOptions[T chain.Number](f *Flags) (*Options[T], error) {
	domain, err := f.ChainDomain()
	if err != nil {
		return nil, &party.ConfigError{
			Field: "domain",
			Value: f.Domain,
		}
	}
	opts := &Options[T]{
		Party:     f.Party(),
		Domain:    domain,
		Lanes:     f.Lanes,
		Bits:      f.Bits,
		Depth:     f.Depth,
		Precision: f.Precision,
		Swap:      f.Swap,
	}
	if err := opts.checkType(); err != nil {
		return nil, err
	}
	opts.X, err = ParseNumber[T](f.X)
	if err != nil {
		return nil, &party.ConfigError{
			Field: "input a",
			Value: f.X,
		}
	}
	opts.Y, err = ParseNumber[T](f.Y)
	if err != nil {
		return nil, &party.ConfigError{
			Field: "input b",
			Value: f.Y,
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (opts *Options[T]) checkType() error {
	var zero T
	_, isFloat := any(zero).(float64)
	if isFloat != (opts.Domain == chain.FloatEmulated) {
		return &party.ConfigError{
			Field: "domain",
			Value: opts.Domain,
		}
	}
	return nil
}

// Validate checks the options.
func (opts *Options[T]) Validate() error {
	if err := opts.checkType(); err != nil {
		return err
	}
	if opts.Lanes < 1 {
		return &party.ConfigError{
			Field: "lane count",
			Value: opts.Lanes,
		}
	}
	if opts.Depth < 0 {
		return &party.ConfigError{
			Field: "depth",
			Value: opts.Depth,
		}
	}
	switch opts.Domain {
	case chain.FloatEmulated:
		if opts.Bits != 64 {
			return &party.ConfigError{
				Field: "bit length",
				Value: opts.Bits,
			}
		}
	case chain.ScaledFixedPoint:
		if opts.Precision < 1 || opts.Bits < 2 || opts.Bits > 64 ||
			2*opts.Precision >= opts.Bits {
			return &party.ConfigError{
				Field: "precision",
				Value: opts.Precision,
			}
		}
	default:
		if opts.Bits < 1 || opts.Bits > 64 {
			return &party.ConfigError{
				Field: "bit length",
				Value: opts.Bits,
			}
		}
	}
	return nil
}

// Owners returns the owners of the inputs a and b.
func (opts *Options[T]) Owners() [2]share.Role {
	if opts.Swap {
		return [2]share.Role{share.Client, share.Server}
	}
	return [2]share.Role{share.Server, share.Client}
}

// ParseNumber parses the value of type T. Integers may use the Go
// base prefixes.
func ParseNumber[T chain.Number](s string) (T, error) {
	var zero T
	switch any(zero).(type) {
	case float64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return zero, err
		}
		return any(v).(T), nil
	default:
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return zero, err
		}
		return any(v).(T), nil
	}
}

// FormatNumber formats the value the way the results are printed:
// floats with 15 fractional digits.
func FormatNumber[T chain.Number](v T) string {
	switch v := any(v).(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', 15, 64)
	case uint64:
		return strconv.FormatUint(v, 10)
	}
	panic("unsupported type")
}

// Sinks opens the result sinks selected by the flags.
func (f *Flags) Sinks() (results.Sinks, error) {
	var sinks results.Sinks

	if len(f.Redis) > 0 {
		sink, err := results.NewRedisSink(f.Redis)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	if len(f.HTTP) > 0 {
		sinks = append(sinks, results.NewHTTPSink(f.HTTP))
	}
	if len(f.MySQL) > 0 {
		sink, err := results.NewSQLSink(f.MySQL)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	if len(f.JSON) > 0 {
		file, err := openAppend(f.JSON)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, results.NewWriterSink(file))
	}
	return sinks, nil
}
