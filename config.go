package ve

import (
	"fmt"
	"strings"
)

// config.go mirrors the engine's functional-options pattern for building
// an application's run-time Config, plus the `-ve_*` argv convention this
// toolkit layers on top of whatever flags the application itself parses.
// See: http://dave.cheney.net/2014/10/17/functional-options-for-friendly-apis

// Config holds the toolkit-level settings an application can override
// before starting the run loop.
type Config struct {
	debugSpec string
	options   map[string]string
}

// configDefaults mirrors the teacher's pattern of a package-level zero
// value filled in before any Option is applied.
var configDefaults = Config{
	options: map[string]string{},
}

// Option overrides one Config attribute. Used with NewConfig.
//
//	cfg := ve.NewConfig(
//	    ve.DebugSpec("mp=warn,device=info"),
//	    ve.WithOption("fullscreen", "true"),
//	)
type Option func(*Config)

// DebugSpec sets the debug selector, a comma-separated list of
// `subsystem=level` pairs. The Config only stores it (see DebugSelector);
// nothing in this package parses it or applies it to a logger.
func DebugSpec(spec string) Option {
	return func(c *Config) { c.debugSpec = spec }
}

// WithOption seeds one environment-wide option pair, equivalent to one
// `-ve_opt name value` argv pair.
func WithOption(name, value string) Option {
	return func(c *Config) { c.options[name] = value }
}

// NewConfig builds a Config from defaults overridden by opts in order.
func NewConfig(opts ...Option) *Config {
	cfg := configDefaults
	cfg.options = map[string]string{}
	for k, v := range configDefaults.options {
		cfg.options[k] = v
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &cfg
}

// DebugSelector returns the configured debug spec, e.g. "mp=warn,device=info".
func (c *Config) DebugSelector() string { return c.debugSpec }

// Options returns the accumulated name->value option pairs.
func (c *Config) Options() map[string]string { return c.options }

// ParseArgs consumes every `-ve_*` prefixed argument from argv, applying
// its effect to cfg and returning the remaining arguments in original
// order for the application's own flag parsing. Recognized forms:
//
//	-ve_opt <name> <value>   seeds one WithOption pair
//	-ve_debug <spec>         sets the debug selector
//
// An unrecognized -ve_* argument, or one missing its required value(s),
// is a strict parse error -- mirroring the sentinel-argument strictness
// the transport layer applies to -vemp_slave.
func (c *Config) ParseArgs(argv []string) ([]string, error) {
	var rest []string
	for i := 0; i < len(argv); i++ {
		a := argv[i]
		if !strings.HasPrefix(a, "-ve_") {
			rest = append(rest, a)
			continue
		}
		switch a {
		case "-ve_opt":
			if i+2 >= len(argv) {
				return nil, fmt.Errorf("ve: -ve_opt requires <name> <value>")
			}
			c.options[argv[i+1]] = argv[i+2]
			i += 2
		case "-ve_debug":
			if i+1 >= len(argv) {
				return nil, fmt.Errorf("ve: -ve_debug requires <spec>")
			}
			c.debugSpec = argv[i+1]
			i++
		default:
			return nil, fmt.Errorf("ve: unrecognized argument %q", a)
		}
	}
	return rest, nil
}
