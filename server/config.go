package server

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is a YAML-backed server configuration, analogous to the
// daemon config structs facebook/time loads for its own services.
type Config struct {
	// ListenAddress is the host:port (or path, for "unix") the
	// Listener binds to.
	ListenAddress string `yaml:"listen_address"`
	// Protocol is one of "udp", "tcp", "unix". Only "udp" gates
	// introspection replies, per spec.md §4.8/§4.10.
	Protocol string `yaml:"protocol"`
	// Workers sets how many goroutines drain the receive queue.
	Workers int `yaml:"workers"`
	// ScheduleLookahead is loaded from the config file, but neither the
	// Dispatcher nor the Listener reads it: Schedule.NextEventDelay
	// always clamps at a fixed 100 seconds.
	// yaml.v2 has no special-case for time.Duration, so this is given
	// in the config file as a plain integer count of nanoseconds.
	ScheduleLookahead time.Duration `yaml:"schedule_lookahead"`
}

// DefaultConfig returns the configuration used when no file is
// supplied.
func DefaultConfig() Config {
	return Config{
		ListenAddress:     "127.0.0.1:9000",
		Protocol:          "udp",
		Workers:           1,
		ScheduleLookahead: 100 * time.Second,
	}
}

// LoadConfig reads and validates a Config from YAML, starting from
// DefaultConfig and overlaying whatever r contains.
func LoadConfig(r io.Reader) (Config, error) {
	c := DefaultConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("decoding server config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports whether c is usable, rejecting an unknown
// transport protocol or a non-positive worker count.
func (c Config) Validate() error {
	switch c.Protocol {
	case "udp", "tcp", "unix":
	default:
		return fmt.Errorf("server config: unknown protocol %q", c.Protocol)
	}
	if c.ListenAddress == "" {
		return fmt.Errorf("server config: listen_address is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("server config: workers must be positive, got %d", c.Workers)
	}
	return nil
}
