// File: engine/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package engine

// Config tunes the loop. Zero values are replaced by defaults.
type Config struct {
	// PollBatch is the maximum number of kernel events collected per
	// poller wait.
	PollBatch int
}

// DefaultConfig returns a workable default configuration.
func DefaultConfig() Config {
	return Config{
		PollBatch: 128,
	}
}

func (c Config) withDefaults() Config {
	if c.PollBatch <= 0 {
		c.PollBatch = 128
	}
	return c
}
