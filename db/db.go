// Package db contains configuration shared by the durable store backends.
package db

import (
	"fmt"
	"time"
)

// Config contains options common to every store backend.
type Config struct {
	// QueryPeriod is the longest any single store operation may take.
	QueryPeriod time.Duration
}

// Validate ensures the configuration has no errors.
func (cfg Config) Validate() error {
	switch {
	case cfg.QueryPeriod <= 0:
		return fmt.Errorf("positive query period required")
	}
	return nil
}
