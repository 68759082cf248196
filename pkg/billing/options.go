package billing

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options ...
type Options struct {
	// TickInterval is the metering cadence for active sessions. One tick
	// bills exactly one minute, so production keeps this at a minute; tests
	// shrink it.
	TickInterval time.Duration `mapstructure:"tickInterval"`
}

// NewOptions ...
func NewOptions() *Options {
	return &Options{
		TickInterval: time.Minute,
	}
}

// Validate ...
func (o *Options) Validate() error {
	if o.TickInterval <= 0 {
		return fmt.Errorf("billing tick interval must be positive")
	}
	return nil
}

// AddFlags ...
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&o.TickInterval, "billing-tick-interval", o.TickInterval, "metering cadence for active sessions")
}
