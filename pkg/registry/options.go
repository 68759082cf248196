package registry

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options ...
type Options struct {
	HealthCacheTTL time.Duration `mapstructure:"healthCacheTtl"`
}

// NewOptions ...
func NewOptions() *Options {
	return &Options{
		HealthCacheTTL: 60 * time.Second,
	}
}

// Validate ...
func (o *Options) Validate() error {
	if o.HealthCacheTTL < time.Second {
		return fmt.Errorf("health cache ttl must be at least one second")
	}
	return nil
}

// AddFlags ...
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&o.HealthCacheTTL, "registry-health-cache-ttl", o.HealthCacheTTL, "ttl of cached provider health snapshots")
}
