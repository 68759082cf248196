package runpod

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options ...
type Options struct {
	Enable   bool          `mapstructure:"enable"`
	APIKey   string        `mapstructure:"apiKey"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// NewOptions ...
func NewOptions() *Options {
	return &Options{
		Enable:   false,
		Endpoint: "https://api.runpod.io/graphql",
		Timeout:  30 * time.Second,
	}
}

// Validate ...
func (o *Options) Validate() error {
	if !o.Enable {
		return nil
	}
	if o.APIKey == "" {
		return fmt.Errorf("runpod api key must be set when the provider is enabled")
	}
	if o.Endpoint == "" {
		return fmt.Errorf("runpod endpoint cannot be empty")
	}
	return nil
}

// AddFlags ...
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enable, "provider-runpod-enable", o.Enable, "enable the runpod provider")
	fs.StringVar(&o.APIKey, "provider-runpod-api-key", o.APIKey, "runpod api key")
	fs.StringVar(&o.Endpoint, "provider-runpod-endpoint", o.Endpoint, "runpod graphql endpoint")
	fs.DurationVar(&o.Timeout, "provider-runpod-timeout", o.Timeout, "runpod api timeout")
}
