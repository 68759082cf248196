package vast

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options ...
type Options struct {
	Enable         bool          `mapstructure:"enable"`
	APIKey         string        `mapstructure:"apiKey"`
	Endpoint       string        `mapstructure:"endpoint"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MinReliability float64       `mapstructure:"minReliability"`
}

// NewOptions ...
func NewOptions() *Options {
	return &Options{
		Enable:         false,
		Endpoint:       "https://console.vast.ai/api/v0",
		Timeout:        30 * time.Second,
		MinReliability: 0.95,
	}
}

// Validate ...
func (o *Options) Validate() error {
	if !o.Enable {
		return nil
	}
	if o.APIKey == "" {
		return fmt.Errorf("vast api key must be set when the provider is enabled")
	}
	if o.Endpoint == "" {
		return fmt.Errorf("vast endpoint cannot be empty")
	}
	if o.MinReliability < 0 || o.MinReliability > 1 {
		return fmt.Errorf("vast min reliability must be within [0, 1]")
	}
	return nil
}

// AddFlags ...
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enable, "provider-vast-enable", o.Enable, "enable the vast.ai provider")
	fs.StringVar(&o.APIKey, "provider-vast-api-key", o.APIKey, "vast.ai api key")
	fs.StringVar(&o.Endpoint, "provider-vast-endpoint", o.Endpoint, "vast.ai api endpoint")
	fs.DurationVar(&o.Timeout, "provider-vast-timeout", o.Timeout, "vast.ai api timeout")
	fs.Float64Var(&o.MinReliability, "provider-vast-min-reliability", o.MinReliability, "minimum machine reliability for offers")
}
