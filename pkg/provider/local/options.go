package local

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Options ...
type Options struct {
	Enable       bool    `mapstructure:"enable"`
	OllamaURL    string  `mapstructure:"ollamaUrl"`
	GpuType      string  `mapstructure:"gpuType"`
	VramGb       int     `mapstructure:"vramGb"`
	PricePerHour float64 `mapstructure:"pricePerHour"`
}

// NewOptions ...
func NewOptions() *Options {
	return &Options{
		Enable:       true,
		OllamaURL:    "http://localhost:11434",
		GpuType:      "RTX 5090",
		VramGb:       32,
		PricePerHour: 9.0,
	}
}

// Validate ...
func (o *Options) Validate() error {
	if !o.Enable {
		return nil
	}
	if o.OllamaURL == "" {
		return fmt.Errorf("local ollama url cannot be empty")
	}
	if o.PricePerHour <= 0 {
		return fmt.Errorf("local price per hour must be positive")
	}
	return nil
}

// AddFlags ...
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enable, "provider-local-enable", o.Enable, "enable the local GPU provider")
	fs.StringVar(&o.OllamaURL, "provider-local-ollama-url", o.OllamaURL, "base url of the local ollama runtime")
	fs.StringVar(&o.GpuType, "provider-local-gpu-type", o.GpuType, "GPU model of the local machine")
	fs.IntVar(&o.VramGb, "provider-local-vram-gb", o.VramGb, "VRAM of the local GPU in GB")
	fs.Float64Var(&o.PricePerHour, "provider-local-price-per-hour", o.PricePerHour, "hourly price of the local GPU")
}
