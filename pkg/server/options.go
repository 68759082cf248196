package server

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options ...
type Options struct {
	Port            uint16        `mapstructure:"port"`
	HealthzPath     string        `mapstructure:"healthzPath"`
	MetricsPath     string        `mapstructure:"metricsPath"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

// NewOptions ...
func NewOptions() *Options {
	return &Options{
		Port:            8080,
		HealthzPath:     "/healthz",
		MetricsPath:     "/metrics",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Validate ...
func (o *Options) Validate() error {
	if o.HealthzPath == "" {
		return fmt.Errorf("healthz path cannot be empty")
	}
	if o.MetricsPath == "" {
		return fmt.Errorf("metrics path cannot be empty")
	}
	if o.HealthzPath == o.MetricsPath {
		return fmt.Errorf("healthz and metrics path cannot be the same")
	}
	if o.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}

// AddFlags ...
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.Uint16Var(&o.Port, "http-port", o.Port, "http port to listen on")
	fs.StringVar(&o.HealthzPath, "http-healthz-path", o.HealthzPath, "http path to healthz")
	fs.StringVar(&o.MetricsPath, "http-metrics-path", o.MetricsPath, "http path to metrics")
	fs.DurationVar(&o.ShutdownTimeout, "http-shutdown-timeout", o.ShutdownTimeout, "grace period for in-flight requests on shutdown")
}
