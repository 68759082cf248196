package session

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options ...
type Options struct {
	// ProvisionTimeout bounds the synchronous provisioning call inside
	// create. A provider that does not answer in time counts as failed.
	ProvisionTimeout time.Duration `mapstructure:"provisionTimeout"`
	// ProvisioningTimeout is how long a session may sit in provisioning
	// before the reconciler declares it errored.
	ProvisioningTimeout time.Duration `mapstructure:"provisioningTimeout"`
	// ReconcileInterval is the cadence of the provisioning reconciler.
	ReconcileInterval time.Duration `mapstructure:"reconcileInterval"`
}

// NewOptions ...
func NewOptions() *Options {
	return &Options{
		ProvisionTimeout:    2 * time.Minute,
		ProvisioningTimeout: 10 * time.Minute,
		ReconcileInterval:   30 * time.Second,
	}
}

// Validate ...
func (o *Options) Validate() error {
	if o.ProvisionTimeout <= 0 {
		return fmt.Errorf("provision timeout must be positive")
	}
	if o.ProvisioningTimeout <= 0 {
		return fmt.Errorf("provisioning timeout must be positive")
	}
	if o.ReconcileInterval <= 0 {
		return fmt.Errorf("reconcile interval must be positive")
	}
	return nil
}

// AddFlags ...
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&o.ProvisionTimeout, "session-provision-timeout", o.ProvisionTimeout, "bound on the synchronous provisioning call")
	fs.DurationVar(&o.ProvisioningTimeout, "session-provisioning-timeout", o.ProvisioningTimeout, "max age of a provisioning session before it errors")
	fs.DurationVar(&o.ReconcileInterval, "session-reconcile-interval", o.ReconcileInterval, "cadence of the provisioning reconciler")
}
