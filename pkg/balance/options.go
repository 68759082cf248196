package balance

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Options ...
type Options struct {
	// DSN is the postgres connection string. Empty keeps balances in memory,
	// which is only suitable for development.
	DSN string `mapstructure:"dsn"`
	// SignupFreeMinutes and SignupCredits seed a balance the first time a
	// user is seen.
	SignupFreeMinutes int     `mapstructure:"signupFreeMinutes"`
	SignupCredits     float64 `mapstructure:"signupCredits"`
}

// NewOptions ...
func NewOptions() *Options {
	return &Options{
		SignupFreeMinutes: 10,
		SignupCredits:     0,
	}
}

// Validate ...
func (o *Options) Validate() error {
	if o.SignupFreeMinutes < 0 {
		return fmt.Errorf("signup free minutes must be non-negative")
	}
	if o.SignupCredits < 0 {
		return fmt.Errorf("signup credits must be non-negative")
	}
	return nil
}

// AddFlags ...
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.DSN, "balance-dsn", o.DSN, "postgres dsn for the balance store, empty for in-memory")
	fs.IntVar(&o.SignupFreeMinutes, "balance-signup-free-minutes", o.SignupFreeMinutes, "free minutes granted to a first-seen user")
	fs.Float64Var(&o.SignupCredits, "balance-signup-credits", o.SignupCredits, "credits granted to a first-seen user")
}

// NewStore builds the store the options describe.
func NewStore(opts *Options) (Store, error) {
	if opts.DSN == "" {
		return NewMemoryStore(opts), nil
	}
	return NewGormStore(opts)
}
