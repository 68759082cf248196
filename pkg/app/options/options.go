package options

import (
	"github.com/spf13/pflag"

	"github.com/sneakyfree/sizzle/pkg/balance"
	"github.com/sneakyfree/sizzle/pkg/billing"
	"github.com/sneakyfree/sizzle/pkg/log"
	"github.com/sneakyfree/sizzle/pkg/provider/local"
	"github.com/sneakyfree/sizzle/pkg/provider/runpod"
	"github.com/sneakyfree/sizzle/pkg/provider/vast"
	"github.com/sneakyfree/sizzle/pkg/registry"
	"github.com/sneakyfree/sizzle/pkg/selector"
	"github.com/sneakyfree/sizzle/pkg/server"
	"github.com/sneakyfree/sizzle/pkg/session"
)

// Options ...
type Options struct {
	Log      *log.Options      `mapstructure:"log"`
	Server   *server.Options   `mapstructure:"server"`
	Registry *registry.Options `mapstructure:"registry"`
	Selector *selector.Options `mapstructure:"selector"`
	Session  *session.Options  `mapstructure:"session"`
	Billing  *billing.Options  `mapstructure:"billing"`
	Balance  *balance.Options  `mapstructure:"balance"`
	Local    *local.Options    `mapstructure:"local"`
	RunPod   *runpod.Options   `mapstructure:"runpod"`
	Vast     *vast.Options     `mapstructure:"vast"`
}

// NewOptions ...
func NewOptions() *Options {
	return &Options{
		Log:      log.NewOptions(),
		Server:   server.NewOptions(),
		Registry: registry.NewOptions(),
		Selector: selector.NewOptions(),
		Session:  session.NewOptions(),
		Billing:  billing.NewOptions(),
		Balance:  balance.NewOptions(),
		Local:    local.NewOptions(),
		RunPod:   runpod.NewOptions(),
		Vast:     vast.NewOptions(),
	}
}

// Validate ...
func (o *Options) Validate() error {
	if err := o.Log.Validate(); err != nil {
		return err
	}
	if err := o.Server.Validate(); err != nil {
		return err
	}
	if err := o.Registry.Validate(); err != nil {
		return err
	}
	if err := o.Selector.Validate(); err != nil {
		return err
	}
	if err := o.Session.Validate(); err != nil {
		return err
	}
	if err := o.Billing.Validate(); err != nil {
		return err
	}
	if err := o.Balance.Validate(); err != nil {
		return err
	}
	if err := o.Local.Validate(); err != nil {
		return err
	}
	if err := o.RunPod.Validate(); err != nil {
		return err
	}
	if err := o.Vast.Validate(); err != nil {
		return err
	}
	return nil
}

// AddFlags ...
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Log.AddFlags(fs)
	o.Server.AddFlags(fs)
	o.Registry.AddFlags(fs)
	o.Selector.AddFlags(fs)
	o.Session.AddFlags(fs)
	o.Billing.AddFlags(fs)
	o.Balance.AddFlags(fs)
	o.Local.AddFlags(fs)
	o.RunPod.AddFlags(fs)
	o.Vast.AddFlags(fs)
}
