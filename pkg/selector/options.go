package selector

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/sneakyfree/sizzle/pkg/consts"
)

// Options ...
type Options struct {
	// Priority ranks provider slugs for fallback provisioning; lower is
	// more preferred. Unknown providers sort last.
	Priority map[string]int `mapstructure:"priority"`
}

// NewOptions ...
func NewOptions() *Options {
	return &Options{
		Priority: map[string]int{
			consts.ProviderLocal:  1,
			consts.ProviderRunPod: 2,
			consts.ProviderVast:   3,
		},
	}
}

// Validate ...
func (o *Options) Validate() error {
	for slug, rank := range o.Priority {
		if rank < 1 {
			return fmt.Errorf("priority of provider %s must be positive", slug)
		}
	}
	return nil
}

// AddFlags ...
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringToIntVar(&o.Priority, "selector-priority", o.Priority, "provider fallback priority, slug=rank, lower rank preferred")
}
