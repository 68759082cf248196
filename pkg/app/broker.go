package app

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	genericapiserver "k8s.io/apiserver/pkg/server"
	k8shealthz "k8s.io/apiserver/pkg/server/healthz"

	"github.com/sneakyfree/sizzle/pkg/app/options"
	"github.com/sneakyfree/sizzle/pkg/balance"
	"github.com/sneakyfree/sizzle/pkg/billing"
	"github.com/sneakyfree/sizzle/pkg/consts"
	"github.com/sneakyfree/sizzle/pkg/crontab"
	"github.com/sneakyfree/sizzle/pkg/healthz"
	applog "github.com/sneakyfree/sizzle/pkg/log"
	"github.com/sneakyfree/sizzle/pkg/provider/local"
	"github.com/sneakyfree/sizzle/pkg/provider/runpod"
	"github.com/sneakyfree/sizzle/pkg/provider/vast"
	"github.com/sneakyfree/sizzle/pkg/registry"
	"github.com/sneakyfree/sizzle/pkg/selector"
	"github.com/sneakyfree/sizzle/pkg/server"
	"github.com/sneakyfree/sizzle/pkg/session"
	"github.com/sneakyfree/sizzle/pkg/version"
	"github.com/sneakyfree/sizzle/pkg/viper"
)

var errNoProvidersRegistered = errors.New("no providers registered")

func newBrokerCommand(opts *options.Options) *cobra.Command {
	return &cobra.Command{
		Use:          consts.Component,
		Short:        "GPU capacity broker",
		Long:         "GPU capacity broker: provider orchestration, session lifecycle and metered billing",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			version.PrintVersionOrContinue()
			if err := opts.Validate(); err != nil {
				return err
			}

			applog.RegisterLogger(opts.Log)
			defer applog.Sync()

			cmd.Flags().VisitAll(func(flag *pflag.Flag) {
				applog.Infow("FLAG", flag.Name, flag.Value)
			})

			return run(opts)
		},
	}
}

func run(opts *options.Options) error {
	applog.Infow("run GPU capacity broker")
	ctx := genericapiserver.SetupSignalContext()

	store, err := balance.NewStore(opts.Balance)
	if err != nil {
		return err
	}

	reg := registry.New(opts.Registry)
	if opts.Local.Enable {
		reg.Register(local.New(opts.Local))
	}
	if opts.RunPod.Enable {
		reg.Register(runpod.New(opts.RunPod))
	}
	if opts.Vast.Enable {
		reg.Register(vast.New(opts.Vast))
	}

	sel := selector.New(opts.Selector, reg)
	engine := billing.New(opts.Billing, store)
	manager := session.NewManager(opts.Session, reg, sel, engine, store)

	healthz.RegisterChecker(k8shealthz.PingHealthz)
	healthz.RegisterChecker(k8shealthz.NamedCheck("providers", func(_ *http.Request) error {
		if len(reg.GetAll()) == 0 {
			return errNoProvidersRegistered
		}
		return nil
	}))

	tab := crontab.New()
	if err = manager.RegisterReconciler(tab); err != nil {
		return err
	}
	tab.Start()
	defer tab.Stop()

	srv := server.New(opts.Server, manager, sel, reg, store)
	return srv.Run(ctx)
}

// NewBrokerCommand creates the broker command.
func NewBrokerCommand() (*cobra.Command, error) {
	opts := options.NewOptions()
	cmd := newBrokerCommand(opts)

	opts.AddFlags(cmd.Flags())
	version.AddFlags(cmd.Flags())
	cmd.Flags().AddFlag(pflag.Lookup(viper.ConfigFlagName))
	if err := viper.LoadConfig(opts); err != nil {
		return nil, err
	}
	return cmd, nil
}
