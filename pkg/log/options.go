package log

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Options ...
type Options struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NewOptions ...
func NewOptions() *Options {
	return &Options{
		Level:  "info",
		Format: "json",
	}
}

// Validate ...
func (o *Options) Validate() error {
	switch o.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", o.Level)
	}
	if o.Format != "json" && o.Format != "console" {
		return fmt.Errorf("invalid log format: %s", o.Format)
	}
	return nil
}

// AddFlags ...
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log-level", o.Level, "log level, one of debug/info/warn/error")
	fs.StringVar(&o.Format, "log-format", o.Format, "log format, json or console")
}
