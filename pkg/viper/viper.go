package viper

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConfigFlagName is the name of the config file flag.
const ConfigFlagName = "config"

func init() {
	pflag.String(ConfigFlagName, "", "path to config file")
}

// LoadConfig reads the config file, if specified, into opts.
func LoadConfig(opts interface{}) error {
	configFile, err := pflag.CommandLine.GetString(ConfigFlagName)
	if err != nil {
		return err
	}
	if configFile == "" {
		return nil
	}
	viper.SetConfigFile(configFile)
	if err = viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}
	if err = viper.Unmarshal(opts); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}
