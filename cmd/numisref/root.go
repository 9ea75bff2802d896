package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coolbeans/numisref/pkg/catalog"
	"github.com/coolbeans/numisref/pkg/config"
	"github.com/coolbeans/numisref/pkg/logging"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	format     string
	logLevel   string

	cfg      *config.Config
	registry *catalog.Registry
}

func newRootCmd() *cobra.Command {
	state := &app{}
	cmd := &cobra.Command{
		Use:   "numisref",
		Short: "Ancient coin catalog reference toolkit",
		Long: `numisref normalizes ancient-coin catalog citations (RIC, Crawford, RPC,
RSC, BMCRE, BMCRR, Sear, Sydenham, Cohen, Calicó, DOC, SNG), looks them up
in the Nomisma linked-data catalogs and compares coin record fields.

Example:
  numisref parse "RIC I(2) 207" "Cr. 335/1c"
  numisref lookup "RIC I 207" --authority Augustus
  numisref compare grade "Choice VF" "VF+"`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.load()
		},
	}

	cmd.PersistentFlags().StringVar(&state.configPath, "config", "", "config file (default: .numisref.yaml in the working or home directory)")
	cmd.PersistentFlags().StringVarP(&state.format, "format", "f", "text", "output format: text, json or yaml")
	cmd.PersistentFlags().StringVar(&state.logLevel, "log-level", "", "log level, overriding log.level")

	cmd.AddCommand(parseCmd(state))
	cmd.AddCommand(lookupCmd(state))
	cmd.AddCommand(getCmd(state))
	cmd.AddCommand(compareCmd(state))
	cmd.AddCommand(systemsCmd(state))

	return cmd
}

func (state *app) load() error {
	switch state.format {
	case formatText, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", state.format)
	}

	cfg, err := config.Load(state.configPath)
	if err != nil {
		return err
	}
	state.cfg = cfg

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.Output = cfg.Log.Output
	if state.logLevel != "" {
		logCfg.Level = state.logLevel
	}
	logging.Configure(logCfg)

	logging.Default().Debug().
		Str("config_file", cfg.ConfigFile).
		Str("format", state.format).
		Msg("configuration loaded")
	return nil
}

// catalog builds the lookup registry on first use.
func (state *app) catalog() (*catalog.Registry, error) {
	if state.registry != nil {
		return state.registry, nil
	}
	registry, err := catalog.NewFromConfig(state.cfg, nil, catalog.WithLogger(logging.Default()))
	if err != nil {
		return nil, err
	}
	state.registry = registry
	return registry, nil
}
