package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/crystal-mush/bwho/pkg/server"
)

// options holds the root flags. Flags only override the loaded config when
// they were set on the command line.
type options struct {
	confPath    string
	roster      string
	admins      string
	groups      string
	adminStore  string
	mode        string
	as          string
	watch       bool
	metricsAddr string
}

// envDefault returns the environment variable value if set, otherwise the fallback.
func envDefault(envVar, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	var conf *server.Conf

	rootCmd := &cobra.Command{
		Use:   "bwho",
		Short: "Look up connected players and their admin permissions",
		Long: `bwho shows who is connected: name, Steam profile, address and effective
admin permissions, resolved from a roster snapshot and the admin files.

Configuration is layered: built-in defaults, then the --conf file, then BWHO_*
environment variables, then command-line flags.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConf(cmd, opts)
			if err != nil {
				return err
			}
			conf = c
			return nil
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.confPath, "conf", envDefault("BWHO_CONF", ""), "Path to config file, .yaml or .json (env: BWHO_CONF)")
	flags.StringVar(&opts.roster, "roster", "", "Path to roster snapshot YAML (env: BWHO_ROSTER_FILE)")
	flags.StringVar(&opts.admins, "admins", "", "Path to admins.json (env: BWHO_ADMINS_FILE)")
	flags.StringVar(&opts.groups, "groups", "", "Path to admin_groups.json (env: BWHO_GROUPS_FILE)")
	flags.StringVar(&opts.adminStore, "admin-store", "", "Path to bbolt admin store (env: BWHO_ADMIN_STORE)")
	flags.StringVar(&opts.mode, "mode", "", "Command mode: targeted or roster (env: BWHO_MODE)")
	flags.StringVar(&opts.as, "as", "", "SteamID the console acts as (env: BWHO_CONSOLE_PLAYER)")
	flags.BoolVar(&opts.watch, "watch", false, "Reload roster and admin files when they change (env: BWHO_WATCH_FILES)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (env: BWHO_METRICS_ADDR)")

	get := func() *server.Conf { return conf }
	rootCmd.AddCommand(newRunCmd(get))
	rootCmd.AddCommand(newConsoleCmd(get))
	rootCmd.AddCommand(newImportCmd(get))
	rootCmd.AddCommand(newCheckCmd(get))
	rootCmd.AddCommand(newAdminsCmd(get))

	return rootCmd
}

// loadConf builds the effective configuration for cmd.
func loadConf(cmd *cobra.Command, opts *options) (*server.Conf, error) {
	conf := server.DefaultConf()
	if opts.confPath != "" {
		c, err := server.LoadConf(opts.confPath)
		if err != nil {
			return nil, err
		}
		conf = c
		log.Printf("bwho: loaded config from %s", opts.confPath)
	}
	if err := conf.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override("roster", &conf.RosterFile, opts.roster)
	override("admins", &conf.AdminsFile, opts.admins)
	override("groups", &conf.GroupsFile, opts.groups)
	override("admin-store", &conf.AdminStore, opts.adminStore)
	override("mode", &conf.Mode, opts.mode)
	override("as", &conf.ConsolePlayer, opts.as)
	override("metrics-addr", &conf.MetricsAddr, opts.metricsAddr)
	if flags.Changed("watch") {
		conf.WatchFiles = opts.watch
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("bwho: %w", err)
	}
	return conf, nil
}
