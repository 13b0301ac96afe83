/*
	Copyright 2026 Markus Papenbrock
*/

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mpapenbr/tyre-strategy/log"
	analyzeCmd "github.com/mpapenbr/tyre-strategy/pkg/cmd/analyze"
	"github.com/mpapenbr/tyre-strategy/pkg/cmd/cmdutil"
	heuristicsCmd "github.com/mpapenbr/tyre-strategy/pkg/cmd/heuristics"
	migrateCmd "github.com/mpapenbr/tyre-strategy/pkg/cmd/migrate"
	serverCmd "github.com/mpapenbr/tyre-strategy/pkg/cmd/server"
	sessionCmd "github.com/mpapenbr/tyre-strategy/pkg/cmd/session"
	"github.com/mpapenbr/tyre-strategy/pkg/config"
	"github.com/mpapenbr/tyre-strategy/version"
)

const envPrefix = "TSA"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "tsa",
	Short:   "Tyre strategy analysis for race sessions",
	Long:    ``,
	Version: version.FullVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := cmdutil.NewLogger(config.LogLevel)
		if err != nil {
			return err
		}
		log.ResetDefault(logger)
		cmd.SetContext(log.AddToContext(cmd.Context(), logger))
		return nil
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:funlen // flag definitions
func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.tsa.yml)")
	pf.StringVar(&config.DB, "db",
		"postgresql://DB_USERNAME:DB_USER_PASSWORD@DB_HOST:5432/tyrestrategy",
		"Connection string for the database")
	pf.StringVar(&config.WaitForServices, "wait-for-services", "15s",
		"Duration to wait for other services to be ready")
	pf.StringVar(&config.LogLevel, "log-level", "info",
		"controls the log level (debug, info, warn, error, fatal)")
	pf.StringVar(&config.SQLLogLevel, "sql-log-level", "info",
		"controls the log level for sql methods")
	pf.StringVar(&config.LogFormat, "log-format", "text",
		"controls the log output format (json, text)")
	pf.StringVar(&config.LogFilter, "log-filter", "",
		"zapfilter rules for named loggers (example: \"debug:strategy* info:*\")")
	pf.StringVar(&config.Source, "source", cmdutil.SourceFile,
		"where sessions are loaded from (file, db, auto)")
	pf.StringVar(&config.DataDir, "data-dir", ".",
		"directory with lap exports named <year>_<event>_<session>.csv|json")
	pf.StringVar(&config.JSONPath, "json-path", "$[*]",
		"JSONPath selecting the lap records of json exports")
	pf.StringVar(&config.JSONDurationUnit, "json-duration-unit", "ms",
		"unit of numeric durations in json exports (ms, s, us, ns)")
	pf.StringVar(&config.CacheExpiration, "cache-expiration", "10m",
		"how long loaded sessions are cached (0 disables the cache)")
	pf.BoolVar(&config.EnableTelemetry, "enable-telemetry", false,
		"enables telemetry")
	pf.StringVar(&config.TelemetryEndpoint, "telemetry-endpoint", "localhost:4317",
		"Endpoint that receives open telemetry data (stdout prints to console)")

	// add commands here
	rootCmd.AddCommand(analyzeCmd.NewAnalyzeCmd())
	rootCmd.AddCommand(sessionCmd.NewSessionCmd())
	rootCmd.AddCommand(migrateCmd.NewMigrateCmd())
	rootCmd.AddCommand(serverCmd.NewServerCmd())
	rootCmd.AddCommand(heuristicsCmd.NewHeuristicsCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home and current directory with name ".tsa" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tsa")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindCommandTree(rootCmd, viper.GetViper())
}

func bindCommandTree(cmd *cobra.Command, v *viper.Viper) {
	bindFlags(cmd, v)
	for _, c := range cmd.Commands() {
		bindCommandTree(c, v)
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --pit-loss to TSA_PIT_LOSS
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
