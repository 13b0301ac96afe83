package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/tyre-strategy/log"
	"github.com/mpapenbr/tyre-strategy/pkg/cmd/cmdutil"
	"github.com/mpapenbr/tyre-strategy/pkg/config"
	dbmigrate "github.com/mpapenbr/tyre-strategy/pkg/db/migrate"
)

func NewMigrateCmd() *cobra.Command {
	var status, drop bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.WaitForDB(cmd.Context()); err != nil {
				log.Error("database not ready", log.ErrorField(err))
				return err
			}
			switch {
			case status:
				return printStatus(cmd)
			case drop:
				log.Info("Dropping all migrations")
				return dbmigrate.DropAll(config.DB)
			default:
				return startMigration()
			}
		},
	}

	cmd.Flags().StringVarP(&config.MigrationSourceURL,
		"migration-source-url",
		"m",
		"",
		"url to migration files (default: migrations built into the binary)")
	cmd.Flags().BoolVar(&status, "status", false, "print the current schema version")
	cmd.Flags().BoolVar(&drop, "drop", false, "roll back all migrations")
	cmd.MarkFlagsMutuallyExclusive("status", "drop")
	return cmd
}

func startMigration() error {
	if config.MigrationSourceURL != "" {
		log.Info("Using migrations files at", log.String("source", config.MigrationSourceURL))
		return dbmigrate.MigrateFrom(config.MigrationSourceURL, config.DB)
	}
	log.Info("Using embedded migrations")
	if err := dbmigrate.MigrateDb(config.DB); err != nil {
		return err
	}
	v, _, err := dbmigrate.Version(config.DB)
	if err != nil {
		return err
	}
	log.Info("Database is up to date", log.Uint64("version", uint64(v)))
	return nil
}

func printStatus(cmd *cobra.Command) error {
	v, dirty, err := dbmigrate.Version(config.DB)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %t\n", v, dirty)
	return nil
}
