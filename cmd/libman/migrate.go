package main

import (
	"github.com/spf13/cobra"

	"libman/internal/config"
	"libman/internal/log"
	"libman/internal/repository"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log.Init(cfg.LogLevel, cfg.LogJSON)

			db, err := repository.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			if err := repository.Migrate(db); err != nil {
				return err
			}
			log.GetLogger(cmd.Context()).Info("migration complete")
			return nil
		},
	}
}
