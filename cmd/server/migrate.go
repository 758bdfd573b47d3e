package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/barter-backend/internal/db"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	RunE:  runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE:  runMigrateStatus,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := db.NewPostgres(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer safeClose(conn)

	return db.RunMigrations(cmd.Context(), conn, cfg.MigrationsPath)
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := db.NewPostgres(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer safeClose(conn)

	statuses, err := db.Status(cmd.Context(), conn, cfg.MigrationsPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, m := range statuses {
		if m.Applied() {
			fmt.Fprintf(out, "applied  %s  %s\n", m.AppliedAt.Format(time.RFC3339), m.Name)
			continue
		}
		fmt.Fprintf(out, "pending  %-20s  %s\n", "", m.Name)
	}
	return nil
}
