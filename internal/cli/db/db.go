package db

import (
	"fmt"

	"github.com/spf13/cobra"

	"devdash/internal/repository"
	"devdash/pkg/config"
	"devdash/pkg/database"
)

var DBCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance",
	Long:  "Apply the schema and check the connection using the server configuration",
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the dashboard schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := open(cmd)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := conn.Migrate(cmd.Context(), repository.Schema); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Schema applied")
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the database connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := open(cmd)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := conn.HealthCheck(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Database reachable")
		return nil
	},
}

func open(cmd *cobra.Command) (*database.DB, error) {
	path, _ := cmd.Flags().GetString("server-config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}
	conn, err := database.NewDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func init() {
	DBCmd.PersistentFlags().String("server-config", "configs/development.yaml", "Server configuration file")
	DBCmd.AddCommand(migrateCmd)
	DBCmd.AddCommand(checkCmd)
}
