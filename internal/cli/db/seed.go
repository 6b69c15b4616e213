package db

import (
	"fmt"

	"github.com/spf13/cobra"

	"devdash/internal/catalog"
	"devdash/internal/demo"
	"devdash/internal/repository"
	"devdash/pkg/config"
	"devdash/pkg/database"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with sample parents and engagement",
	Long:  "Write sample parents, engagements, counters, concerns and chat threads for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("server-config")
		parents, _ := cmd.Flags().GetInt("parents")
		seed, _ := cmd.Flags().GetInt64("seed")

		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load server config: %w", err)
		}
		pool, err := database.NewPGXPool(cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := repository.Migrate(cmd.Context(), pool); err != nil {
			return err
		}

		cat := catalog.Default()
		if cfg.Catalog.Path != "" {
			if cat, err = catalog.Load(cfg.Catalog.Path); err != nil {
				return err
			}
		}

		repos := repository.New(pool)
		res, err := demo.Seed(cmd.Context(), demo.Stores{
			Users:         repos.Users,
			Videos:        repos.Videos,
			Chats:         repos.Chats,
			Notifications: repos.Notifications,
		}, cat, demo.Options{Parents: parents, Seed: seed})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Seeded %d parents, %d engagements over %d videos, %d chat messages\n",
			res.Users, res.Engagements, res.Videos, res.Messages)
		return nil
	},
}

func init() {
	seedCmd.Flags().Int("parents", 10, "Number of sample parents")
	seedCmd.Flags().Int64("seed", 1, "Random seed")
	DBCmd.AddCommand(seedCmd)
}
