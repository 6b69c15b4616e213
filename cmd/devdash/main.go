package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"devdash/internal/cli/access"
	"devdash/internal/cli/config"
	"devdash/internal/cli/db"
	"devdash/internal/cli/messages"
	"devdash/internal/cli/stats"
	"devdash/internal/cli/tui"
	"devdash/internal/cli/users"
	"devdash/internal/cli/videos"
	"devdash/pkg/logger"
)

var (
	cfgFile string
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:           "devdash",
	Short:         "Doctor dashboard for child development tracking",
	Long:          "devdash reads parent engagement analytics and chats with parents through the dashboard server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.devdash/config.yaml)")
	rootCmd.PersistentFlags().String("server", "", "server base URL, e.g. http://localhost:8080")
	_ = viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "hide log lines from db and tui commands")

	rootCmd.AddCommand(access.AccessCmd)
	rootCmd.AddCommand(stats.StatsCmd)
	rootCmd.AddCommand(stats.ActivityCmd)
	rootCmd.AddCommand(videos.VideosCmd)
	rootCmd.AddCommand(users.UsersCmd)
	rootCmd.AddCommand(messages.MessagesCmd)
	rootCmd.AddCommand(config.ConfigCmd)
	rootCmd.AddCommand(db.DBCmd)
	rootCmd.AddCommand(tui.TUICmd)
}

func initConfig() {
	if quiet {
		logger.SetOutput(io.Discard)
	}

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.grpc_port", 9090)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".devdash"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DEVDASH_CLI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
