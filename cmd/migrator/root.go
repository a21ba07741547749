package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfigPath = "config/data_migration.yaml"

var rootCmd = &cobra.Command{
	Use:           "migrator",
	Short:         "migrator moves legacy data into a new schema table by table",
	Long:          `Reads rows from a legacy database, JSON or CSV export, maps and transforms them and writes them into the target database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(viper.GetString("env-file"))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", defaultConfigPath, "migration config file")
	rootCmd.PersistentFlags().String("env-file", ".env", "file with environment variables")
	rootCmd.PersistentFlags().String("log-level", "", "override logger.level from config")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("env-file", rootCmd.PersistentFlags().Lookup("env-file"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	// MIGRATOR_CONFIG, MIGRATOR_LOG_LEVEL и т.д.
	viper.SetEnvPrefix("MIGRATOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadEnvFile подгружает .env, если он есть. Уже заданные переменные не перезаписываются.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
