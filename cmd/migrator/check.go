package main

import (
	"errors"
	"fmt"

	"db_migrator/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Connect to every configured database and ping it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(viper.GetString("config"), viper.GetString("log-level"))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(configPath, logLevel string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	l, err := newLogger(cfg, logLevel)
	if err != nil {
		return err
	}
	defer l.Close()

	dbs := append([]config.DatabaseConfig{}, cfg.Connections...)
	if cfg.Target.Driver != "" {
		target := cfg.Target
		if target.Name == "" {
			target.Name = "target"
		}
		dbs = append(dbs, target)
	}

	var errs []error
	for _, dbCfg := range dbs {
		l.Infof("Connecting to %s '%s' at %s:%d", dbCfg.Driver, dbCfg.Name, dbCfg.Host, dbCfg.Port)
		conn, err := openConnection(dbCfg, l)
		if err != nil {
			l.Errorf("%v", err)
			errs = append(errs, err)
			continue
		}
		conn.Disconnect()
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d connections failed: %w", len(errs), len(dbs), errors.Join(errs...))
	}
	l.Info("All connections established successfully")
	return nil
}
