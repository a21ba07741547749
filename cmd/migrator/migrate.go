package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"db_migrator/internal/config"
	"db_migrator/internal/connectors"
	"db_migrator/internal/datasource"
	"db_migrator/internal/idmap"
	"db_migrator/internal/logger"
	"db_migrator/internal/postprocess"
	"db_migrator/internal/services/migration"
	"db_migrator/internal/store"
	"db_migrator/internal/transform"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type migrateOptions struct {
	configPath string
	logLevel   string
	tables     []string
	dryRun     bool
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate configured tables into the target database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		tables, _ := cmd.Flags().GetStringSlice("table")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		return runMigrate(ctx, migrateOptions{
			configPath: viper.GetString("config"),
			logLevel:   viper.GetString("log-level"),
			tables:     tables,
			dryRun:     dryRun,
		})
	},
}

func init() {
	migrateCmd.Flags().StringSlice("table", nil, "migrate only these entity kinds (repeatable)")
	migrateCmd.Flags().Bool("dry-run", false, "read and transform everything, write into memory only")
	rootCmd.AddCommand(migrateCmd)
}

func newLogger(cfg *config.Config, levelOverride string) (*logger.Log, error) {
	level := cfg.Logger.Level
	if levelOverride != "" {
		level = levelOverride
	}
	return logger.NewLogger(cfg.Logger.Target, level, cfg.Logger.Filename)
}

func runMigrate(ctx context.Context, opts migrateOptions) error {
	// 1. Конфиг целиком проверяется до первого чтения
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if !opts.dryRun {
		if err := cfg.ValidateTarget(); err != nil {
			return err
		}
	}
	tables, err := migration.Select(cfg.Tables, opts.tables)
	if err != nil {
		return err
	}

	l, err := newLogger(cfg, opts.logLevel)
	if err != nil {
		return err
	}
	defer l.Close()
	l.Info("init logger")

	// 2. Подключения к старым базам
	connections, err := openConnections(cfg, l)
	if err != nil {
		return err
	}
	defer closeConnections(connections, l)

	// 3. Целевое хранилище
	var (
		st     store.Store
		target connectors.DatabaseConnector
	)
	if opts.dryRun {
		l.Info("dry run: target database is not touched")
		st = store.NewMemoryStore()
	} else {
		if cfg.Target.Name == "" {
			cfg.Target.Name = "target"
		}
		target, err = openConnection(cfg.Target, l)
		if err != nil {
			return err
		}
		defer target.Disconnect()

		storeOpts := make([]store.SQLStoreOption, 0, len(tables))
		for _, t := range tables {
			storeOpts = append(storeOpts, store.WithTable(t.Entity, t.TargetTable()))
		}
		st = store.NewSQLStore(target, storeOpts...)
	}

	// 4. Плагины и сервис
	ids := idmap.New()
	processors, err := initProcessors(ctx, cfg, tables, l, opts.dryRun)
	if err != nil {
		return err
	}
	transformers := transform.NewRegistry(initTransformers(ids)...)
	for _, step := range migration.UnresolvedTransforms(tables, transformers) {
		l.Warnf("unknown transformation %s, table will fail on its first row", step)
	}
	svc := migration.NewService(
		st,
		transformers,
		postprocess.NewRegistry(l, processors...),
		ids,
		l,
	)

	sources := func(table config.TableConfig) (datasource.DataSource, error) {
		return datasource.New(cfg.DataSource, table, connections)
	}

	// 5. Таблицы по очереди
	started := time.Now()
	l.Infof("Starting migration of %d tables", len(tables))
	if err := migration.NewRunner(svc, sources, target).Run(ctx, tables); err != nil {
		l.Errorf("Migration failed: %v", err)
		return err
	}
	l.Infof("Migration finished in %s", time.Since(started).Round(time.Millisecond))

	if mem, ok := st.(*store.MemoryStore); ok {
		for _, t := range tables {
			l.Infof("dry run: %s would get %d records", t.Entity, mem.Count(t.Entity))
		}
	}
	return nil
}
