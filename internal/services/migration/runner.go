package migration

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"db_migrator/internal/config"
	"db_migrator/internal/connectors"
	"db_migrator/internal/datasource"
	"db_migrator/internal/transform"
)

// SourceFactory открывает источник для таблицы
type SourceFactory func(table config.TableConfig) (datasource.DataSource, error)

// Runner переносит таблицы конфига по очереди
type Runner struct {
	service *Service
	sources SourceFactory
	// target нужен только для процедур, в dry-run он nil
	target connectors.DatabaseConnector
}

func NewRunner(service *Service, sources SourceFactory, target connectors.DatabaseConnector) *Runner {
	return &Runner{service: service, sources: sources, target: target}
}

// UnresolvedTransforms шаги transform, имя которых не найдено ни среди трансформеров,
// ни среди встроенных функций. Формат "User.email: name".
func UnresolvedTransforms(tables config.Tables, registry *transform.Registry) []string {
	var out []string
	for _, t := range tables {
		fields := make([]string, 0, len(t.Transform))
		for field := range t.Transform {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for _, field := range fields {
			for _, step := range t.Transform[field] {
				if !registry.Known(step.Name) {
					out = append(out, fmt.Sprintf("%s.%s: %s", t.Entity, field, step.Name))
				}
			}
		}
	}
	return out
}

// Select оставляет таблицы из only в порядке конфига. Пустой only означает все.
func Select(tables config.Tables, only []string) (config.Tables, error) {
	if len(only) == 0 {
		return tables, nil
	}
	wanted := make(map[string]bool, len(only))
	for _, kind := range only {
		wanted[kind] = true
	}
	var out config.Tables
	for _, t := range tables {
		if wanted[t.Entity] {
			out = append(out, t)
			delete(wanted, t.Entity)
		}
	}
	if len(wanted) > 0 {
		missing := make([]string, 0, len(wanted))
		for kind := range wanted {
			missing = append(missing, kind)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("tables not configured: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// Run останавливается на первой таблице с ошибкой
func (r *Runner) Run(ctx context.Context, tables config.Tables) error {
	log := r.service.logger
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}

		src, err := r.sources(table)
		if err != nil {
			return fmt.Errorf("table %s: %w", table.Entity, err)
		}
		if err := r.service.Migrate(ctx, src, table.Entity, table); err != nil {
			return fmt.Errorf("table %s: %w", table.Entity, err)
		}

		if len(table.PostProcedures) == 0 {
			continue
		}
		if r.target == nil {
			log.Infof("Skipping %d procedures for %s", len(table.PostProcedures), table.Entity)
			continue
		}
		if err := r.service.RunPostProcedures(ctx, r.target, table.PostProcedures); err != nil {
			return fmt.Errorf("table %s: %w", table.Entity, err)
		}
	}
	return nil
}
