// Package migration перенос таблиц из старого источника в целевое хранилище.
package migration

import (
	"context"
	"errors"
	"fmt"

	"db_migrator/internal/config"
	"db_migrator/internal/connectors"
	"db_migrator/internal/datasource"
	"db_migrator/internal/domain"
	"db_migrator/internal/idmap"
	"db_migrator/internal/logger"
	"db_migrator/internal/postprocess"
	"db_migrator/internal/store"
	"db_migrator/internal/transform"
)

const progressEvery = 100

type Service struct {
	store        store.Store
	transformers *transform.Registry
	processors   *postprocess.Registry
	ids          *idmap.Store
	logger       *logger.Log
	factories    map[string]domain.EntityFactory
}

type ServiceOption func(*Service)

// WithEntityFactory задает конструктор записей вида. Без него используется domain.Row.
func WithEntityFactory(kind string, factory domain.EntityFactory) ServiceOption {
	return func(s *Service) {
		s.factories[kind] = factory
	}
}

func NewService(
	st store.Store,
	transformers *transform.Registry,
	processors *postprocess.Registry,
	ids *idmap.Store,
	l *logger.Log,
	opts ...ServiceOption,
) *Service {
	if transformers == nil {
		transformers = transform.NewRegistry()
	}
	if processors == nil {
		processors = postprocess.NewRegistry(l)
	}
	if ids == nil {
		ids = idmap.New()
	}
	if l == nil {
		l = logger.Nop()
	}
	s := &Service{
		store:        st,
		transformers: transformers,
		processors:   processors,
		ids:          ids,
		logger:       l,
		factories:    make(map[string]domain.EntityFactory),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IDs общее хранилище соответствий старых и новых ID
func (s *Service) IDs() *idmap.Store {
	return s.ids
}

func (s *Service) newEntity(kind string) domain.Entity {
	if factory, ok := s.factories[kind]; ok {
		return factory()
	}
	return domain.NewRow(kind)
}

// Migrate переносит одну таблицу. Перед переносом все записи вида удаляются,
// любая ошибка строки прерывает таблицу, уже записанные строки остаются.
func (s *Service) Migrate(ctx context.Context, src datasource.DataSource, kind string, table config.TableConfig) error {
	// 1. Забираем все строки источника
	rows, err := src.FetchAll(ctx, table.Source, nil)
	if err != nil {
		return &SourceFetchError{Source: table.Source, Err: err}
	}
	if len(rows) == 0 {
		return &EmptySourceError{Source: table.Source}
	}
	log := s.logger.With("entity", kind)
	log.Infof("Migrating %s <- %s, rows: %d", kind, table.Source, len(rows))

	// 2. Очищаем целевой вид
	if err := s.store.Purge(ctx, kind); err != nil {
		return err
	}
	if err := s.store.Flush(ctx); err != nil {
		return err
	}

	mapper := NewRowMapper(table.Map, s.transformers, WithTransforms(table.Transform))

	// 3. Строка за строкой: маппинг, сохранение, ID, постобработка
	for i, row := range rows {
		entity := s.newEntity(kind)
		if err := mapper.Map(row, entity); err != nil {
			return fmt.Errorf("%s row %d: %w", kind, i+1, err)
		}

		if err := s.store.Persist(ctx, kind, entity); err != nil {
			return fmt.Errorf("%s row %d: %w", kind, i+1, err)
		}
		if err := s.store.Flush(ctx); err != nil {
			return fmt.Errorf("%s row %d: %w", kind, i+1, err)
		}

		if oldID := row["id"]; oldID != nil {
			s.ids.Add(kind, oldID, entity.ID())
		}

		if len(table.PostProcess) > 0 {
			if err := s.processors.Dispatch(ctx, row, entity, src, table.PostProcess); err != nil {
				return fmt.Errorf("%s row %d: %w", kind, i+1, err)
			}
		}

		s.store.Detach()

		if (i+1)%progressEvery == 0 {
			log.Infof("Progress %s: %d/%d records processed", kind, i+1, len(rows))
		}
	}

	if err := s.store.Flush(ctx); err != nil {
		return err
	}
	s.store.Detach()

	log.Infof("Migrated %s: %d records", kind, len(rows))
	return nil
}

// RunPostProcedures вызывает процедуры после таблицы. Ошибка процедуры не останавливает
// остальные, все ошибки возвращаются вместе.
func (s *Service) RunPostProcedures(ctx context.Context, conn connectors.DatabaseConnector, procs []config.Procedure) error {
	var errs []error
	for _, proc := range procs {
		count, err := conn.ExecuteProcedure(ctx, proc.ProcedureName, proc.Params...)
		if err != nil {
			s.logger.Errorf("failed to exec procedure %s: %v", proc.ProcedureName, err)
			errs = append(errs, fmt.Errorf("procedure %s: %w", proc.ProcedureName, err))
			continue
		}
		s.logger.Infof("Procedure %s processed: %d", proc.ProcedureName, count)
	}
	return errors.Join(errs...)
}
