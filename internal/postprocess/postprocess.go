// Package postprocess побочные действия после сохранения строки: перенос файлов,
// связанных записей и т.п. Процессор получает исходную строку, новую запись и источник.
package postprocess

import (
	"context"
	"fmt"

	"db_migrator/internal/config"
	"db_migrator/internal/datasource"
	"db_migrator/internal/domain"
	"db_migrator/internal/logger"
)

type Processor interface {
	Name() string
	Process(ctx context.Context, row domain.Record, entity domain.Entity, src datasource.DataSource, param interface{}) error
}

type Registry struct {
	processors []Processor
	log        *logger.Log
}

func NewRegistry(log *logger.Log, processors ...Processor) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	r := &Registry{log: log}
	for _, p := range processors {
		r.Register(p)
	}
	return r
}

// Register при совпадении имен используется первый зарегистрированный
func (r *Registry) Register(p Processor) {
	if p == nil {
		return
	}
	r.processors = append(r.processors, p)
}

func (r *Registry) Lookup(name string) (Processor, bool) {
	for _, p := range r.processors {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Dispatch запускает процессоры по порядку. Незарегистрированные имена пропускаются,
// ошибка процессора прерывает обработку.
func (r *Registry) Dispatch(ctx context.Context, row domain.Record, entity domain.Entity, src datasource.DataSource, steps []config.Step) error {
	for _, step := range steps {
		p, ok := r.Lookup(step.Name)
		if !ok {
			r.log.Debug("post-processor not registered, skipping", "name", step.Name)
			continue
		}
		if err := p.Process(ctx, row, entity, src, step.Param); err != nil {
			return fmt.Errorf("post-processor %s failed: %w", step.Name, err)
		}
	}
	return nil
}
