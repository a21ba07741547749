package migration

import (
	"fmt"
	"strings"

	"db_migrator/internal/config"
	"db_migrator/internal/domain"
	"db_migrator/internal/transform"
)

// RowMapper заполняет запись из строки источника: колонки в порядке конфига,
// затем цепочка преобразований поля
type RowMapper struct {
	columns    config.ColumnMap
	transforms map[string][]config.Step
	registry   *transform.Registry
}

type MapperOption func(*RowMapper)

func WithTransforms(transforms map[string][]config.Step) MapperOption {
	return func(m *RowMapper) {
		m.transforms = transforms
	}
}

func NewRowMapper(columns config.ColumnMap, registry *transform.Registry, opts ...MapperOption) *RowMapper {
	m := &RowMapper{
		columns:  columns,
		registry: registry,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *RowMapper) Map(row domain.Record, entity domain.Entity) error {
	for _, fm := range m.columns {
		value := extractValue(row, fm)

		if steps, ok := m.transforms[fm.Field]; ok && len(steps) > 0 {
			var err error
			value, err = m.registry.Apply(value, steps)
			if err != nil {
				return err
			}
		}

		if err := entity.Set(fm.Field, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", fm.Field, err)
		}
	}
	return nil
}

// extractValue для списка колонок склеивает непустые значения через пробел
func extractValue(row domain.Record, fm config.FieldMapping) interface{} {
	if !fm.Multi {
		if len(fm.Columns) == 0 {
			return nil
		}
		return row[fm.Columns[0]]
	}

	parts := make([]string, 0, len(fm.Columns))
	for _, col := range fm.Columns {
		v := row[col]
		if transform.IsEmpty(v) {
			continue
		}
		parts = append(parts, transform.ToString(v))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
