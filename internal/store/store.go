// Package store слой сохранения целевых записей: очистка вида,
// постановка записи в очередь, запись с выдачей ID и сброс отслеживания.
package store

import (
	"context"
	"fmt"

	"db_migrator/internal/connectors"
	"db_migrator/internal/domain"
)

type Store interface {
	// Purge удаляет все записи вида
	Purge(ctx context.Context, kind string) error
	// Persist ставит запись в очередь, в базу она попадет на Flush
	Persist(ctx context.Context, kind string, e domain.Entity) error
	// Flush записывает очередь и выставляет записям ID
	Flush(ctx context.Context) error
	// Detach забывает записанные записи
	Detach()
}

type pending struct {
	kind   string
	entity domain.Entity
}

// SQLStore пишет записи в целевую базу через коннектор
type SQLStore struct {
	conn    connectors.DatabaseConnector
	tables  map[string]string
	queue   []pending
	tracked []domain.Entity
}

type SQLStoreOption func(*SQLStore)

// WithTable задает таблицу для вида, по умолчанию имя таблицы совпадает с видом
func WithTable(kind, table string) SQLStoreOption {
	return func(s *SQLStore) {
		s.tables[kind] = table
	}
}

func NewSQLStore(conn connectors.DatabaseConnector, opts ...SQLStoreOption) *SQLStore {
	s := &SQLStore{
		conn:   conn,
		tables: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SQLStore) table(kind string) string {
	if t, ok := s.tables[kind]; ok && t != "" {
		return t
	}
	return kind
}

func (s *SQLStore) Purge(ctx context.Context, kind string) error {
	if _, err := s.conn.DeleteAll(ctx, s.table(kind)); err != nil {
		return fmt.Errorf("failed to purge %s: %w", kind, err)
	}
	return nil
}

func (s *SQLStore) Persist(ctx context.Context, kind string, e domain.Entity) error {
	if e == nil {
		return fmt.Errorf("cannot persist nil entity of %s", kind)
	}
	s.queue = append(s.queue, pending{kind: kind, entity: e})
	return nil
}

func (s *SQLStore) Flush(ctx context.Context) error {
	for len(s.queue) > 0 {
		p := s.queue[0]
		fields := p.entity.Fields()
		values := make([]interface{}, len(fields))
		for i, f := range fields {
			values[i], _ = p.entity.Get(f)
		}

		id, err := s.conn.Insert(ctx, s.table(p.kind), fields, values)
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", p.kind, err)
		}
		p.entity.SetID(id)

		s.queue = s.queue[1:]
		s.tracked = append(s.tracked, p.entity)
	}
	return nil
}

func (s *SQLStore) Detach() {
	s.tracked = nil
}
