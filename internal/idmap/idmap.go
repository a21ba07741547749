// Package idmap хранит соответствие старых ID новым в рамках одного запуска.
package idmap

import (
	"fmt"
	"math"
	"strconv"
)

// Store mapping[kind][oldID] = newID. Не потокобезопасен, миграция идет в одном потоке.
type Store struct {
	mapping map[string]map[string]interface{}
}

func New() *Store {
	return &Store{mapping: make(map[string]map[string]interface{})}
}

// Add записывает соответствие. Повторный oldID перезаписывает предыдущее значение.
func (s *Store) Add(kind string, oldID, newID interface{}) {
	ids, ok := s.mapping[kind]
	if !ok {
		ids = make(map[string]interface{})
		s.mapping[kind] = ids
	}
	ids[key(oldID)] = newID
}

// Get возвращает новый ID или nil, если соответствия нет
func (s *Store) Get(kind string, oldID interface{}) interface{} {
	return s.mapping[kind][key(oldID)]
}

func (s *Store) Has(kind string, oldID interface{}) bool {
	_, ok := s.mapping[kind][key(oldID)]
	return ok
}

// Len число соответствий для вида
func (s *Store) Len(kind string) int {
	return len(s.mapping[kind])
}

// key сводит 1, int64(1), float64(1) и "1" к одному ключу.
// Прочие строки хранятся как есть, отдельно от чисел.
func key(id interface{}) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		// с числом совпадает только каноничная запись: "7" да, "007" и "7.0" нет
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && strconv.FormatInt(n, 10) == v {
			return strconv.FormatInt(n, 10)
		}
		return "s:" + v
	case []byte:
		return key(string(v))
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return floatKey(float64(v))
	case float64:
		return floatKey(v)
	default:
		return fmt.Sprint(v)
	}
}

// floatKey целые float из JSON совпадают с целыми ключами
func floatKey(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
