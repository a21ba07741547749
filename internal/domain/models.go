package domain

import (
	"fmt"
	"sort"
)

// Record представляет одну строку источника: колонка -> значение
type Record map[string]interface{}

// Criteria фильтр по равенству полей, условия объединяются через AND
type Criteria map[string]interface{}

// Keys возвращает поля фильтра в отсортированном порядке, чтобы SQL был стабильным
func (c Criteria) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Match проверяет запись на соответствие фильтру.
// Значения сравниваются по строковому представлению: файловые источники
// отдают числа строками (CSV) или float64 (JSON).
func (c Criteria) Match(r Record) bool {
	for k, want := range c {
		got, ok := r[k]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// Entity целевая запись, которую заполняет движок миграции
type Entity interface {
	Set(field string, value interface{}) error
	Get(field string) (interface{}, bool)
	// Fields поля в порядке присвоения
	Fields() []string
	ID() interface{}
	SetID(id interface{})
}

// EntityFactory создает пустую запись нужного вида
type EntityFactory func() Entity

// Row динамическая запись без фиксированной структуры
type Row struct {
	Kind   string
	id     interface{}
	fields []string
	values map[string]interface{}
}

func NewRow(kind string) *Row {
	return &Row{
		Kind:   kind,
		values: make(map[string]interface{}),
	}
}

func (r *Row) Set(field string, value interface{}) error {
	if field == "" {
		return fmt.Errorf("empty field name for %s", r.Kind)
	}
	if _, exists := r.values[field]; !exists {
		r.fields = append(r.fields, field)
	}
	r.values[field] = value
	return nil
}

func (r *Row) Get(field string) (interface{}, bool) {
	v, ok := r.values[field]
	return v, ok
}

func (r *Row) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

func (r *Row) ID() interface{} { return r.id }

func (r *Row) SetID(id interface{}) { r.id = id }
