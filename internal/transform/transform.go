// Package transform цепочки преобразований значений полей.
// Шаг ищется сначала среди зарегистрированных трансформеров, затем среди встроенных функций.
package transform

import (
	"fmt"

	"db_migrator/internal/config"
)

// Transformer пользовательское преобразование. param равен nil, если в конфиге параметра нет.
type Transformer interface {
	Name() string
	Transform(value, param interface{}) (interface{}, error)
}

type UnknownTransformationError struct {
	Name string
}

func (e *UnknownTransformationError) Error() string {
	return "unknown transformation: " + e.Name
}

type Registry struct {
	transformers []Transformer
	builtins     map[string]Builtin
}

func NewRegistry(transformers ...Transformer) *Registry {
	r := &Registry{builtins: Builtins()}
	for _, t := range transformers {
		r.Register(t)
	}
	return r
}

// Register добавляет трансформер. При совпадении имен используется первый зарегистрированный.
func (r *Registry) Register(t Transformer) {
	if t == nil {
		return
	}
	r.transformers = append(r.transformers, t)
}

func (r *Registry) Lookup(name string) (Transformer, bool) {
	for _, t := range r.transformers {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Known проверяет, что имя разрешается хоть во что-то
func (r *Registry) Known(name string) bool {
	if _, ok := r.Lookup(name); ok {
		return true
	}
	_, ok := r.builtins[name]
	return ok
}

// Apply прогоняет значение через шаги слева направо
func (r *Registry) Apply(value interface{}, steps []config.Step) (interface{}, error) {
	var err error
	for _, step := range steps {
		value, err = r.applyStep(value, step)
		if err != nil {
			return nil, err
		}
	}
	return value, nil
}

func (r *Registry) applyStep(value interface{}, step config.Step) (interface{}, error) {
	if t, ok := r.Lookup(step.Name); ok {
		out, err := t.Transform(value, step.Param)
		if err != nil {
			return nil, fmt.Errorf("transformation %s failed: %w", step.Name, err)
		}
		return out, nil
	}

	b, ok := r.builtins[step.Name]
	if !ok {
		return nil, &UnknownTransformationError{Name: step.Name}
	}

	var (
		out interface{}
		err error
	)
	if step.Param != nil {
		if b.Binary == nil {
			return nil, fmt.Errorf("transformation %s does not accept a parameter", step.Name)
		}
		out, err = b.Binary(value, step.Param)
	} else {
		if b.Unary == nil {
			return nil, fmt.Errorf("transformation %s requires a parameter", step.Name)
		}
		out, err = b.Unary(value)
	}
	if err != nil {
		return nil, fmt.Errorf("transformation %s failed: %w", step.Name, err)
	}
	return out, nil
}
