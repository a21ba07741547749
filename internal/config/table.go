package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TableConfig настройки миграции одного вида сущности
type TableConfig struct {
	// Entity вид сущности, ключ в секции tables
	Entity     string `yaml:"-"`
	Source     string `yaml:"source"`
	SourcePath string `yaml:"source_path"`
	// Target целевая таблица, по умолчанию совпадает с Entity
	Target         string            `yaml:"target"`
	Map            ColumnMap         `yaml:"map"`
	Transform      map[string][]Step `yaml:"transform"`
	PostProcess    []Step            `yaml:"post_process"`
	PostProcedures []Procedure       `yaml:"post_procedure_list"`
}

func (t *TableConfig) TargetTable() string {
	if t.Target != "" {
		return t.Target
	}
	return t.Entity
}

func (t *TableConfig) Validate(sourceType string) error {
	if t.Source == "" {
		return newConfigError(t.Entity, "missing required field \"source\"")
	}
	if len(t.Map) == 0 {
		return newConfigError(t.Entity, "missing required field \"map\"")
	}
	if (sourceType == SourceJSON || sourceType == SourceCSV) && t.SourcePath == "" {
		return newConfigError(t.Entity, "missing \"source_path\" for %s data source", sourceType)
	}
	for _, m := range t.Map {
		if len(m.Columns) == 0 {
			return newConfigError(t.Entity, "field %q has no source column", m.Field)
		}
	}
	return nil
}

// Tables список таблиц в порядке объявления в конфиге
type Tables []TableConfig

func (ts *Tables) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: tables must be a mapping of entity to table config", node.Line)
	}
	out := make(Tables, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var table TableConfig
		if err := node.Content[i+1].Decode(&table); err != nil {
			return fmt.Errorf("table %s: %w", node.Content[i].Value, err)
		}
		table.Entity = node.Content[i].Value
		out = append(out, table)
	}
	*ts = out
	return nil
}

// FieldMapping целевое поле и одна или несколько колонок источника
type FieldMapping struct {
	Field   string
	Columns []string
	// Multi колонки заданы списком: значения склеиваются через пробел
	Multi bool
}

// ColumnMap сохраняет порядок полей из YAML
type ColumnMap []FieldMapping

func (cm *ColumnMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: map must be a mapping of field to column", node.Line)
	}
	out := make(ColumnMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		m := FieldMapping{Field: key.Value}
		switch value.Kind {
		case yaml.ScalarNode:
			if value.Tag != "!!null" {
				m.Columns = []string{value.Value}
			}
		case yaml.SequenceNode:
			if err := value.Decode(&m.Columns); err != nil {
				return fmt.Errorf("map.%s: %w", key.Value, err)
			}
			m.Multi = true
		default:
			return fmt.Errorf("line %d: map.%s must be a column or a list of columns", value.Line, key.Value)
		}
		out = append(out, m)
	}
	*cm = out
	return nil
}

// Step шаг трансформации или постобработки: имя и необязательный параметр.
// Param == nil означает, что параметр не задан.
type Step struct {
	Name  string
	Param interface{}
}

func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" || node.Value == "" {
			return fmt.Errorf("line %d: empty step name", node.Line)
		}
		s.Name = node.Value
		s.Param = nil
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: step must have exactly one name", node.Line)
		}
		s.Name = node.Content[0].Value
		var param interface{}
		if err := node.Content[1].Decode(&param); err != nil {
			return fmt.Errorf("step %s: %w", s.Name, err)
		}
		s.Param = param
		return nil
	}
	return fmt.Errorf("line %d: step must be a name or {name: param}", node.Line)
}
