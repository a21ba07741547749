package transform

import (
	"fmt"

	"db_migrator/internal/idmap"
)

// IDMapTransformer переводит старый внешний ключ в новый ID уже перенесенной таблицы.
// Параметр это вид сущности, например {map_id: User}.
type IDMapTransformer struct {
	ids *idmap.Store
}

func NewIDMapTransformer(ids *idmap.Store) *IDMapTransformer {
	return &IDMapTransformer{ids: ids}
}

func (t *IDMapTransformer) Name() string { return "map_id" }

func (t *IDMapTransformer) Transform(value, param interface{}) (interface{}, error) {
	kind, ok := param.(string)
	if !ok || kind == "" {
		return nil, fmt.Errorf("map_id requires entity kind as parameter")
	}
	if value == nil {
		return nil, nil
	}
	// ссылка на незнакомую запись становится NULL
	return t.ids.Get(kind, value), nil
}
