// Package scaffold создает заготовку конфига и каталоги для плагинов.
package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	ConfigPath        = "config/data_migration.yaml"
	TransformersDir   = "migration/transformers"
	PostProcessorsDir = "migration/postprocessors"
)

const defaultConfig = `logger:
  level: info
  target: stderr

parameters:
  var.dir: ./var

connections:
  - name: old
    driver: mariadb
    host: localhost
    port: 3306
    user: root
    password: ${OLD_DB_PASSWORD}
    dbname: old

target:
  driver: postgres
  host: localhost
  port: 5432
  user: app
  password: ${DB_PASSWORD}
  dbname: app

files:
  type: local
  local_dir: ./public/uploads
  var_dir: "%var.dir%"

data_source:
  type: database
  connection: old

tables: {}
`

// Init создает файлы в root. Существующий конфиг не перезаписывается.
// Возвращает список созданного.
func Init(root string) ([]string, error) {
	var created []string

	configPath := filepath.Join(root, filepath.FromSlash(ConfigPath))
	_, err := os.Stat(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return created, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
			return created, fmt.Errorf("failed to write %s: %w", configPath, err)
		}
		created = append(created, configPath)
	case err != nil:
		return created, fmt.Errorf("failed to check %s: %w", configPath, err)
	}

	for _, dir := range []string{TransformersDir, PostProcessorsDir} {
		path := filepath.Join(root, filepath.FromSlash(dir))
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return created, fmt.Errorf("failed to create %s: %w", path, err)
		}
		created = append(created, path)
	}

	return created, nil
}
