package postprocess

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"db_migrator/internal/datasource"
	"db_migrator/internal/domain"
	"db_migrator/internal/filestorage"
	"db_migrator/internal/logger"
	"db_migrator/internal/transform"
)

// AttachFile копирует файл из колонки строки в хранилище: {attach_file: {column: avatar, prefix: avatars}}.
// Файл ложится в <prefix>/<новый ID>/<имя файла>.
type AttachFile struct {
	files   *Files
	storage filestorage.Storage
	log     *logger.Log
}

func NewAttachFile(files *Files, storage filestorage.Storage, log *logger.Log) *AttachFile {
	if log == nil {
		log = logger.Nop()
	}
	return &AttachFile{files: files, storage: storage, log: log}
}

func (a *AttachFile) Name() string { return "attach_file" }

func (a *AttachFile) Process(ctx context.Context, row domain.Record, entity domain.Entity, src datasource.DataSource, param interface{}) error {
	params, err := paramMap(a.Name(), param)
	if err != nil {
		return err
	}
	column, err := stringParam(params, "column", true)
	if err != nil {
		return fmt.Errorf("attach_file: %w", err)
	}
	prefix, _ := stringParam(params, "prefix", false)

	return attach(ctx, a.files, a.storage, a.log, transform.ToString(row[column]), prefix, entity)
}

// AttachFiles переносит набор файлов из связанной таблицы:
// {attach_files: {resource: user_files, column: path, foreign_key: user_id, prefix: gallery}}.
// Нужен источник с FetchColumn.
type AttachFiles struct {
	files   *Files
	storage filestorage.Storage
	log     *logger.Log
}

func NewAttachFiles(files *Files, storage filestorage.Storage, log *logger.Log) *AttachFiles {
	if log == nil {
		log = logger.Nop()
	}
	return &AttachFiles{files: files, storage: storage, log: log}
}

func (a *AttachFiles) Name() string { return "attach_files" }

func (a *AttachFiles) Process(ctx context.Context, row domain.Record, entity domain.Entity, src datasource.DataSource, param interface{}) error {
	params, err := paramMap(a.Name(), param)
	if err != nil {
		return err
	}
	resource, err := stringParam(params, "resource", true)
	if err != nil {
		return fmt.Errorf("attach_files: %w", err)
	}
	column, err := stringParam(params, "column", true)
	if err != nil {
		return fmt.Errorf("attach_files: %w", err)
	}
	foreignKey, err := stringParam(params, "foreign_key", true)
	if err != nil {
		return fmt.Errorf("attach_files: %w", err)
	}
	prefix, _ := stringParam(params, "prefix", false)

	advanced, ok := src.(datasource.AdvancedDataSource)
	if !ok {
		return fmt.Errorf("attach_files requires a data source with column queries, got %T", src)
	}

	oldID := row["id"]
	if oldID == nil {
		return nil
	}

	paths, err := advanced.FetchColumn(ctx, resource, column, domain.Criteria{foreignKey: oldID})
	if err != nil {
		return fmt.Errorf("attach_files: failed to fetch %s.%s: %w", resource, column, err)
	}
	for _, p := range paths {
		if err := attach(ctx, a.files, a.storage, a.log, transform.ToString(p), prefix, entity); err != nil {
			return err
		}
	}
	return nil
}

func attach(ctx context.Context, files *Files, storage filestorage.Storage, log *logger.Log, relPath, prefix string, entity domain.Entity) error {
	source, err := files.Resolve(relPath)
	if err != nil {
		return err
	}
	if source == "" {
		if relPath != "" {
			log.Debug("file not found, skipping", "path", relPath)
		}
		return nil
	}

	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer f.Close()

	name := path.Join(prefix, transform.ToString(entity.ID()), filepath.Base(source))
	saved, err := storage.Save(ctx, name, f)
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", relPath, err)
	}
	log.Debug("file attached", "from", relPath, "to", saved)
	return nil
}

func paramMap(name string, param interface{}) (map[string]interface{}, error) {
	params, ok := param.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s expects a mapping parameter, got %T", name, param)
	}
	return params, nil
}

func stringParam(params map[string]interface{}, key string, required bool) (string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing parameter %s", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string", key)
	}
	if required && s == "" {
		return "", fmt.Errorf("missing parameter %s", key)
	}
	return s, nil
}
