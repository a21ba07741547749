package main

import (
	"context"

	"db_migrator/internal/config"
	"db_migrator/internal/filestorage"
	"db_migrator/internal/idmap"
	"db_migrator/internal/logger"
	"db_migrator/internal/postprocess"
	"db_migrator/internal/transform"
)

// initTransformers собственные преобразования проекта. Они перекрывают встроенные с тем же именем.
func initTransformers(ids *idmap.Store) []transform.Transformer {
	return []transform.Transformer{
		transform.NewIDMapTransformer(ids),
	}
}

var fileProcessors = map[string]bool{"attach_file": true, "attach_files": true}

// initProcessors хранилище файлов создается, только если его использует хоть одна таблица
func initProcessors(ctx context.Context, cfg *config.Config, tables config.Tables, l *logger.Log, dryRun bool) ([]postprocess.Processor, error) {
	if !usesAny(tables, fileProcessors) {
		return nil, nil
	}
	if dryRun {
		l.Info("dry run: file post-processors are disabled")
		return nil, nil
	}

	storage, err := filestorage.NewStorage(ctx, cfg.Files)
	if err != nil {
		return nil, err
	}
	l.Infof("File storage: %s", storage.Type())

	files := postprocess.NewFiles(cfg.Files.VarDir)
	return []postprocess.Processor{
		postprocess.NewAttachFile(files, storage, l),
		postprocess.NewAttachFiles(files, storage, l),
	}, nil
}

func usesAny(tables config.Tables, names map[string]bool) bool {
	for _, t := range tables {
		for _, step := range t.PostProcess {
			if names[step.Name] {
				return true
			}
		}
	}
	return false
}
