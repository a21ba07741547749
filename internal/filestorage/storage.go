// Package filestorage хранилище перенесенных файлов: локальный каталог или S3.
package filestorage

import (
	"context"
	"io"
)

type Storage interface {
	// Save сохраняет содержимое под именем name и возвращает путь или URI
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	GetURL(ctx context.Context, name string) (string, error)
	// Type local или s3
	Type() string
}
