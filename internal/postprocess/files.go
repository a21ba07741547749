package postprocess

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Files находит файлы старого проекта относительно его корня var_dir
type Files struct {
	varDir string
}

func NewFiles(varDir string) *Files {
	return &Files{varDir: varDir}
}

// Resolve возвращает абсолютный путь к файлу или "", если файла нет.
// Отсутствие каталога uploads считается ошибкой конфигурации.
func (f *Files) Resolve(relPath string) (string, error) {
	uploads := filepath.Join(f.varDir, "uploads")
	if _, err := os.Stat(uploads); err != nil {
		return "", fmt.Errorf("uploads directory not found: %s", uploads)
	}

	if relPath == "" {
		return "", nil
	}

	clean := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file path escapes var dir: %s", relPath)
	}

	path := filepath.Join(f.varDir, clean)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", nil
	}
	return path, nil
}
