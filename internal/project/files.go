package project

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ListModuleFiles возвращает отсортированный список всех *.mir файлов
// в директории (рекурсивно). Сортировка даёт детерминированный порядок
// сборки.
func ListModuleFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".mir") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
