package blanks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RemoveBlankLines перезаписывает файл без пустых строк ("\n" или "\r\n").
// Остальные строки сохраняются как есть, вместе с их окончаниями и
// отсутствием перевода строки в конце файла. Возвращает число удалённых строк.
func RemoveBlankLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	cleaned, removed := strip(string(data))
	if removed == 0 {
		return 0, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if err := replaceFile(path, []byte(cleaned), info.Mode().Perm()); err != nil {
		return 0, err
	}
	return removed, nil
}

func strip(content string) (string, int) {
	var b strings.Builder
	b.Grow(len(content))
	removed := 0
	for _, line := range strings.SplitAfter(content, "\n") {
		if line == "\n" || line == "\r\n" {
			removed++
			continue
		}
		b.WriteString(line)
	}
	return b.String(), removed
}

func replaceFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи файла: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("ошибка сохранения файла: %w", err)
	}
	return nil
}
