package table

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Separator — разделитель полей. Кавычки и экранирование не поддерживаются:
// запятая внутри значения всегда начинает новое поле.
const Separator = ","

const maxLineSize = 16 * 1024 * 1024

// Read загружает таблицу из файла. Файлы .xlsx читаются с первого листа,
// остальные разбираются как текст с разделителем-запятой.
func Read(path string) (*Table, error) {
	var (
		t   *Table
		err error
	)
	if isXLSX(path) {
		t, err = readXLSX(path)
	} else {
		t, err = readText(path)
	}
	if err != nil {
		return nil, err
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// ReadPair загружает обе таблицы и проверяет, что их заголовки совпадают
// по составу и порядку колонок.
func ReadPair(primaryPath, secondaryPath string) (*Table, *Table, error) {
	primary, err := Read(primaryPath)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка чтения %s: %w", primaryPath, err)
	}
	secondary, err := Read(secondaryPath)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка чтения %s: %w", secondaryPath, err)
	}
	if !SameHeader(primary.Header, secondary.Header) {
		return nil, nil, &HeaderMismatchError{Primary: primary.Header, Secondary: secondary.Header}
	}
	return primary, secondary, nil
}

func isXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

func readText(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t := &Table{Path: path}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")
		// пустые строки пропускаются
		if line == "" {
			continue
		}
		fields := strings.Split(line, Separator)
		if t.Header == nil {
			t.Header = fields
			continue
		}
		if len(fields) != len(t.Header) {
			return nil, &RowWidthError{Path: path, Line: lineNo, Got: len(fields), Width: len(t.Header)}
		}
		t.Rows = append(t.Rows, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	if t.Header == nil {
		return nil, ErrNoHeader
	}
	return t, nil
}

func readXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, ErrNoHeader
	}

	rows, err := f.Rows(sheetList[0])
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	defer rows.Close()

	t := &Table{Path: path}
	rowNo := 0
	for rows.Next() {
		rowNo++
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения строки %d: %w", rowNo, err)
		}
		if len(cols) == 0 {
			continue
		}
		if t.Header == nil {
			t.Header = cols
			continue
		}
		// excelize отбрасывает пустые ячейки в конце строки
		if len(cols) > len(t.Header) {
			return nil, &RowWidthError{Path: path, Line: rowNo, Got: len(cols), Width: len(t.Header)}
		}
		for len(cols) < len(t.Header) {
			cols = append(cols, "")
		}
		t.Rows = append(t.Rows, cols)
	}
	if t.Header == nil {
		return nil, ErrNoHeader
	}
	return t, nil
}
