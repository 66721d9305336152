package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoHeader возвращается, если в источнике нет ни одной непустой строки.
var ErrNoHeader = errors.New("в файле нет строки заголовков")

// Table — заголовок и строки, выровненные по позициям колонок.
// Каждая строка содержит ровно len(Header) ячеек.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
}

// Width возвращает количество колонок.
func (t *Table) Width() int {
	return len(t.Header)
}

// Column возвращает значения колонки idx по всем строкам.
func (t *Table) Column(idx int) []string {
	col := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		col[i] = row[idx]
	}
	return col
}

// ColumnIndex ищет колонку по имени, -1 если её нет.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

func (t *Table) validate() error {
	seen := make(map[string]struct{}, len(t.Header))
	for _, h := range t.Header {
		if _, ok := seen[h]; ok {
			return &DuplicateColumnError{Path: t.Path, Name: h}
		}
		seen[h] = struct{}{}
	}
	return nil
}

// HeaderMismatchError — заголовки двух таблиц различаются по составу или порядку.
type HeaderMismatchError struct {
	Primary   []string
	Secondary []string
}

func (e *HeaderMismatchError) Error() string {
	return fmt.Sprintf("заголовки не совпадают: [%s] != [%s]",
		strings.Join(e.Primary, ","), strings.Join(e.Secondary, ","))
}

// RowWidthError — количество ячеек в строке не равно количеству колонок.
type RowWidthError struct {
	Path  string
	Line  int
	Got   int
	Width int
}

func (e *RowWidthError) Error() string {
	return fmt.Sprintf("%s:%d: ожидалось %d ячеек, получено %d", e.Path, e.Line, e.Width, e.Got)
}

// DuplicateColumnError — имя колонки встречается в заголовке дважды.
type DuplicateColumnError struct {
	Path string
	Name string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("%s: колонка %q повторяется в заголовке", e.Path, e.Name)
}

// SameHeader сравнивает заголовки как упорядоченные последовательности.
func SameHeader(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
