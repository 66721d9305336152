package table

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Writer записывает таблицу построчно во временный файл рядом с целевым.
// Close переносит результат на место целевого файла, Discard удаляет
// временный файл. Discard после успешного Close ничего не делает.
type Writer interface {
	WriteHeader(header []string) error
	WriteRow(cells []interface{}) error
	Close() error
	Discard()
}

type WriterOptions struct {
	// RowSeparator разделяет ячейки строк данных в текстовом выводе.
	// Заголовок всегда пишется через запятую.
	RowSeparator string
	// Sheet — имя листа для вывода в .xlsx.
	Sheet string
}

// Create открывает Writer для path. Формат выбирается по расширению.
func Create(path string, opts WriterOptions) (Writer, error) {
	if opts.RowSeparator == "" {
		opts.RowSeparator = Separator
	}
	if opts.Sheet == "" {
		opts.Sheet = "Sheet1"
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	if isXLSX(path) {
		w, err := newXLSXWriter(tmp, path, opts)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	return &textWriter{
		target: path,
		file:   tmp,
		buf:    bufio.NewWriter(tmp),
		sep:    opts.RowSeparator,
	}, nil
}

// commit переносит временный файл на место target. Права существующего
// файла сохраняются, новый получает 0644.
func commit(tmp *os.File, target string) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		perm = info.Mode().Perm()
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("ошибка сохранения файла: %w", err)
	}
	return nil
}

func discard(tmp *os.File) {
	_ = tmp.Close()
	_ = os.Remove(tmp.Name())
}

type textWriter struct {
	target string
	file   *os.File
	buf    *bufio.Writer
	sep    string
	done   bool
}

func (w *textWriter) WriteHeader(header []string) error {
	_, err := w.buf.WriteString(strings.Join(header, Separator) + "\n")
	return err
}

func (w *textWriter) WriteRow(cells []interface{}) error {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	_, err := w.buf.WriteString(strings.Join(parts, w.sep) + "\n")
	return err
}

func (w *textWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("ошибка финального flush: %w", err)
	}
	if err := commit(w.file, w.target); err != nil {
		return err
	}
	w.done = true
	return nil
}

func (w *textWriter) Discard() {
	if w.done {
		return
	}
	w.done = true
	discard(w.file)
}

type xlsxWriter struct {
	target       string
	file         *os.File
	outFile      *excelize.File
	streamWriter *excelize.StreamWriter
	rowCounter   int
	done         bool
}

func newXLSXWriter(tmp *os.File, target string, opts WriterOptions) (*xlsxWriter, error) {
	outFile := excelize.NewFile()
	sheetList := outFile.GetSheetList()
	if sheetList[0] != opts.Sheet {
		if err := outFile.SetSheetName(sheetList[0], opts.Sheet); err != nil {
			outFile.Close()
			discard(tmp)
			return nil, fmt.Errorf("ошибка создания листа %s: %w", opts.Sheet, err)
		}
	}

	sw, err := outFile.NewStreamWriter(opts.Sheet)
	if err != nil {
		outFile.Close()
		discard(tmp)
		return nil, fmt.Errorf("ошибка создания StreamWriter: %w", err)
	}

	return &xlsxWriter{
		target:       target,
		file:         tmp,
		outFile:      outFile,
		streamWriter: sw,
		rowCounter:   1,
	}, nil
}

func (w *xlsxWriter) setRow(values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, w.rowCounter)
	if err != nil {
		return err
	}
	if err := w.streamWriter.SetRow(cell, values); err != nil {
		return fmt.Errorf("ошибка записи строки %d: %w", w.rowCounter, err)
	}
	w.rowCounter++
	return nil
}

func (w *xlsxWriter) WriteHeader(header []string) error {
	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	return w.setRow(values)
}

func (w *xlsxWriter) WriteRow(cells []interface{}) error {
	return w.setRow(cells)
}

func (w *xlsxWriter) Close() error {
	defer w.outFile.Close()
	if err := w.streamWriter.Flush(); err != nil {
		return fmt.Errorf("ошибка финального flush: %w", err)
	}
	if err := w.outFile.Write(w.file); err != nil {
		return fmt.Errorf("ошибка записи книги: %w", err)
	}
	if err := commit(w.file, w.target); err != nil {
		return err
	}
	w.done = true
	return nil
}

func (w *xlsxWriter) Discard() {
	if w.done {
		return
	}
	w.done = true
	_ = w.outFile.Close()
	discard(w.file)
}

// Write сохраняет таблицу целиком.
func Write(path string, t *Table, opts WriterOptions) error {
	w, err := Create(path, opts)
	if err != nil {
		return err
	}
	defer w.Discard()

	if err := w.WriteHeader(t.Header); err != nil {
		return fmt.Errorf("ошибка записи заголовков: %w", err)
	}
	for _, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		if err := w.WriteRow(cells); err != nil {
			return fmt.Errorf("ошибка записи строки: %w", err)
		}
	}
	return w.Close()
}
