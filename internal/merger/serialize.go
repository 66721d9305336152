package merger

import (
	"fmt"

	"github.com/ryabkov82/csv-tools/internal/table"
)

// WriteResult пишет заголовок и по одной строке на каждую пару в порядке entries.
// Строка — части ключа, затем значение. Ключ без частей (таблица из одной
// колонки) выводится пустой ячейкой: ", 7".
func WriteResult(w table.Writer, header []string, entries []Entry) error {
	if err := w.WriteHeader(header); err != nil {
		return fmt.Errorf("ошибка записи заголовков: %w", err)
	}
	for _, e := range entries {
		cells := make([]interface{}, 0, len(e.Key.parts)+1)
		for _, p := range e.Key.parts {
			cells = append(cells, p)
		}
		if len(e.Key.parts) == 0 {
			cells = append(cells, "")
		}
		cells = append(cells, e.Value)
		if err := w.WriteRow(cells); err != nil {
			return fmt.Errorf("ошибка записи строки %q: %w", e.Key.String(), err)
		}
	}
	return nil
}
