package grab

import (
	"fmt"
	"log/slog"

	"github.com/ryabkov82/csv-tools/internal/config"
	"github.com/ryabkov82/csv-tools/internal/table"
)

// Result — итог одного запуска.
type Result struct {
	OutputFile string
	RowCount   int64
	Matched    bool
	MatchRow   int // номер строки данных с совпадением, с 1; 0 если совпадения нет
}

// Apply сравнивает ключевые колонки двух таблиц попарно по номеру строки.
// При первом совпадении выбранные колонки второй таблицы целиком копируются
// в первую, после чего сравнение прекращается. Колонка с уже существующим
// в первой таблице именем заменяет её на месте. Возвращает новую таблицу
// и индекс строки совпадения (-1, если совпадения не было); входные таблицы
// не меняются.
func Apply(primary, secondary *table.Table, spec *Spec) (*table.Table, int, error) {
	if err := spec.Validate(primary.Width(), secondary.Width()); err != nil {
		return nil, -1, err
	}

	out := &table.Table{
		Path:   primary.Path,
		Header: append([]string(nil), primary.Header...),
		Rows:   make([][]string, len(primary.Rows)),
	}
	for i, row := range primary.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}

	match := -1
	n := min(len(primary.Rows), len(secondary.Rows))
	for i := 0; i < n; i++ {
		p := table.Canonical(primary.Rows[i][spec.PrimaryKeyColumnIndex])
		s := table.Canonical(secondary.Rows[i][spec.SecondaryKeyColumnIndex])
		if p == s {
			match = i
			break
		}
	}
	if match < 0 {
		return out, -1, nil
	}

	for _, c := range spec.ColumnsToCopy {
		name := secondary.Header[c]
		src := secondary.Column(c)
		col := make([]string, len(out.Rows))
		// строки выравниваются по номеру, недостающие ячейки пустые
		copy(col, src)

		if idx := out.ColumnIndex(name); idx >= 0 {
			for i, v := range col {
				out.Rows[i][idx] = v
			}
			continue
		}
		out.Header = append(out.Header, name)
		for i, v := range col {
			out.Rows[i] = append(out.Rows[i], v)
		}
	}
	return out, match, nil
}

// GrabFiles читает оба файла, применяет Apply и сохраняет результат.
// Конфигурация проверяется до чтения файлов, индексы — до записи.
func GrabFiles(cfg *config.GrabConfig, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.Default()
	}

	spec, err := ParseSpec(cfg.Spec)
	if err != nil {
		return nil, err
	}

	primary, err := table.Read(cfg.PrimaryPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", cfg.PrimaryPath, err)
	}
	secondary, err := table.Read(cfg.SecondaryPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", cfg.SecondaryPath, err)
	}

	out, match, err := Apply(primary, secondary, spec)
	if err != nil {
		return nil, err
	}
	if match < 0 {
		log.Warn("совпадений по ключу не найдено, колонки не скопированы",
			"primary_key", spec.PrimaryKeyColumnIndex,
			"secondary_key", spec.SecondaryKeyColumnIndex)
	} else {
		log.Info("колонки скопированы",
			"row", match+1,
			"columns", spec.ColumnsToCopy)
	}

	if err := table.Write(cfg.OutputPath, out, table.WriterOptions{Sheet: "grab"}); err != nil {
		return nil, err
	}

	return &Result{
		OutputFile: cfg.OutputPath,
		RowCount:   int64(len(out.Rows)),
		Matched:    match >= 0,
		MatchRow:   match + 1,
	}, nil
}
