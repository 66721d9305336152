package merger

import (
	"fmt"
	"log/slog"

	"github.com/ryabkov82/csv-tools/internal/config"
	"github.com/ryabkov82/csv-tools/internal/table"
)

type FileMerger interface {
	MergeFiles(cfg *config.MergeConfig) (*Summary, error)
}

// Summary — итог одного объединения.
type Summary struct {
	OutputFile string
	RowCount   int64 // строк данных без заголовка
	Duplicates int   // повторов ключей внутри входных файлов
}

// KeyMerger объединяет два файла по составному ключу, складывая значения
// последней колонки у совпавших ключей.
type KeyMerger struct {
	Log *slog.Logger
}

func NewKeyMerger(log *slog.Logger) FileMerger {
	if log == nil {
		log = slog.Default()
	}
	return &KeyMerger{Log: log}
}

func (km *KeyMerger) MergeFiles(cfg *config.MergeConfig) (*Summary, error) {
	policy := LastWriteWins
	if cfg.SumDuplicates {
		policy = Sum
	}

	// Все проверки выполняются до открытия выходного файла
	primary, secondary, err := table.ReadPair(cfg.PrimaryPath, cfg.SecondaryPath)
	if err != nil {
		return nil, err
	}
	km.Log.Debug("файлы загружены",
		"primary_rows", len(primary.Rows),
		"secondary_rows", len(secondary.Rows),
		"columns", primary.Width())

	primaryMap, err := km.buildKeyMap(primary, policy)
	if err != nil {
		return nil, err
	}
	secondaryMap, err := km.buildKeyMap(secondary, policy)
	if err != nil {
		return nil, err
	}

	merged, err := Merge(primaryMap, secondaryMap)
	if err != nil {
		return nil, err
	}

	w, err := table.Create(cfg.OutputPath, table.WriterOptions{RowSeparator: KeySeparator, Sheet: "merged"})
	if err != nil {
		return nil, err
	}
	defer w.Discard()

	entries := merged.Entries()
	if err := WriteResult(w, primary.Header, entries); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	km.Log.Info("файлы объединены",
		"output", cfg.OutputPath,
		"keys", len(entries),
		"collisions", primaryMap.Len()+secondaryMap.Len()-len(entries))

	return &Summary{
		OutputFile: cfg.OutputPath,
		RowCount:   int64(len(entries)),
		Duplicates: len(primaryMap.Duplicates) + len(secondaryMap.Duplicates),
	}, nil
}

func (km *KeyMerger) buildKeyMap(t *table.Table, policy DuplicatePolicy) (*KeyMap, error) {
	m, err := BuildKeyMap(t, policy)
	if err != nil {
		return nil, fmt.Errorf("ошибка построения ключей %s: %w", t.Path, err)
	}
	for _, d := range m.Duplicates {
		km.Log.Warn("ключ повторяется в файле",
			"file", t.Path,
			"row", d.Row,
			"key", d.Key.String(),
			"previous", d.Previous,
			"value", d.Value,
			"policy", policy.String())
	}
	return m, nil
}
