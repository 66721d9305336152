package main

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/ryabkov82/csv-tools/internal/config"
	"github.com/ryabkov82/csv-tools/internal/logging"
	"github.com/ryabkov82/csv-tools/internal/merger"
	"github.com/ryabkov82/csv-tools/internal/report"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	start := time.Now()

	if err := config.LoadEnv(); err != nil {
		return emit(report.Failure(start, "Ошибка конфигурации", err), 1)
	}
	cfg, err := config.ParseMergeFlags(args, os.Stderr)
	if err != nil {
		code := 1
		if errors.Is(err, config.ErrUsage) {
			code = 2
		}
		return emit(report.Failure(start, "Ошибка конфигурации", err), code)
	}

	logger, closeLog := logging.Setup(os.Stderr, "csv-merge", cfg.Common)
	defer closeLog()

	m := merger.NewKeyMerger(logger)
	summary, err := m.MergeFiles(cfg)
	if err != nil {
		logger.Error("объединение не выполнено", "error", err)
		return emit(report.Failure(start, "Ошибка объединения", err), 1)
	}

	return emit(report.Output{
		Success:     true,
		OutputFiles: []string{summary.OutputFile},
		RowCount:    summary.RowCount,
		Duplicates:  summary.Duplicates,
		Duration:    time.Since(start).String(),
	}, 0)
}

func emit(out report.Output, code int) int {
	if err := report.Emit(os.Stdout, out); err != nil {
		log.Fatalf("Ошибка вывода JSON: %v", err)
	}
	return code
}
