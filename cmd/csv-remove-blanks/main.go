package main

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/ryabkov82/csv-tools/internal/blanks"
	"github.com/ryabkov82/csv-tools/internal/config"
	"github.com/ryabkov82/csv-tools/internal/logging"
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
	cfg, err := config.ParseBlanksFlags(args, os.Stderr)
	if err != nil {
		code := 1
		if errors.Is(err, config.ErrUsage) {
			code = 2
		}
		return emit(report.Failure(start, "Ошибка конфигурации", err), code)
	}

	logger, closeLog := logging.Setup(os.Stderr, "csv-remove-blanks", cfg.Common)
	defer closeLog()

	removed, err := blanks.RemoveBlankLines(cfg.Path)
	if err != nil {
		logger.Error("файл не очищен", "file", cfg.Path, "error", err)
		return emit(report.Failure(start, "Ошибка очистки", err), 1)
	}
	logger.Info("пустые строки удалены", "file", cfg.Path, "removed", removed)

	return emit(report.Output{
		Success:     true,
		OutputFiles: []string{cfg.Path},
		Removed:     &removed,
		Duration:    time.Since(start).String(),
	}, 0)
}

func emit(out report.Output, code int) int {
	if err := report.Emit(os.Stdout, out); err != nil {
		log.Fatalf("Ошибка вывода JSON: %v", err)
	}
	return code
}
