package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	EnvLogLevel = "CSVTOOLS_LOG_LEVEL"
	EnvSeqURL   = "CSVTOOLS_SEQ_URL"
)

// ErrUsage — не хватает аргументов командной строки.
var ErrUsage = errors.New("неверные аргументы")

// Common — настройки, общие для всех утилит.
type Common struct {
	LogLevel slog.Level
	SeqURL   string // пусто — логи в Seq не отправляются
}

type MergeConfig struct {
	Common
	PrimaryPath   string
	SecondaryPath string
	OutputPath    string
	SumDuplicates bool // складывать повторы ключа внутри одной таблицы
}

type GrabConfig struct {
	Common
	PrimaryPath   string
	SecondaryPath string
	OutputPath    string
	Spec          string // JSON с индексами колонок
}

type BlanksConfig struct {
	Common
	Path string
}

// LoadEnv подгружает переменные окружения из файла .env, если он есть.
// Уже заданные переменные не перезаписываются.
func LoadEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("ошибка чтения %s: %w", name, err)
		}
	}
	return nil
}

func newFlagSet(name, args string, output io.Writer, c *Common) (*flag.FlagSet, *string) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(output)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "использование: %s [флаги] %s\n", name, args)
		flags.PrintDefaults()
	}

	level := flags.String("log-level", envOr(EnvLogLevel, "info"), "уровень логирования: debug, info, warn, error")
	flags.StringVar(&c.SeqURL, "seq", os.Getenv(EnvSeqURL), "адрес сервера Seq для отправки логов")
	return flags, level
}

func finish(flags *flag.FlagSet, args []string, level *string, c *Common, want int) ([]string, error) {
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if err := c.LogLevel.UnmarshalText([]byte(*level)); err != nil {
		return nil, fmt.Errorf("%w: уровень логирования %q", ErrUsage, *level)
	}
	if flags.NArg() < want {
		flags.Usage()
		return nil, fmt.Errorf("%w: ожидалось аргументов: %d, получено: %d", ErrUsage, want, flags.NArg())
	}
	paths := flags.Args()[:want]
	for i := range paths {
		// Нормализация путей
		paths[i] = filepath.Clean(paths[i])
	}
	return paths, nil
}

// ParseMergeFlags разбирает аргументы csv-merge: <primary> <secondary> <output>.
func ParseMergeFlags(args []string, output io.Writer) (*MergeConfig, error) {
	cfg := &MergeConfig{}
	flags, level := newFlagSet("csv-merge", "<primary> <secondary> <output>", output, &cfg.Common)
	flags.BoolVar(&cfg.SumDuplicates, "sum-duplicates", false, "складывать значения повторяющихся ключей внутри одного файла")

	paths, err := finish(flags, args, level, &cfg.Common, 3)
	if err != nil {
		return nil, err
	}
	cfg.PrimaryPath, cfg.SecondaryPath, cfg.OutputPath = paths[0], paths[1], paths[2]
	return cfg, nil
}

// ParseGrabFlags разбирает аргументы csv-grab: -spec '<json>' <primary> <secondary> <output>.
func ParseGrabFlags(args []string, output io.Writer) (*GrabConfig, error) {
	cfg := &GrabConfig{}
	flags, level := newFlagSet("csv-grab", "-spec '<json>' <primary> <secondary> <output>", output, &cfg.Common)
	flags.StringVar(&cfg.Spec, "spec", "",
		`индексы колонок: {"primaryKeyColumnIndex":0,"secondaryKeyColumnIndex":1,"columnsToCopy":[2]}`)

	paths, err := finish(flags, args, level, &cfg.Common, 3)
	if err != nil {
		return nil, err
	}
	if cfg.Spec == "" {
		flags.Usage()
		return nil, fmt.Errorf("%w: необходимо указать -spec", ErrUsage)
	}
	cfg.PrimaryPath, cfg.SecondaryPath, cfg.OutputPath = paths[0], paths[1], paths[2]
	return cfg, nil
}

// ParseBlanksFlags разбирает аргументы csv-remove-blanks: <file>.
func ParseBlanksFlags(args []string, output io.Writer) (*BlanksConfig, error) {
	cfg := &BlanksConfig{}
	flags, level := newFlagSet("csv-remove-blanks", "<file>", output, &cfg.Common)

	paths, err := finish(flags, args, level, &cfg.Common, 1)
	if err != nil {
		return nil, err
	}
	cfg.Path = paths[0]
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
