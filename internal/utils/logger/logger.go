package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pwmgr/internal/config"

	"golang.org/x/exp/slog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileName   = "pwmgr.log"
	logMaxSizeMB  = 2
	logMaxBackups = 10
)

// Options управляет созданием логгера
type Options struct {
	Env string
	// Level переопределяет уровень, выбранный по окружению
	Level string
	// Output: "" - stderr, "-" - stdout, иначе файл или каталог с ротацией
	Output string
}

// New создает логгер для окружения, вывод в stderr
func New(env string) *slog.Logger {
	log, _, err := Setup(Options{Env: env})
	if err != nil {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return log
}

// Setup создает логгер по опциям. Возвращаемый io.Closer закрывает файл лога
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if opts.Env == config.EnvLocal || opts.Env == config.EnvDev {
		level = slog.LevelDebug
	}
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, fmt.Errorf("parse log level: %w", err)
		}
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
		toFile bool
	)
	switch opts.Output {
	case "":
	case "-":
		out = os.Stdout
	default:
		rotator, err := newRotator(opts.Output)
		if err != nil {
			return nil, nil, err
		}
		out, closer, toFile = rotator, rotator, true
	}

	if opts.Env == config.EnvLocal && !toFile {
		return setupPrettySlogTo(out, level), closer, nil
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer, nil
}

func setupPrettySlog() *slog.Logger {
	return setupPrettySlogTo(os.Stderr, slog.LevelDebug)
}

func setupPrettySlogTo(out io.Writer, level slog.Level) *slog.Logger {
	opts := PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: level,
		},
	}

	handler := opts.NewPrettyHandler(out)

	return slog.New(handler)
}

// newRotator пишет в файл с ротацией; если путь - каталог, файл создается внутри него
func newRotator(path string) (*lumberjack.Logger, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, logFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
	}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
