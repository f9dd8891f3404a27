// Package cli содержит общее для подкоманд окружение
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"pwmgr/internal/app/keeper"
	"pwmgr/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

// NoStore в Annotations команды отключает открытие базы данных
const NoStore = "no-store"

var ErrNotInitialized = errors.New("приложение не инициализировано")

// Env - то, что root передает подкомандам через контекст
type Env struct {
	Config *config.Config
	Log    *slog.Logger
	// App равен nil для команд с аннотацией NoStore
	App  *keeper.App
	JSON bool
}

type envKey struct{}

func WithEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

func FromCommand(cmd *cobra.Command) (*Env, error) {
	env, ok := cmd.Context().Value(envKey{}).(*Env)
	if !ok || env == nil {
		return nil, ErrNotInitialized
	}
	return env, nil
}

// AppFromCommand возвращает открытое приложение
func AppFromCommand(cmd *cobra.Command) (*keeper.App, *Env, error) {
	env, err := FromCommand(cmd)
	if err != nil {
		return nil, nil, err
	}
	if env.App == nil {
		return nil, nil, ErrNotInitialized
	}
	return env.App, env, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// OpenOutput открывает файл для записи; "" и "-" означают stdout команды
func OpenOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}
	return f, nil
}

// OpenInput открывает файл для чтения; "" и "-" означают stdin команды
func OpenInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}
	return f, nil
}
