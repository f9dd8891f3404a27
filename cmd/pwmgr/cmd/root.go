package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"pwmgr/cmd/pwmgr/cmd/cli"
	"pwmgr/internal/app/keeper"
	"pwmgr/internal/config"
	"pwmgr/internal/utils/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"
)

var (
	cfgFile    string
	cfg        *config.Config
	log        *slog.Logger
	logCloser  io.Closer
	app        *keeper.App
	debug      bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "pwmgr",
	Short: "pwmgr - менеджер паролей с синхронизацией между узлами",
	Long: `pwmgr хранит учетные данные сервисов в локальной базе SQLite.

Записи редактируются во внешнем редакторе в формате YAML, размечаются тегами
и синхронизируются между двумя узлами по TCP (sync server / sync client).
Свойства, ключ которых оканчивается на "!", считаются секретными и
маскируются при выводе.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	teardown()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	if debug {
		cfg.LogLevel = "debug"
	}

	log, logCloser, err = logger.Setup(logger.Options{
		Env:    cfg.Env,
		Level:  cfg.LogLevel,
		Output: cfg.LogOutput,
	})
	if err != nil {
		return fmt.Errorf("ошибка настройки логгера: %w", err)
	}

	env := &cli.Env{
		Config: cfg,
		Log:    log,
		JSON:   jsonOutput,
	}

	if cmd.Annotations[cli.NoStore] == "" {
		app, err = keeper.Open(cmd.Context(), cfg, log)
		if err != nil {
			return fmt.Errorf("ошибка инициализации приложения: %w", err)
		}
		env.App = app
	}

	cmd.SetContext(cli.WithEnv(cmd.Context(), env))
	return nil
}

func teardown() {
	if app != nil {
		if err := app.Close(); err != nil && log != nil {
			log.Error("ошибка закрытия базы данных", "error", err)
		}
		app = nil
	}
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

func init() {
	flags := rootCmd.PersistentFlags()

	// Глобальные флаги
	flags.StringVarP(&cfgFile, "config", "c", "", "конфигурационный файл (по умолчанию ~/.pwmgr/config.yaml)")
	flags.StringP("db-path", "d", "", "путь к файлу базы данных")
	flags.StringP("editor", "e", "", "команда запуска редактора")
	flags.String("log-level", "", "уровень логирования (debug, info, warn, error)")
	flags.String("log-output", "", `файл или каталог для логов, "-" - stdout`)
	flags.BoolVar(&debug, "debug", false, "включить отладочный режим")
	flags.BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")

	// Флаги переопределяют значения из файла и окружения
	_ = viper.BindPFlag(config.KeyDBPath, flags.Lookup("db-path"))
	_ = viper.BindPFlag(config.KeyEditor, flags.Lookup("editor"))
	_ = viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogOutput, flags.Lookup("log-output"))
}
