package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	envPrefix = "PWMGR"

	defaultEnv         = EnvProd
	defaultConfigDir   = ".pwmgr"
	defaultDBFile      = "database.db"
	defaultSyncAddress = "127.0.0.1:7341"
	defaultAPIAddress  = "127.0.0.1:7342"
)

// Ключи конфигурации (совпадают с ключами YAML-файла и переменными окружения PWMGR_*)
const (
	KeyEnv         = "app_env"
	KeyLogLevel    = "log_level"
	KeyLogOutput   = "log_output"
	KeyDBPath      = "db_path"
	KeyEditor      = "editor"
	KeySyncAddress = "sync_address"
	KeyAPIAddress  = "api_address"
)

type Config struct {
	Env         string `mapstructure:"app_env"`
	LogLevel    string `mapstructure:"log_level"`
	LogOutput   string `mapstructure:"log_output"`
	DBPath      string `mapstructure:"db_path"`
	Editor      string `mapstructure:"editor"`
	SyncAddress string `mapstructure:"sync_address"`
	APIAddress  string `mapstructure:"api_address"`

	// ConfigFile - файл, из которого прочитана (или в который будет сохранена) конфигурация
	ConfigFile string `mapstructure:"-"`
}

// Load собирает конфигурацию: значения по умолчанию, .env, YAML-файл,
// переменные окружения и привязанные к v флаги командной строки.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	loadDotEnv()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	configDir := filepath.Join(homeDir, defaultConfigDir)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	// Устанавливаем значения по умолчанию
	v.SetDefault(KeyEnv, defaultEnv)
	v.SetDefault(KeyLogLevel, "")
	v.SetDefault(KeyLogOutput, "")
	v.SetDefault(KeyDBPath, filepath.Join(configDir, defaultDBFile))
	v.SetDefault(KeyEditor, defaultEditor())
	v.SetDefault(KeySyncAddress, defaultSyncAddress)
	v.SetDefault(KeyAPIAddress, defaultAPIAddress)

	configFile := cfgFile
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		configFile = filepath.Join(configDir, "config.yaml")
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Конфиг не найден, используем значения по умолчанию
	}
	if used := v.ConfigFileUsed(); used != "" {
		configFile = used
	}

	cfg := &Config{
		Env:         v.GetString(KeyEnv),
		LogLevel:    v.GetString(KeyLogLevel),
		LogOutput:   v.GetString(KeyLogOutput),
		DBPath:      expandHome(v.GetString(KeyDBPath), homeDir),
		Editor:      v.GetString(KeyEditor),
		SyncAddress: v.GetString(KeySyncAddress),
		APIAddress:  v.GetString(KeyAPIAddress),
		ConfigFile:  configFile,
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("ошибка конфигурации: %w", err)
	}

	return cfg, nil
}

// Save записывает текущие значения в YAML-файл конфигурации
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.ConfigFile), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	v := viper.New()
	v.Set(KeyEnv, c.Env)
	v.Set(KeyLogLevel, c.LogLevel)
	v.Set(KeyLogOutput, c.LogOutput)
	v.Set(KeyDBPath, c.DBPath)
	v.Set(KeyEditor, c.Editor)
	v.Set(KeySyncAddress, c.SyncAddress)
	v.Set(KeyAPIAddress, c.APIAddress)
	v.SetConfigType("yaml")

	if err := v.WriteConfigAs(c.ConfigFile); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("неизвестное окружение app_env: %q", c.Env)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path не может быть пустым")
	}
	if c.Editor == "" {
		return fmt.Errorf("editor не может быть пустым")
	}
	if c.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return fmt.Errorf("неверный log_level %q: %w", c.LogLevel, err)
		}
	}
	return nil
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal
}

func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка загрузки .env файла: %v\n", err)
	}
}

func defaultEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if runtime.GOOS == "windows" {
		return "notepad"
	}
	return "nano"
}

func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if len(path) > 2 && path[:2] == "~/" {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
