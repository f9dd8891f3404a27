package cmd

import (
	"encoding/json"
	"fmt"

	"pwmgr/cmd/pwmgr/cmd/cli"
	"pwmgr/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Просмотр и сохранение настроек",
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Показать действующие настройки",
	Long:        `Выводит настройки после применения файла, переменных окружения PWMGR_* и флагов.`,
	Annotations: map[string]string{cli.NoStore: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := cli.FromCommand(cmd)
		if err != nil {
			return err
		}

		values := settings(env.Config)
		out := cmd.OutOrStdout()
		if env.JSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(values)
		}

		fmt.Fprintf(out, "# %s\n", env.Config.ConfigFile)
		data, err := yaml.Marshal(values)
		if err != nil {
			return fmt.Errorf("ошибка вывода настроек: %w", err)
		}
		_, err = out.Write(data)
		return err
	},
}

var configSaveCmd = &cobra.Command{
	Use:         "save",
	Short:       "Сохранить действующие настройки в файл конфигурации",
	Annotations: map[string]string{cli.NoStore: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := cli.FromCommand(cmd)
		if err != nil {
			return err
		}

		if err := env.Config.Save(); err != nil {
			return fmt.Errorf("ошибка сохранения настроек: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Настройки сохранены в %s\n", env.Config.ConfigFile)
		return nil
	},
}

func settings(c *config.Config) map[string]string {
	return map[string]string{
		config.KeyEnv:         c.Env,
		config.KeyLogLevel:    c.LogLevel,
		config.KeyLogOutput:   c.LogOutput,
		config.KeyDBPath:      c.DBPath,
		config.KeyEditor:      c.Editor,
		config.KeySyncAddress: c.SyncAddress,
		config.KeyAPIAddress:  c.APIAddress,
	}
}
