package entry

import (
	"fmt"

	"pwmgr/cmd/pwmgr/cmd/cli"

	"github.com/spf13/cobra"
)

var addService string

var AddCmd = &cobra.Command{
	Use:   "add",
	Short: "Добавить запись",
	Long: `Открывает в редакторе шаблон новой записи. ID назначается заранее и не
должен меняться. Имя сервиса и хотя бы одно свойство обязательны.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, _, err := cli.AppFromCommand(cmd)
		if err != nil {
			return err
		}

		e, err := app.Add(cmd.Context(), addService)
		if err != nil {
			return fmt.Errorf("ошибка добавления записи: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Запись добавлена: %s\n", e.ID())
		return nil
	},
}

func init() {
	AddCmd.Flags().StringVarP(&addService, "service", "s", "", "имя сервиса для шаблона")
}
