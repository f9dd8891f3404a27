package entry

import (
	"fmt"

	"pwmgr/cmd/pwmgr/cmd/cli"

	"github.com/spf13/cobra"
)

var EditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Изменить запись",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := cli.AppFromCommand(cmd)
		if err != nil {
			return err
		}

		e, err := app.Edit(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("ошибка изменения записи: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Запись изменена: %s\n", e.ID())
		return nil
	},
}
