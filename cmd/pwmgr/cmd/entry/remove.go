package entry

import (
	"fmt"

	"pwmgr/cmd/pwmgr/cmd/cli"

	"github.com/spf13/cobra"
)

var hardRemove bool

var RemoveCmd = &cobra.Command{
	Use:     "remove ID",
	Aliases: []string{"rm"},
	Short:   "Удалить запись",
	Long: `По умолчанию запись помечается удаленной и при синхронизации удаляется
и на другом узле. С флагом --hard запись стирается из базы полностью.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := cli.AppFromCommand(cmd)
		if err != nil {
			return err
		}

		if err := app.Remove(cmd.Context(), args[0], hardRemove); err != nil {
			return fmt.Errorf("ошибка удаления записи: %w", err)
		}

		mode := "soft"
		if hardRemove {
			mode = "hard"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Запись удалена (%s): %s\n", mode, args[0])
		return nil
	},
}

func init() {
	RemoveCmd.Flags().BoolVar(&hardRemove, "hard", false, "удалить запись полностью")
}
