package entry

import (
	"pwmgr/cmd/pwmgr/cmd/cli"
	"pwmgr/internal/app/keeper"

	"github.com/spf13/cobra"
)

var (
	queryFull        bool
	queryShowSecrets bool
	queryMatchMode   string
)

var QueryCmd = &cobra.Command{
	Use:   "query KEY",
	Short: "Показать записи по ID или имени сервиса",
	Long: `Если KEY является ID существующей записи, выводится она. Иначе KEY
сравнивается с именами сервисов и псевдонимами активных записей.
Значения секретных свойств скрыты, пока не указан --show-secrets.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, env, err := cli.AppFromCommand(cmd)
		if err != nil {
			return err
		}

		mode, err := keeper.ParseMatchMode(queryMatchMode)
		if err != nil {
			return err
		}

		entries, err := app.Query(cmd.Context(), keeper.QueryOptions{
			Key:         args[0],
			Mode:        mode,
			ShowSecrets: queryShowSecrets,
		})
		if err != nil {
			return err
		}
		return keeper.WriteEntries(cmd.OutOrStdout(), entries, queryFull, env.JSON)
	},
}

func init() {
	QueryCmd.Flags().BoolVarP(&queryFull, "full", "f", false, "выводить псевдонимы, теги и время изменения")
	QueryCmd.Flags().BoolVar(&queryShowSecrets, "show-secrets", false, "показывать значения секретных свойств")
	addMatchModeFlag(QueryCmd, &queryMatchMode, keeper.MatchContains)
}
