package entry

import (
	"pwmgr/cmd/pwmgr/cmd/cli"
	"pwmgr/internal/app/keeper"

	"github.com/spf13/cobra"
)

var (
	searchService    bool
	searchTags       []string
	searchProperties []string
	searchMatchMode  string
)

var SearchCmd = &cobra.Command{
	Use:   "search KEY",
	Short: "Найти записи по значениям свойств",
	Long: `Ищет KEY в значениях свойств, перечисленных через --property, и,
с флагом --service, в именах сервисов и псевдонимах. Удаленные записи не
учитываются. Выводит "ID<TAB>сервис".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, env, err := cli.AppFromCommand(cmd)
		if err != nil {
			return err
		}

		mode, err := keeper.ParseMatchMode(searchMatchMode)
		if err != nil {
			return err
		}

		entries, err := app.Search(cmd.Context(), keeper.SearchOptions{
			Key:            args[0],
			Mode:           mode,
			IncludeService: searchService,
			Properties:     searchProperties,
			Tags:           searchTags,
		})
		if err != nil {
			return err
		}
		return keeper.WriteSearch(cmd.OutOrStdout(), entries, env.JSON)
	},
}

func init() {
	SearchCmd.Flags().BoolVarP(&searchService, "service", "s", false, "искать также по имени сервиса и псевдонимам")
	SearchCmd.Flags().StringSliceVarP(&searchTags, "tag", "t", nil, "искать только среди записей с тегом (можно повторять)")
	SearchCmd.Flags().StringSliceVarP(&searchProperties, "property", "p", nil, "ключ свойства для поиска (можно повторять)")
	addMatchModeFlag(SearchCmd, &searchMatchMode, keeper.MatchContains)
}
