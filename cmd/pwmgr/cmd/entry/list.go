package entry

import (
	"pwmgr/cmd/pwmgr/cmd/cli"
	"pwmgr/internal/app/keeper"

	"github.com/spf13/cobra"
)

var (
	listTags         []string
	listTagAnd       bool
	listByService    bool
	listByLastUpdate bool
	listReverse      bool
	listWithRemoved  bool
)

var ListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Список записей",
	Long: `Выводит "ID<TAB>сервис" по каждой записи, удаленные отмечаются "-".
Фильтр по тегам не учитывает регистр: по умолчанию подходит любой из тегов,
с --tag-and нужны все.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, env, err := cli.AppFromCommand(cmd)
		if err != nil {
			return err
		}

		opts := keeper.ListOptions{
			Tags:        listTags,
			TagAnd:      listTagAnd,
			WithRemoved: listWithRemoved,
			Reverse:     listReverse,
		}
		switch {
		case listByService:
			opts.Sort = keeper.SortByService
		case listByLastUpdate:
			opts.Sort = keeper.SortByLastUpdate
		}

		entries, err := app.List(cmd.Context(), opts)
		if err != nil {
			return err
		}
		return keeper.WriteList(cmd.OutOrStdout(), entries, opts.Sort, env.JSON)
	},
}

func init() {
	ListCmd.Flags().StringSliceVarP(&listTags, "tag", "t", nil, "фильтр по тегу (можно повторять)")
	ListCmd.Flags().BoolVar(&listTagAnd, "tag-and", false, "требовать все указанные теги")
	ListCmd.Flags().BoolVarP(&listByService, "sort-by-service-name", "N", false, "сортировать по имени сервиса")
	ListCmd.Flags().BoolVarP(&listByLastUpdate, "sort-by-last-update", "L", false, "сортировать по времени изменения")
	ListCmd.Flags().BoolVarP(&listReverse, "reverse-sort", "r", false, "обратный порядок")
	ListCmd.Flags().BoolVar(&listWithRemoved, "with-removed", false, "показывать удаленные записи")
	ListCmd.MarkFlagsMutuallyExclusive("sort-by-service-name", "sort-by-last-update")
}
