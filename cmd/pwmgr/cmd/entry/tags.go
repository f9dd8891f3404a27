package entry

import (
	"pwmgr/cmd/pwmgr/cmd/cli"
	"pwmgr/internal/app/keeper"

	"github.com/spf13/cobra"
)

var (
	tagsNumber    bool
	tagsByNumber  bool
	tagsReverse   bool
	tagsMatchMode string
)

var TagsCmd = &cobra.Command{
	Use:   "tags [KEY]",
	Short: "Список тегов",
	Long:  `Выводит теги активных записей. KEY ограничивает список подходящими тегами.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, env, err := cli.AppFromCommand(cmd)
		if err != nil {
			return err
		}

		mode, err := keeper.ParseMatchMode(tagsMatchMode)
		if err != nil {
			return err
		}

		opts := keeper.TagsOptions{
			Mode:    mode,
			ByCount: tagsByNumber,
			Reverse: tagsReverse,
		}
		if len(args) == 1 {
			opts.Key = args[0]
		}

		tags, err := app.Tags(cmd.Context(), opts)
		if err != nil {
			return err
		}
		return keeper.WriteTags(cmd.OutOrStdout(), tags, tagsNumber, env.JSON)
	},
}

func init() {
	TagsCmd.Flags().BoolVarP(&tagsNumber, "number", "n", false, "выводить число записей с тегом")
	TagsCmd.Flags().BoolVarP(&tagsByNumber, "sort-by-number", "s", false, "сортировать по числу записей")
	TagsCmd.Flags().BoolVarP(&tagsReverse, "reverse-sort", "r", false, "обратный порядок")
	addMatchModeFlag(TagsCmd, &tagsMatchMode, keeper.MatchExact)
}
