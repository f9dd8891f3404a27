package entry

import (
	"fmt"

	"pwmgr/cmd/pwmgr/cmd/cli"
	"pwmgr/internal/app/keeper"

	"github.com/spf13/cobra"
)

var (
	exportOutput    string
	importInput     string
	importMerge     bool
	importOverwrite bool
	importDryRun    bool
)

var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Выгрузить все записи в YAML",
	Long:  `Пишет все записи, включая удаленные, как поток YAML-документов. Секреты не маскируются.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) (err error) {
		app, _, err := cli.AppFromCommand(cmd)
		if err != nil {
			return err
		}

		w, err := cli.OpenOutput(cmd, exportOutput)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := w.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("ошибка закрытия файла: %w", cerr)
			}
		}()

		n, err := app.Export(cmd.Context(), w)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d entries\n", n)
		return nil
	},
}

var ImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Загрузить записи из YAML",
	Long: `Читает поток YAML-документов, выгруженных командой export.
Без --merge все существующие записи удаляются (после подтверждения).
Без --overwrite совпадение ID с существующей записью считается ошибкой.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, _, err := cli.AppFromCommand(cmd)
		if err != nil {
			return err
		}

		r, err := cli.OpenInput(cmd, importInput)
		if err != nil {
			return err
		}
		defer r.Close()

		res, err := app.Import(cmd.Context(), r, keeper.ImportOptions{
			Merge:     importMerge,
			Overwrite: importOverwrite,
			DryRun:    importDryRun,
		})
		if err != nil {
			return err
		}

		if res.DryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d entries (dry run)\n", res.Imported)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", res.Imported)
		return nil
	},
}

func init() {
	ExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", `файл для записи, "-" - stdout`)

	ImportCmd.Flags().StringVarP(&importInput, "input", "i", "-", `файл для чтения, "-" - stdin`)
	ImportCmd.Flags().BoolVarP(&importMerge, "merge", "m", false, "добавить к существующим записям")
	ImportCmd.Flags().BoolVarP(&importOverwrite, "overwrite", "O", false, "заменять записи с совпадающим ID")
	ImportCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "только проверить входные данные")
}
