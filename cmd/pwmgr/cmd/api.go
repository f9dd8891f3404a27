package cmd

import (
	"fmt"

	"pwmgr/cmd/pwmgr/cmd/cli"
	"pwmgr/internal/app/api"

	"github.com/spf13/cobra"
)

var apiCmd = &cobra.Command{
	Use:   "api [ADDR]",
	Short: "Запустить локальный HTTP API только для чтения",
	Long: `Запускает HTTP API со списком записей, отдельными записями и тегами.
Значения секретных свойств маскируются. Адрес по умолчанию берется из api_address.
Документация OpenAPI доступна по /docs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, env, err := cli.AppFromCommand(cmd)
		if err != nil {
			return err
		}

		addr := env.Config.APIAddress
		if len(args) == 1 {
			addr = args[0]
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "API слушает %s, Ctrl+C для остановки\n", addr)
		return api.Serve(cmd.Context(), addr, app.Store(), env.Log)
	},
}
