package sync

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"pwmgr/cmd/pwmgr/cmd/cli"
	"pwmgr/internal/app/syncer"

	"github.com/spf13/cobra"
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизация с другим узлом",
	Long: `Синхронизация двух баз по TCP. Один узел запускает "sync server" и ждет
подключения, другой выполняет "sync client". После сеанса обе базы содержат
более новые версии всех записей. Если запись изменена на обеих сторонах в одну
и ту же секунду, клиент спрашивает, какую версию оставить.`,
}

var ServerCmd = &cobra.Command{
	Use:   "server [ADDR]",
	Short: "Дождаться клиента и провести один сеанс синхронизации",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, env, err := cli.AppFromCommand(cmd)
		if err != nil {
			return err
		}

		addr := env.Config.SyncAddress
		if len(args) == 1 {
			addr = args[0]
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Ожидание клиента на %s...\n", addr)
		result, err := app.SyncServer(cmd.Context(), addr)
		if err != nil {
			return fmt.Errorf("ошибка синхронизации: %w", err)
		}

		return printResult(cmd.OutOrStdout(), result, env.JSON)
	},
}

var ClientCmd = &cobra.Command{
	Use:   "client [ADDR]",
	Short: "Подключиться к серверу и синхронизировать записи",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, env, err := cli.AppFromCommand(cmd)
		if err != nil {
			return err
		}

		addr := env.Config.SyncAddress
		if len(args) == 1 {
			addr = args[0]
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Подключение к %s...\n", addr)
		result, err := app.SyncClient(cmd.Context(), addr)
		if err != nil {
			return fmt.Errorf("ошибка синхронизации: %w", err)
		}

		return printResult(cmd.OutOrStdout(), result, env.JSON)
	},
}

func printResult(w io.Writer, r *syncer.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintln(w, "✅ Синхронизация завершена!")
	fmt.Fprintf(w, "Время выполнения: %v\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Отправлено записей: %d\n", r.Sent)
	fmt.Fprintf(w, "Получено записей: %d\n", r.Received)
	fmt.Fprintf(w, "Принято версий другого узла: %d\n", r.Adopted)
	fmt.Fprintf(w, "Оставлено локальных версий: %d\n", r.Kept)
	return nil
}
