package entry

import (
	"fmt"
	"strings"

	"pwmgr/internal/app/keeper"

	"github.com/spf13/cobra"
)

func matchModeUsage() string {
	modes := make([]string, 0, len(keeper.MatchModes))
	for _, m := range keeper.MatchModes {
		modes = append(modes, string(m))
	}
	return fmt.Sprintf("режим сопоставления (%s)", strings.Join(modes, ", "))
}

func addMatchModeFlag(cmd *cobra.Command, target *string, def keeper.MatchMode) {
	cmd.Flags().StringVarP(target, "match-mode", "m", string(def), matchModeUsage())
}
