package cmd

import (
	"pwmgr/cmd/pwmgr/cmd/entry"
	"pwmgr/cmd/pwmgr/cmd/sync"
)

func init() {
	// Работа с записями
	rootCmd.AddCommand(entry.AddCmd)
	rootCmd.AddCommand(entry.EditCmd)
	rootCmd.AddCommand(entry.RemoveCmd)
	rootCmd.AddCommand(entry.ListCmd)
	rootCmd.AddCommand(entry.QueryCmd)
	rootCmd.AddCommand(entry.SearchCmd)
	rootCmd.AddCommand(entry.TagsCmd)
	rootCmd.AddCommand(entry.ExportCmd)
	rootCmd.AddCommand(entry.ImportCmd)

	// Синхронизация
	rootCmd.AddCommand(sync.SyncCmd)
	sync.SyncCmd.AddCommand(sync.ServerCmd)
	sync.SyncCmd.AddCommand(sync.ClientCmd)

	rootCmd.AddCommand(apiCmd)

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSaveCmd)
}
