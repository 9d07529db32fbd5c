package cmd

import "github.com/spf13/cobra"

func RegisterCommands(root *cobra.Command) {
	root.AddCommand(versionCmd)
	root.AddCommand(clipboardServeCmd)

	root.AddCommand(tableCmd)
	root.AddCommand(arrayCmd)
	root.AddCommand(mweCmd)
	root.AddCommand(historyCmd)
	root.AddCommand(configCmd)

	tableCmd.AddCommand(
		tableCopyCmd,
		tableSaveCmd,
	)

	arrayCmd.AddCommand(
		arrayCopyCmd,
	)

	mweCmd.AddCommand(
		mweTableCmd,
		mweArrayCmd,
	)

	historyCmd.AddCommand(
		historyListCmd,
		historyShowCmd,
		historyRestoreCmd,
		historyClearCmd,
		historyPathCmd,
	)
}
