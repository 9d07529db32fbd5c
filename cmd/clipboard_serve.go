package cmd

import (
	"encoding/json"

	"clipdata/pkg/clipboard"

	"github.com/spf13/cobra"
)

var clipboardServeCmd = &cobra.Command{
	Use:    clipboard.ServeCommand,
	Hidden: true,
	Short:  "Internal: serve clipboard content over Wayland (do not call directly)",
	// The detached owner process must not depend on the user's config.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		var payload clipboard.Payload
		if err := json.NewDecoder(cmd.InOrStdin()).Decode(&payload); err != nil {
			return err
		}
		return clipboard.ServeClipboard(payload)
	},
}
