package cli

import (
	"github.com/spf13/cobra"
)

func NewKitCtlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kitctl [flags] [options]",
		Short: "kitctl drives the content kit backend from the terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(NewCmdLogin())
	cmd.AddCommand(NewCmdLogout())
	cmd.AddCommand(NewCmdToken())
	cmd.AddCommand(NewCmdKit())
	cmd.AddCommand(NewCmdUpload())
	cmd.AddCommand(NewCmdFiles())
	cmd.AddCommand(NewCmdImport())
	cmd.AddCommand(NewCmdSuggestions())
	cmd.AddCommand(NewCmdMilestones())

	return cmd
}
