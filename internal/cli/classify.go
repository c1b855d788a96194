package cli

import (
	"fmt"

	"github.com/absfs/osfs"
	"github.com/absfs/tjdecode"
	"github.com/spf13/cobra"
)

func (a *app) classifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "classify FILE...",
		Short: "Print the container variant of each file",
		Long:  "Print each file followed by a tab and its variant: tj!, tje, tjz or unknown.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := osfs.NewFS()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, arg := range args {
				name, err := slashPath(arg)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%s\n", arg, tjdecode.Classify(fs, name))
			}
			return nil
		},
	}
}
