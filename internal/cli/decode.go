package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/absfs/tjdecode"
	"github.com/spf13/cobra"
)

func (a *app) decodeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "decode FILE...",
		Short: "Decode container files",
		Long: `Decode each file and write the plaintext next to it, inserting the output
infix before the extension (a.json becomes a.dec.json). A failing file is
reported and the rest are still decoded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && len(args) > 1 {
				return errors.New("--output can only be used with a single file")
			}

			dec, err := a.decoder(0)
			if err != nil {
				return err
			}

			var opts tjdecode.DecodeOptions
			if output != "" {
				if opts.Output, err = slashPath(output); err != nil {
					return err
				}
			}

			failed := false
			for _, arg := range args {
				name, err := slashPath(arg)
				if err != nil {
					return err
				}
				out, err := dec.Decode(name, opts)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", arg, describe(err))
					failed = true
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", arg, filepath.FromSlash(out))
			}
			if failed {
				return errFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (single input only)")
	return cmd
}
