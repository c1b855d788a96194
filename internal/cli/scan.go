package cli

import (
	"fmt"
	"path/filepath"

	"github.com/absfs/tjdecode"
	"github.com/absfs/tjdecode/internal/config"
	"github.com/spf13/cobra"
)

// scanFlags are shared by scan and batch
type scanFlags struct {
	variants []string
	exclude  []string
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.variants, "variants", nil, "Variants to process: tj!, tje, tjz (default tj!,tje); empty selects none")
	cmd.Flags().StringArrayVar(&f.exclude, "exclude", nil, "Glob of paths to skip, relative to ROOT; may be repeated")
}

// options merges the flags over the configuration file
func (f *scanFlags) options(cmd *cobra.Command, cfg *config.File) (tjdecode.ScanOptions, error) {
	opts := tjdecode.ScanOptions{
		Variants: cfg.VariantSet(),
		Exclude:  append(append([]string(nil), cfg.Exclude...), f.exclude...),
	}
	if cmd.Flags().Changed("variants") {
		s, err := config.ParseVariants(f.variants)
		if err != nil {
			return opts, fmt.Errorf("--variants: %w", err)
		}
		opts.Variants = s.Only()
	}
	return opts, nil
}

func (a *app) scanCommand() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan ROOT",
		Short: "List container files under a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, a.cfg)
			if err != nil {
				return err
			}
			root, err := slashPath(args[0])
			if err != nil {
				return err
			}
			dec, err := a.decoder(0)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for m := range dec.Scan(root, opts) {
				fmt.Fprintln(out, filepath.FromSlash(m.Path))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
