package cli

import (
	"unicode/utf8"

	"github.com/absfs/tjdecode"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"
)

func (a *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "Print the decoded text of a container",
		Long:  "Decode FILE in memory and print it. Text that is not UTF-8 is read as Latin-1.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := slashPath(args[0])
			if err != nil {
				return err
			}
			dec, err := a.decoder(0)
			if err != nil {
				return err
			}
			data, err := dec.ReadPlaintext(name, tjdecode.DecodeOptions{})
			if err != nil {
				return err
			}
			text, err := previewText(data)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(text)
			return err
		},
	}
}

// previewText returns data as UTF-8
func previewText(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}
	return charmap.ISO8859_1.NewDecoder().Bytes(data)
}
