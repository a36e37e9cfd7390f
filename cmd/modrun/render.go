package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var sanitize bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render ANSI-coloured text from stdin as HTML",
		Example: `  some-tool --color=always | modrun render > out.html`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return writeFormatted(cmd.OutOrStdout(), string(in), formatHTML, sanitize)
		},
	}
	cmd.Flags().BoolVar(&sanitize, "sanitize", false, "Pass the markup through the output policy")
	return cmd
}
