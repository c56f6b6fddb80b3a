package main

import (
	"fmt"
	"os"

	"github.com/chazu/welltube/pkg/texture"
	"github.com/spf13/cobra"
)

func newTextureCmd(g *globals) *cobra.Command {
	var (
		out     string
		stripes int
	)
	cmd := &cobra.Command{
		Use:   "texture",
		Short: "Paint the well stripe texture to a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := texture.OptionsFromConfig(g.cfg)
			if stripes > 0 {
				opts.Stripes = stripes
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := texture.WritePNG(f, opts); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %dx%d texture to %s\n", opts.Width, opts.Height, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "stripes.png", "output PNG file")
	cmd.Flags().IntVar(&stripes, "stripes", 0, "stripe pairs across the width (default from config)")
	return cmd
}
