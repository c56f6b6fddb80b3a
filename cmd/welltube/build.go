package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/welltube/pkg/export"
	"github.com/spf13/cobra"
)

func newBuildCmd(g *globals) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build <script>",
		Short: "Build a scene script and export its meshes",
		Long: "Build evaluates a scene script and writes every mesh to one file.\n" +
			"The format follows the output extension: " + strings.Join(export.Formats, ", ") + ".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, res, err := g.buildScript(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".obj"
			}
			if err := export.Save(out, res.Meshes); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d meshes to %s\n", len(res.Meshes), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: script name with .obj)")
	return cmd
}
