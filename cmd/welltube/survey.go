package main

import (
	"fmt"
	"strings"

	"github.com/chazu/welltube/pkg/logging"
	"github.com/chazu/welltube/pkg/trajectory"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/spf13/cobra"
)

func newSurveyCmd(g *globals) *cobra.Command {
	var (
		name         string
		outer, inner float64
		origin       []float64
		maxDogleg    float64
	)
	cmd := &cobra.Command{
		Use:   "survey <csv>",
		Short: "Convert a trajectory CSV into a well form",
		Long: "Survey reads a CSV of x,y,z points or md,inc,azi survey stations and\n" +
			"prints a (well ...) form with the resulting path, ready to paste into a script.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(origin) != 3 {
				return fmt.Errorf("--origin takes 3 values, got %d", len(origin))
			}
			tbl, err := trajectory.LoadTable(args[0])
			if err != nil {
				return err
			}
			pts, err := tbl.Points(v3.Vec{X: origin[0], Y: origin[1], Z: origin[2]})
			if err != nil {
				return err
			}
			if dls, md, ok := tbl.MaxDogleg(); ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "max dogleg %.2f deg/30 at md %g\n", dls, md)
				if dls > maxDogleg {
					logging.L().Warn("survey bends harder than the sweep follows smoothly",
						"dogleg", dls, "md", md, "limit", maxDogleg)
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), wellForm(name, outer, inner, pts))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "well", "well name")
	cmd.Flags().Float64Var(&outer, "outer", 5, "outer radius")
	cmd.Flags().Float64Var(&inner, "inner", 4, "inner radius")
	cmd.Flags().Float64Var(&maxDogleg, "max-dogleg", 10, "warn above this dogleg severity, deg/30")
	cmd.Flags().Float64SliceVar(&origin, "origin", []float64{0, 0, 0}, "wellhead position x,y,z")
	return cmd
}

func wellForm(name string, outer, inner float64, pts []v3.Vec) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "(well %q :outer %g :inner %g :texture :stripes\n  :path (list", name, outer, inner)
	for _, p := range pts {
		fmt.Fprintf(&sb, "\n    (vec3 %g %g %g)", p.X, p.Y, p.Z)
	}
	sb.WriteString("))\n")
	return sb.String()
}
