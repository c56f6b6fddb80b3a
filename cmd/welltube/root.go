package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/welltube/pkg/config"
	"github.com/chazu/welltube/pkg/logging"
	"github.com/chazu/welltube/pkg/scene"
	"github.com/chazu/welltube/pkg/texture"
	"github.com/spf13/cobra"
)

// globals holds state shared by every subcommand.
type globals struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:           "welltube",
		Short:         "Build and view well trajectory tube scenes",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup(cmd.ErrOrStderr())
		},
	}
	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", os.Getenv("WELLTUBE_CONFIG"), "TOML configuration file")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")

	cmd.AddCommand(
		newBuildCmd(g),
		newServeCmd(g),
		newTextureCmd(g),
		newSurveyCmd(g),
		newConfigCmd(g),
	)
	return cmd
}

// setup loads the configuration and installs the process logger.
func (g *globals) setup(stderr io.Writer) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	logger, err := logging.New(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logging.Set(logger)
	texture.SetLogger(logger)
	g.cfg = cfg
	return nil
}

// buildScript reads and builds a script file, printing diagnostics to w.
// It fails if the build reported any errors.
func (g *globals) buildScript(path string, w io.Writer) (*scene.Builder, *scene.Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	b, err := scene.NewBuilderFromConfig(g.cfg)
	if err != nil {
		return nil, nil, err
	}
	res := b.Build(string(src))
	printMessages(w, path, "warning", res.Warnings)
	printMessages(w, path, "error", res.Errors)
	if !res.OK() {
		return nil, nil, fmt.Errorf("%s: build failed with %d error(s)", path, len(res.Errors))
	}
	return b, res, nil
}

func printMessages(w io.Writer, path, kind string, msgs []scene.Message) {
	for _, m := range msgs {
		switch {
		case m.Line > 0:
			fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", path, m.Line, m.Col, kind, m.Message)
		case m.Node != "":
			fmt.Fprintf(w, "%s: %s: %s: %s\n", path, kind, m.Node, m.Message)
		default:
			fmt.Fprintf(w, "%s: %s: %s\n", path, kind, m.Message)
		}
	}
}
