package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/chazu/welltube/frontend"
	"github.com/chazu/welltube/pkg/scene"
	"github.com/chazu/welltube/pkg/server"
	"github.com/chazu/welltube/pkg/texture"
	"github.com/spf13/cobra"
)

func newServeCmd(g *globals) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve <script>",
		Short: "Serve a scene script to the browser viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, res, err := g.buildScript(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			sc, err := scene.Init(res, scene.OptionsFromConfig(g.cfg))
			if err != nil {
				return err
			}
			if addr == "" {
				addr = g.cfg.Server.Addr
			}
			srv, err := server.New(b, sc, res, server.Options{
				Addr:    addr,
				FPS:     g.cfg.Render.FPS,
				Texture: texture.OptionsFromConfig(g.cfg),
				Assets:  frontend.Assets(),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
