package main

import (
	"log"
	"os"

	"github.com/chazu/welltube/frontend"
	"github.com/chazu/welltube/pkg/config"
	"github.com/chazu/welltube/pkg/logging"
	"github.com/chazu/welltube/pkg/texture"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

func main() {
	cfg, err := config.Load(os.Getenv("WELLTUBE_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatal(err)
	}
	logging.Set(logger)
	texture.SetLogger(logger)

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatal(err)
	}
	r, g, b := cfg.Render.Background.Clamped().RGB255()

	err = wails.Run(&options.App{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		AssetServer: &assetserver.Options{
			Assets: frontend.Assets(),
		},
		BackgroundColour: &options.RGBA{R: r, G: g, B: b, A: 255},
		OnStartup:        app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
