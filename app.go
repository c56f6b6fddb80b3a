package main

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"

	"github.com/chazu/welltube/pkg/config"
	"github.com/chazu/welltube/pkg/export"
	"github.com/chazu/welltube/pkg/graph"
	"github.com/chazu/welltube/pkg/kernel"
	"github.com/chazu/welltube/pkg/logging"
	"github.com/chazu/welltube/pkg/scene"
	"github.com/chazu/welltube/pkg/texture"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// errNoScene is returned by bindings that need a built scene.
var errNoScene = errors.New("no scene has been built yet")

// App is the Wails backend. It exposes methods to the frontend via bindings
// and pushes frame state as "frame" events.
type App struct {
	ctx     context.Context
	cfg     *config.Config
	builder *scene.Builder
	emit    func(ctx context.Context, name string, data ...interface{})

	mu      sync.Mutex
	opts    scene.Options
	scene   *scene.Context
	result  *scene.Result
	texture string
}

// NewApp creates an App from a loaded configuration.
func NewApp(cfg *config.Config) (*App, error) {
	b, err := scene.NewBuilderFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:     cfg,
		builder: b,
		emit:    runtime.EventsEmit,
		opts:    scene.OptionsFromConfig(cfg),
	}, nil
}

// startup is called by Wails on app startup. It starts the frame driver,
// which runs until the window closes.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	go func() {
		err := scene.NewDriver(a.cfg.Render.FPS).Run(ctx, func(dt float64) error {
			a.Tick(dt)
			return nil
		})
		if err != nil {
			logging.L().Error("frame driver failed", "err", err)
		}
	}()
}

// Evaluate takes script source and returns meshes plus diagnostics.
// This is the primary binding called by the frontend editor. A failed build
// leaves the previous scene on screen.
func (a *App) Evaluate(source string) *scene.Result {
	res := a.builder.Build(source)
	if !res.OK() {
		return res
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.scene == nil {
		sc, err := scene.Init(res, a.opts)
		if err != nil {
			res.Errors = append(res.Errors, scene.Message{Message: err.Error()})
			return res
		}
		a.scene = sc
	} else if err := a.scene.Load(res); err != nil {
		res.Errors = append(res.Errors, scene.Message{Message: err.Error()})
		return res
	}
	a.result = res
	return res
}

// Scene returns the last successful build, or an empty scene with the
// configured settings.
func (a *App) Scene() *scene.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result != nil {
		return a.result
	}
	return &scene.Result{
		Meshes:   []*kernel.Mesh{},
		Settings: a.cfg.SceneDefaults(),
		Errors:   []scene.Message{},
		Warnings: []scene.Message{},
	}
}

// Settings returns the camera, lights and background of the current scene.
func (a *App) Settings() graph.Settings {
	return a.Scene().Settings
}

// Tick advances the scene by dt seconds and emits the new frame.
func (a *App) Tick(dt float64) scene.Frame {
	a.mu.Lock()
	sc := a.scene
	a.mu.Unlock()
	if sc == nil {
		return scene.Frame{}
	}
	f := sc.Update(dt)
	a.emit(a.ctx, "frame", f)
	return f
}

// Frame returns the current frame state without advancing it.
func (a *App) Frame() scene.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.scene == nil {
		return scene.Frame{Width: a.opts.Width, Height: a.opts.Height}
	}
	return a.scene.Snapshot()
}

// Resize records the viewport size. It applies to the current scene and to
// any scene built later.
func (a *App) Resize(width, height int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.scene != nil {
		if err := a.scene.Resize(width, height); err != nil {
			return err
		}
	} else if width <= 0 || height <= 0 {
		return scene.ErrBadViewport
	}
	a.opts.Width, a.opts.Height = width, height
	return nil
}

// Texture returns the stripe texture as a PNG data URL.
func (a *App) Texture() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.texture == "" {
		png, err := texture.PNG(texture.OptionsFromConfig(a.cfg))
		if err != nil {
			return "", err
		}
		a.texture = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	}
	return a.texture, nil
}

// Export writes the current scene, as posed in the current frame, to path.
// The format follows the extension: .obj, .json or .stl.
func (a *App) Export(path string) error {
	a.mu.Lock()
	sc := a.scene
	a.mu.Unlock()
	if sc == nil {
		return errNoScene
	}
	return export.Save(path, sc.PosedMeshes())
}
