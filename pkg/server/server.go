// Package server serves the scene to a browser frontend: meshes and settings
// over HTTP, the stripe texture as PNG, and per-frame state over a websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/chazu/welltube/pkg/logging"
	"github.com/chazu/welltube/pkg/scene"
	"github.com/chazu/welltube/pkg/texture"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// Options configure a Server.
type Options struct {
	Addr    string
	FPS     int
	Texture texture.Options

	// Assets, when set, is served at / (the frontend bundle).
	Assets fs.FS
}

// Server owns the HTTP routes and the live scene.
type Server struct {
	opts    Options
	echo    *echo.Echo
	builder *scene.Builder
	scene   *scene.Context
	hub     *hub
	texture []byte
	log     *slog.Logger

	mu     sync.RWMutex
	result *scene.Result
}

// New returns a Server for an already built scene. res must be the result
// sc was initialised from.
func New(b *scene.Builder, sc *scene.Context, res *scene.Result, opts Options) (*Server, error) {
	png, err := texture.PNG(opts.Texture)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s := &Server{
		opts:    opts,
		echo:    echo.New(),
		builder: b,
		scene:   sc,
		hub:     newHub(),
		texture: png,
		log:     logging.L().With("component", "server"),
		result:  res,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	e := s.echo
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	e.GET("/api/scene", s.handleScene)
	e.GET("/api/meshes", s.handleMeshes)
	e.GET("/api/frame", s.handleFrame)
	e.POST("/api/evaluate", s.handleEvaluate)
	e.POST("/api/resize", s.handleResize)
	e.GET("/texture.png", s.handleTexture)
	e.GET("/ws", s.handleWS)

	if s.opts.Assets != nil {
		e.StaticFS("/", s.opts.Assets)
	}
}

// ServeHTTP lets the server be mounted or tested without listening.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Tick advances the scene by dt seconds and pushes the frame to every
// websocket client.
func (s *Server) Tick(dt float64) scene.Frame {
	f := s.scene.Update(dt)
	s.hub.broadcast(event{Type: eventFrame, Frame: &f})
	return f
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int { return s.hub.len() }

// Run listens on the configured address and drives frames until ctx is
// done or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("listening", "addr", s.opts.Addr)
		if err := s.echo.Start(s.opts.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.hub.closeAll()
		return s.echo.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return scene.NewDriver(s.opts.FPS).Run(gctx, func(dt float64) error {
			s.Tick(dt)
			return nil
		})
	})

	err := g.Wait()
	s.log.Info("stopped", "err", err)
	return err
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

type sceneResponse struct {
	*scene.Result
	Frame scene.Frame `json:"state"`
}

func (s *Server) handleScene(c echo.Context) error {
	s.mu.RLock()
	res := s.result
	s.mu.RUnlock()
	return c.JSON(http.StatusOK, sceneResponse{Result: res, Frame: s.scene.Snapshot()})
}

func (s *Server) handleMeshes(c echo.Context) error {
	return c.JSON(http.StatusOK, s.scene.PosedMeshes())
}

func (s *Server) handleFrame(c echo.Context) error {
	return c.JSON(http.StatusOK, s.scene.Snapshot())
}

type evaluateRequest struct {
	Source string `json:"source"`
}

func (s *Server) handleEvaluate(c echo.Context) error {
	var req evaluateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res := s.builder.Build(req.Source)
	if !res.OK() {
		return c.JSON(http.StatusUnprocessableEntity, res)
	}
	// The live scene and the result /api/scene reports change together.
	s.mu.Lock()
	err := s.scene.Load(res)
	if err == nil {
		s.result = res
	}
	s.mu.Unlock()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	s.hub.broadcast(event{Type: eventScene})
	s.log.Info("scene reloaded", "meshes", len(res.Meshes))
	return c.JSON(http.StatusOK, res)
}

type resizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleResize(c echo.Context) error {
	var req resizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.scene.Resize(req.Width, req.Height); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, s.scene.Snapshot())
}

func (s *Server) handleTexture(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Blob(http.StatusOK, "image/png", s.texture)
}
