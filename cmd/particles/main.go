package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/gekko3d/particles/app"
	"github.com/gekko3d/particles/assets"
	"github.com/gekko3d/particles/config"
	"github.com/gekko3d/particles/core"
	"github.com/gekko3d/particles/gpu"
	"github.com/gekko3d/particles/logging"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	// GLFW and the surface must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "particles",
		Short:        "rotating particle field with 3D text",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	opts.register(rootCmd.PersistentFlags())

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	rootCmd.AddCommand(configCmd)

	return rootCmd
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewDefaultLogger("particles", cfg.Debug)

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()

	gpuCtx, err := gpu.NewContext(window)
	if err != nil {
		return err
	}

	host := NewGLFWHost(window)
	width, height, ratio := host.Size()
	cfg.Window.Width, cfg.Window.Height = width, height

	server := assets.NewServer()
	renderer := gpu.NewRenderer(gpuCtx, server, logger)
	c := cfg.Render.ClearColor
	renderer.ClearColor.R, renderer.ClearColor.G, renderer.ClearColor.B, renderer.ClearColor.A = c[0], c[1], c[2], c[3]

	application, err := app.NewAppBuilder(cfg).
		WithRenderer(renderer).
		WithHost(host).
		WithLogger(logger).
		WithAssets(server).
		WithClock(core.NewClock(glfw.GetTime)).
		WithPixelRatio(ratio).
		Build()
	if err != nil {
		gpuCtx.Release()
		return err
	}
	defer application.Dispose()

	if err := application.Init(ctx); err != nil {
		return err
	}
	host.Bind(application)

	logger.Infof("rendering %d particles at %dx%d (pixel ratio %.2f)",
		cfg.Particles.Count, width, height, application.Viewport.ClampedPixelRatio(cfg.Render.MaxPixelRatio))

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
