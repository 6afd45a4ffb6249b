package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-reflax-raytracer/pkg/app"
	"github.com/df07/go-reflax-raytracer/pkg/config"
	"github.com/df07/go-reflax-raytracer/pkg/core"
	"github.com/df07/go-reflax-raytracer/pkg/loaders"
	"github.com/df07/go-reflax-raytracer/pkg/renderer"
	"github.com/df07/go-reflax-raytracer/pkg/scene"
	"github.com/df07/go-reflax-raytracer/web/server"
)

// publishInterval limits how often the live image is copied for the display
const publishInterval = 50 * time.Millisecond

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:          "reflax",
		Short:        "Interactive progressive ray tracer",
		Long:         "Explore a ray traced scene in real time from the browser and save supersampled screenshots.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultFile+")")

	rootCmd.AddCommand(
		serveCmd(&cfgFile),
		snapshotCmd(&cfgFile),
		initCmd(&cfgFile),
	)
	return rootCmd
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, _ := cfg.LogLevel()
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
}

// newRender builds the default scene and a renderer looking at it
func newRender(cfg *config.Config) (*renderer.Render, error) {
	s, err := scene.NewDefaultScene(cfg.Paths.Textures)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'reflax init' to generate textures)", err)
	}

	view := scene.DefaultView
	camera := renderer.NewCamera(view.Eye, view.LookAt, view.FOV)
	rng := core.NewRandomFromEntropy()
	if cfg.Render.Seed != 0 {
		rng = core.NewRandom(cfg.Render.Seed)
	}
	return renderer.NewRender(s, camera, rng), nil
}

func serveCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the interactive renderer with a web display",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			if err := os.MkdirAll(cfg.Paths.Screenshots, 0755); err != nil {
				return fmt.Errorf("failed to create screenshot directory: %w", err)
			}

			render, err := newRender(cfg)
			if err != nil {
				return err
			}

			srv := server.NewServer(cfg.Server.Port, log)
			a := app.New(render, cfg.AppSettings(), cfg.Window.Width, cfg.Window.Height,
				app.WithLogger(srv.Logger()))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Run(ctx) })
			g.Go(func() error { return runLoop(ctx, a, srv) })
			return g.Wait()
		},
	}
}

// runLoop is the single control loop: it applies queued input, ticks the
// App and publishes the display snapshot until ctx is done
func runLoop(ctx context.Context, a *app.App, srv *server.Server) error {
	var (
		lastPublish time.Time
		lastFrame   = a.Image()
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

	drain:
		for {
			select {
			case ev := <-srv.Events():
				ev.Apply(a)
			default:
				break drain
			}
		}

		// a failed save is logged by the App and live rendering resumes
		done, _ := a.Tick()

		if done || time.Since(lastPublish) >= publishInterval {
			// the screenshot image is not shown while it renders
			if a.State().Kind() == app.CameraControl {
				lastFrame = a.Image()
			}
			srv.Publish(server.Snapshot{
				Frame:  lastFrame,
				Status: a.Status(),
				Stats:  a.Render().Stats(),
			}, done)
			lastPublish = time.Now()
		}
	}
}

func snapshotCmd(cfgFile *string) *cobra.Command {
	var (
		resolution, samples int
		width, height       int
		output              string
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render one still image of the default view to a bitmap",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			if resolution < 1 || resolution > len(app.Resolutions) {
				return fmt.Errorf("resolution must be between 1 and %d, got %d", len(app.Resolutions), resolution)
			}
			if samples < 1 || samples > len(app.SampleRates) {
				return fmt.Errorf("samples must be between 1 and %d, got %d", len(app.SampleRates), samples)
			}
			res := app.Resolutions[resolution-1]
			if width > 0 && height > 0 {
				res = app.Resolution{Width: width, Height: height}
			}
			rate := app.SampleRates[samples-1].Rate

			if output == "" {
				output = filepath.Join(cfg.Paths.Screenshots, fmt.Sprintf("screenshot_%08X.bmp", time.Now().UnixNano()))
			}

			render, err := newRender(cfg)
			if err != nil {
				return err
			}

			logger := core.NewZerologLogger(log)
			start := time.Now()
			render.Resize(res.Width, res.Height)
			render.Begin(cfg.Render.ScreenshotReflections, rate, false)
			for next := 10.0; render.Advance(res.Width); {
				if p := render.Progress(); p >= next {
					logger.Printf("Rendering %s: %.0f%%\n", filepath.Base(output), p)
					next += 10
				}
			}

			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			if err := loaders.SaveBMP(output, render.Image()); err != nil {
				return err
			}

			stats := render.Stats()
			log.Info().
				Str("file", output).
				Int("width", res.Width).
				Int("height", res.Height).
				Int("ssaa", rate).
				Int64("rays", stats.Rays).
				Dur("elapsed", time.Since(start)).
				Msg("Saved snapshot")
			return nil
		},
	}

	cmd.Flags().IntVar(&resolution, "resolution", 1, "screenshot resolution option (1-9)")
	cmd.Flags().IntVar(&samples, "samples", 1, "supersampling rate option (1-9)")
	cmd.Flags().IntVar(&width, "width", 0, "custom width, overrides --resolution together with --height")
	cmd.Flags().IntVar(&height, "height", 0, "custom height, overrides --resolution together with --width")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output bitmap file (default is a new file in the screenshot directory)")
	return cmd
}

func initCmd(cfgFile *string) *cobra.Command {
	var tileSize int

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration and generate the scene textures",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *cfgFile
			if path == "" {
				path = config.DefaultFile
			}

			if err := config.WriteDefault(path); err != nil {
				if !errors.Is(err, fs.ErrExist) {
					return err
				}
				cmd.Printf("Keeping existing config %s\n", path)
			} else {
				cmd.Printf("Wrote config %s\n", path)
			}

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			if err := scene.WriteDefaultTextures(cfg.Paths.Textures, tileSize); err != nil {
				return err
			}
			cmd.Printf("Wrote textures to %s\n", cfg.Paths.Textures)
			return nil
		},
	}

	cmd.Flags().IntVar(&tileSize, "tile-size", 256, "edge length of one skybox face in pixels")
	return cmd
}
