// matrixrain draws Matrix-style digital rain on the Linux framebuffer.
//
// Usage:
//
//	matrixrain                      - run on /dev/fb0 with the control API on :80
//	matrixrain --config rain.yaml   - use an explicit config file
//	matrixrain --listen ""          - run without the control API
//
// Keys: P pause, C clear, S start/stop, F4 or Q exit.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rook-computer/matrixrain/internal/app"
	"github.com/rook-computer/matrixrain/internal/buttons"
	"github.com/rook-computer/matrixrain/internal/config"
	"github.com/rook-computer/matrixrain/internal/render"
	"github.com/rook-computer/matrixrain/internal/system"
	"github.com/rook-computer/matrixrain/internal/web"
)

const envStdioLog = "MATRIXRAIN_STDIO_LOG"

var (
	flagConfig      string
	flagDebug       bool
	flagStdioLog    string
	flagListen      string
	flagDev         bool
	flagStaticDir   string
	flagFramebuffer string
	flagNoSplash    bool
	flagFPS         int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "matrixrain",
	Short: "Digital rain on the framebuffer",
	Long: `matrixrain renders falling glyph columns on the Linux framebuffer and
flashes short splash texts on top. It is controlled from the keyboard and,
unless --listen is empty, through an HTTP API under /api/v1/.

Configuration is read from --config, then $XDG_CONFIG_HOME/matrixrain/config.yaml,
then ./configs/matrixrain.yaml, then built-in defaults.`,
	SilenceUsage: true,
	RunE:         runDevice,
}

func init() {
	serverDefaults, err := web.DefaultServerConfigFromEnv(web.DefaultDeviceListenAddr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "server config error:", err)
		serverDefaults = web.ServerConfig{ListenAddr: web.DefaultDeviceListenAddr}
	}

	f := rootCmd.Flags()
	f.StringVar(&flagConfig, "config", "", "Path to config file")
	f.BoolVar(&flagDebug, "debug", false, "Enable debug logging and the per-second heartbeat")
	f.StringVar(&flagStdioLog, "stdio-log", os.Getenv(envStdioLog), "Redirect stdout+stderr (including panics) to this file; also "+envStdioLog)
	f.StringVar(&flagListen, "listen", serverDefaults.ListenAddr, "HTTP listen address, empty disables the API; also "+web.EnvListenAddr)
	f.BoolVar(&flagDev, "dev", serverDefaults.DevMode, "Enable permissive CORS; also "+web.EnvDevMode)
	f.StringVar(&flagStaticDir, "static-dir", "", "Serve the control page from this directory instead of the embedded one")
	f.StringVar(&flagFramebuffer, "framebuffer", "", "Framebuffer device (overrides display.framebuffer)")
	f.BoolVar(&flagNoSplash, "no-splash", false, "Disable the splash overlay")
	f.IntVar(&flagFPS, "fps", 0, "Frame rate (overrides fps)")
}

func runDevice(_ *cobra.Command, _ []string) error {
	// Best-effort: the console is in graphics mode while we run, so panics are
	// only readable from a file.
	if flagStdioLog != "" {
		if err := redirectStdIO(flagStdioLog); err != nil {
			fmt.Fprintln(os.Stderr, "stdio log redirect error:", err)
		}
	}

	logger := app.NewLogger(os.Stderr, flagDebug)

	cfg, path, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if path == "" {
		path = "built-in defaults"
	}
	logger.Infof("main", "config: %s", path)
	if err := applyOverrides(&cfg); err != nil {
		return err
	}

	fb, err := render.OpenFramebuffer(cfg.Display.Framebuffer)
	if err != nil {
		return err
	}
	defer fb.Close()
	w, h := fb.Size()
	logger.Infof("render", "framebuffer %s %dx%d", cfg.Display.Framebuffer, w, h)

	restore := system.EnterGraphics(logger)
	defer restore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, app.Deps{
		Container:  fb,
		Presenter:  fb,
		Buttons:    buttons.NewKeyboard(logger),
		Visibility: system.NewVTVisibility(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	a.Debug = flagDebug

	var server web.Server = &web.NoopServer{}
	if flagListen != "" {
		httpServer := web.NewHTTPServer(web.ServerConfig{ListenAddr: flagListen, DevMode: flagDev}, web.APIV1Config{Controller: a})
		httpServer.StaticDir = flagStaticDir
		httpServer.Logger = logger
		server = httpServer
	}
	if err := server.Start(ctx); err != nil {
		// The rain is still useful without remote control.
		logger.Errorf("web", "server start failed: %v", err)
	}
	defer func() { _ = server.Stop() }()

	err = a.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func applyOverrides(cfg *config.Config) error {
	if flagFramebuffer != "" {
		cfg.Display.Framebuffer = flagFramebuffer
	}
	if flagNoSplash {
		cfg.Splash.Enable = false
	}
	if flagFPS != 0 {
		cfg.FPS = flagFPS
	}
	return cfg.Validate()
}
