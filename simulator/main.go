// The simulator runs the rain headless on a resizable virtual display and
// exposes the same control API as the device, plus /sim/* endpoints for
// display presets and fault injection.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rook-computer/matrixrain/internal/app"
	"github.com/rook-computer/matrixrain/internal/config"
	"github.com/rook-computer/matrixrain/internal/rain"
	"github.com/rook-computer/matrixrain/internal/render"
	"github.com/rook-computer/matrixrain/internal/web"
)

var (
	flagConfig    string
	flagDebug     bool
	flagListen    string
	flagDev       bool
	flagStaticDir string
	flagScenario  string
	flagWidth     int
	flagHeight    int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "simulator",
	Short: "Headless matrixrain with the control API",
	Long: `The simulator renders into an in-memory canvas instead of a framebuffer.
Watch it at http://<listen>/ (the control page polls /api/v1/frame.png).

Simulator-only endpoints:
  GET  /sim/scenarios        - list display presets
  POST /sim/scenario/<name>  - switch the virtual display to a preset
  POST /sim/faults           - {"tickPanic":bool,"presentFail":bool}
  POST /sim/reset            - clear faults and restore the startup size`,
	SilenceUsage: true,
	RunE:         runSimulator,
}

func init() {
	serverDefaults, err := web.DefaultServerConfigFromEnv(web.DefaultSimulatorListenAddr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "server config error:", err)
		serverDefaults = web.ServerConfig{ListenAddr: web.DefaultSimulatorListenAddr}
	}

	f := rootCmd.Flags()
	f.StringVar(&flagConfig, "config", "", "Path to config file")
	f.BoolVar(&flagDebug, "debug", false, "Enable debug logging and the per-second heartbeat")
	f.StringVar(&flagListen, "listen", serverDefaults.ListenAddr, "HTTP listen address; also "+web.EnvListenAddr)
	f.BoolVar(&flagDev, "dev", serverDefaults.DevMode, "Enable permissive CORS; also "+web.EnvDevMode)
	f.StringVar(&flagStaticDir, "static-dir", "", "Serve the control page from this directory instead of the embedded one")
	f.StringVar(&flagScenario, "scenario", "", "Startup display preset (overrides --width/--height)")
	f.IntVar(&flagWidth, "width", 0, "Virtual display width (default display.width)")
	f.IntVar(&flagHeight, "height", 0, "Virtual display height (default display.height)")
}

func runSimulator(_ *cobra.Command, _ []string) error {
	logger := app.NewLogger(os.Stderr, flagDebug)

	cfg, path, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if path == "" {
		path = "built-in defaults"
	}
	logger.Infof("main", "config: %s", path)

	width, height := cfg.Display.Width, cfg.Display.Height
	if flagWidth > 0 {
		width = flagWidth
	}
	if flagHeight > 0 {
		height = flagHeight
	}
	control, err := NewSimControl(flagScenario, width, height)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, app.Deps{
		Container: render.NewVirtualContainer(control.Size()),
		Presenter: control.Presenter(),
		Random:    control.Random(rain.NewRandom()),
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	a.Debug = flagDebug
	control.Attach(a)

	server := web.NewHTTPServer(web.ServerConfig{ListenAddr: flagListen, DevMode: flagDev}, web.APIV1Config{Controller: a})
	server.StaticDir = flagStaticDir
	server.Logger = logger
	server.Routes = func(mux *http.ServeMux) { registerSimEndpoints(mux, control) }
	if err := server.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = server.Stop() }()

	w, h := control.Size()
	logger.Infof("main", "simulator %dx%d, control page at http://%s/", w, h, displayAddr(server.Addr()))

	err = a.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func displayAddr(addr string) string {
	// Best-effort for display; don't attempt full URL parsing here.
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	if strings.HasPrefix(addr, "[::]:") {
		return "127.0.0.1" + strings.TrimPrefix(addr, "[::]")
	}
	return addr
}
