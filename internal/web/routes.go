package web

import (
	"net/http"
)

type APIV1Config struct {
	Controller Controller

	// ControlURL is encoded by /qr.png. Empty means derive it from the request.
	ControlURL string
}

// RegisterAPIV1 registers the public API routes under /api/v1/.
func RegisterAPIV1(mux *http.ServeMux, cfg APIV1Config) {
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1Router(cfg.Controller, cfg.ControlURL)))
}

// RegisterUI serves either embedded UI assets or a directory.
func RegisterUI(mux *http.ServeMux, staticDir string) {
	mux.Handle("/", StaticUIHandler(staticDir))
}

// NewDefaultMux builds the standard mux used by both the device and simulator:
// - /api/v1/* for the API
// - / for the control page
func NewDefaultMux(staticDir string, cfg APIV1Config) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterAPIV1(mux, cfg)
	RegisterUI(mux, staticDir)
	return mux
}
