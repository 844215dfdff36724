package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rook-computer/matrixrain/internal/app"
	"github.com/rook-computer/matrixrain/internal/config"
	"github.com/rook-computer/matrixrain/internal/fonts"
	"github.com/rook-computer/matrixrain/internal/rain"
	"github.com/rook-computer/matrixrain/internal/render"
	"github.com/rook-computer/matrixrain/internal/state"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
	maxBodyBytes  = 64 << 10
)

// Controller is the host surface the API drives. *app.App implements it.
type Controller interface {
	Status() state.State
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Pause(ctx context.Context) (rain.State, error)
	Clear(ctx context.Context) error
	SetOptions(ctx context.Context, symbols []string, palette render.Palette) error
	Resize(ctx context.Context, width, height int) error
	SetVisible(ctx context.Context, visible bool) error
	StartSplash(ctx context.Context) error
	StopSplash(ctx context.Context) error
	Frame(ctx context.Context) (*image.RGBA, error)
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type pauseResponse struct {
	State string `json:"state"`
}

type splashResponse struct {
	Running bool   `json:"running"`
	Visible bool   `json:"visible"`
	Drawn   uint64 `json:"drawn"`
}

type statusResponse struct {
	Phase     string         `json:"phase"`
	Frames    uint64         `json:"frames"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Columns   int            `json:"columns"`
	Font      string         `json:"font"`
	Error     string         `json:"error,omitempty"`
	Splash    splashResponse `json:"splash"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type optionsRequest struct {
	Symbols []string `json:"symbols"`
	Colors  []string `json:"colors"`
}

func apiV1Router(ctrl Controller, controlURL string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) { handleStatus(w, r, ctrl) })
	mux.HandleFunc("/start", postAction(ctrl.Start))
	mux.HandleFunc("/stop", postAction(ctrl.Stop))
	mux.HandleFunc("/clear", postAction(ctrl.Clear))
	mux.HandleFunc("/splash/start", postAction(ctrl.StartSplash))
	mux.HandleFunc("/splash/stop", postAction(ctrl.StopSplash))
	mux.HandleFunc("/pause", func(w http.ResponseWriter, r *http.Request) { handlePause(w, r, ctrl) })
	mux.HandleFunc("/options", func(w http.ResponseWriter, r *http.Request) { handleOptions(w, r, ctrl) })
	mux.HandleFunc("/resize", func(w http.ResponseWriter, r *http.Request) { handleResize(w, r, ctrl) })
	mux.HandleFunc("/visibility", func(w http.ResponseWriter, r *http.Request) { handleVisibility(w, r, ctrl) })
	mux.HandleFunc("/frame.png", func(w http.ResponseWriter, r *http.Request) { handleFrame(w, r, ctrl) })
	mux.HandleFunc("/qr.png", func(w http.ResponseWriter, r *http.Request) { handleQR(w, r, controlURL) })
	return mux
}

func postAction(action func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		if err := action(r.Context()); err != nil {
			writeControlError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

func handleStatus(w http.ResponseWriter, r *http.Request, ctrl Controller) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	s := ctrl.Status()
	writeJSON(w, http.StatusOK, statusResponse{
		Phase:   s.Phase.String(),
		Frames:  s.Frames,
		Width:   s.Surface.Width,
		Height:  s.Surface.Height,
		Columns: s.Surface.Columns,
		Font:    s.Font,
		Error:   s.Err,
		Splash: splashResponse{
			Running: s.Splash.Running,
			Visible: s.Splash.Visible,
			Drawn:   s.Splash.Drawn,
		},
		UpdatedAt: s.UpdatedAt,
	})
}

func handlePause(w http.ResponseWriter, r *http.Request, ctrl Controller) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	s, err := ctrl.Pause(r.Context())
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pauseResponse{State: s.String()})
}

// handleOptions accepts either a JSON body or "?symbols=a,b". A present but
// blank symbols value switches back to random glyphs.
func handleOptions(w http.ResponseWriter, r *http.Request, ctrl Controller) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var req optionsRequest
	query := r.URL.Query()
	if _, ok := query["symbols"]; ok {
		req.Symbols = config.SymbolsFromQuery(query)
		if req.Symbols == nil {
			req.Symbols = []string{}
		}
	} else {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_body", err.Error())
			return
		}
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				writeAPIError(w, http.StatusBadRequest, "invalid_body", err.Error())
				return
			}
		}
	}

	palette, err := render.ParsePalette(req.Colors)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_colors", err.Error())
		return
	}
	if err := ctrl.SetOptions(r.Context(), req.Symbols, palette); err != nil {
		writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func handleResize(w http.ResponseWriter, r *http.Request, ctrl Controller) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	width, errW := strconv.Atoi(r.URL.Query().Get("width"))
	height, errH := strconv.Atoi(r.URL.Query().Get("height"))
	if errW != nil || errH != nil || width < 0 || height < 0 {
		writeAPIError(w, http.StatusBadRequest, "invalid_size", "width and height must be non-negative integers")
		return
	}
	if err := ctrl.Resize(r.Context(), width, height); err != nil {
		writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func handleVisibility(w http.ResponseWriter, r *http.Request, ctrl Controller) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	visible, err := strconv.ParseBool(r.URL.Query().Get("visible"))
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_visible", "visible must be a boolean")
		return
	}
	if err := ctrl.SetVisible(r.Context(), visible); err != nil {
		writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func handleFrame(w http.ResponseWriter, r *http.Request, ctrl Controller) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	img, err := ctrl.Frame(r.Context())
	if err != nil {
		writeControlError(w, err)
		return
	}
	writePNG(w, img)
}

// handleQR encodes the control page URL so a phone can reach it. Without a
// configured URL the request's Host is used.
func handleQR(w http.ResponseWriter, r *http.Request, controlURL string) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	size := defaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxQRSize {
			writeAPIError(w, http.StatusBadRequest, "invalid_size", "size must be between 1 and 1024")
			return
		}
		size = parsed
	}
	payload := controlURL
	if payload == "" {
		payload = "http://" + r.Host + "/"
	}
	img, err := render.ControlQRCode(payload, size)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "qr_failed", err.Error())
		return
	}
	writePNG(w, img)
}

func writeControlError(w http.ResponseWriter, err error) {
	var loadErr *fonts.ResourceLoadError
	switch {
	case errors.As(err, &loadErr):
		writeAPIError(w, http.StatusBadGateway, "resource_load_failed", err.Error())
	case errors.Is(err, app.ErrNotResizable):
		writeAPIError(w, http.StatusConflict, "not_resizable", err.Error())
	case errors.Is(err, app.ErrVisibilityFixed):
		writeAPIError(w, http.StatusConflict, "visibility_fixed", err.Error())
	case errors.Is(err, app.ErrNotRunning), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeAPIError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	default:
		writeAPIError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func writePNG(w http.ResponseWriter, img image.Image) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
