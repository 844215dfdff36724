package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rook-computer/matrixrain/internal/rain"
	"github.com/rook-computer/matrixrain/internal/render"
)

// SimFaults inject failures into the render loop.
type SimFaults struct {
	TickPanic   bool `json:"tickPanic"`
	PresentFail bool `json:"presentFail"`
}

type displaySize struct{ Width, Height int }

// scenarios are display presets the container can be switched to at runtime.
var scenarios = map[string]displaySize{
	"hd":     {1280, 720},
	"fullhd": {1920, 1080},
	"phone":  {390, 844},
	"tiny":   {64, 48},
	"zero":   {0, 0},
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type resizer interface {
	Resize(ctx context.Context, width, height int) error
}

type SimControl struct {
	startup         displaySize
	startupScenario string
	currentScenario atomic.Value // string

	target resizer
	faults struct {
		mu sync.RWMutex
		v  SimFaults
	}
}

// NewSimControl starts from a named scenario, or from width x height when
// startupScenario is empty.
func NewSimControl(startupScenario string, width, height int) (*SimControl, error) {
	startupScenario = strings.TrimSpace(startupScenario)
	size := displaySize{width, height}
	if startupScenario != "" {
		s, ok := scenarios[startupScenario]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q (known: %s)", startupScenario, strings.Join(scenarioNames(), ", "))
		}
		size = s
	} else {
		startupScenario = "custom"
	}
	c := &SimControl{startup: size, startupScenario: startupScenario}
	c.currentScenario.Store(startupScenario)
	return c, nil
}

func (c *SimControl) Size() (int, int) { return c.startup.Width, c.startup.Height }

// Attach sets the host that scenario switches resize.
func (c *SimControl) Attach(target resizer) { c.target = target }

func (c *SimControl) ApplyScenario(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	var size displaySize
	if name == "" || name == c.startupScenario {
		name, size = c.startupScenario, c.startup
	} else {
		s, ok := scenarios[name]
		if !ok {
			return fmt.Errorf("unknown scenario %q", name)
		}
		size = s
	}
	if c.target == nil {
		return errors.New("simulator not attached")
	}
	if err := c.target.Resize(ctx, size.Width, size.Height); err != nil {
		return err
	}
	c.currentScenario.Store(name)
	return nil
}

func (c *SimControl) Reset(ctx context.Context) error {
	c.SetFaults(SimFaults{})
	return c.ApplyScenario(ctx, c.startupScenario)
}

func (c *SimControl) Faults() SimFaults {
	c.faults.mu.RLock()
	defer c.faults.mu.RUnlock()
	return c.faults.v
}

func (c *SimControl) SetFaults(v SimFaults) {
	c.faults.mu.Lock()
	c.faults.v = v
	c.faults.mu.Unlock()
}

// Random wraps next so an armed TickPanic fault panics inside the engine tick.
func (c *SimControl) Random(next rain.Random) rain.Random {
	return simRandom{control: c, next: next}
}

type simRandom struct {
	control *SimControl
	next    rain.Random
}

func (r simRandom) Float64() float64 {
	if r.control.Faults().TickPanic {
		panic("simulated tick panic")
	}
	return r.next.Float64()
}

func (r simRandom) IntN(n int) int { return r.next.IntN(n) }

// Presenter drops frames, failing while PresentFail is armed.
func (c *SimControl) Presenter() render.Presenter { return simPresenter{control: c} }

type simPresenter struct{ control *SimControl }

func (p simPresenter) Present(*image.RGBA) error {
	if p.control.Faults().PresentFail {
		return errors.New("simulated present failure")
	}
	return nil
}

func (p simPresenter) Close() error { return nil }

func registerSimEndpoints(mux *http.ServeMux, control *SimControl) {
	mux.HandleFunc("/sim/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := control.Reset(r.Context()); err != nil {
			writeSimError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true, "scenario": control.currentScenario.Load()})
	})

	mux.HandleFunc("/sim/scenarios", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeSimJSON(w, http.StatusOK, map[string]any{"current": control.currentScenario.Load(), "available": scenarioNames()})
	})

	mux.HandleFunc("/sim/scenario/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/sim/scenario/")
		name = strings.Trim(name, "/")
		if err := control.ApplyScenario(r.Context(), name); err != nil {
			writeSimError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true, "scenario": control.currentScenario.Load()})
	})

	mux.HandleFunc("/sim/faults", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeSimJSON(w, http.StatusOK, control.Faults())
			return
		case http.MethodPost:
			var patch struct {
				TickPanic   *bool `json:"tickPanic"`
				PresentFail *bool `json:"presentFail"`
			}
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeSimError(w, http.StatusBadRequest, "invalid json")
				return
			}
			current := control.Faults()
			if patch.TickPanic != nil {
				current.TickPanic = *patch.TickPanic
			}
			if patch.PresentFail != nil {
				current.PresentFail = *patch.PresentFail
			}
			control.SetFaults(current)
			writeSimJSON(w, http.StatusOK, current)
			return
		default:
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
	})
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]any{"error": message})
}
