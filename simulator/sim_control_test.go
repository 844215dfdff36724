package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type recordingResizer struct{ sizes [][2]int }

func (r *recordingResizer) Resize(ctx context.Context, width, height int) error {
	r.sizes = append(r.sizes, [2]int{width, height})
	return nil
}

type fixedRandom struct{}

func (fixedRandom) Float64() float64 { return 0.25 }

func (fixedRandom) IntN(n int) int { return 0 }

func TestNewSimControl(t *testing.T) {
	c, err := NewSimControl("", 320, 200)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := c.Size(); w != 320 || h != 200 {
		t.Errorf("custom size = %dx%d", w, h)
	}

	c, err = NewSimControl("phone", 320, 200)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := c.Size(); w != 390 || h != 844 {
		t.Errorf("phone size = %dx%d", w, h)
	}

	if _, err := NewSimControl("watch", 0, 0); err == nil {
		t.Error("unknown scenario should fail")
	}
}

func TestScenarioSwitchAndReset(t *testing.T) {
	c, err := NewSimControl("", 320, 200)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.ApplyScenario(context.Background(), "hd"); err == nil {
		t.Error("unattached control should fail")
	}

	r := &recordingResizer{}
	c.Attach(r)
	if err := c.ApplyScenario(context.Background(), "tiny"); err != nil {
		t.Fatal(err)
	}
	c.SetFaults(SimFaults{TickPanic: true})
	if err := c.Reset(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(r.sizes) != 2 || r.sizes[0] != [2]int{64, 48} || r.sizes[1] != [2]int{320, 200} {
		t.Errorf("sizes = %v", r.sizes)
	}
	if c.Faults().TickPanic {
		t.Error("reset should clear faults")
	}
	if c.currentScenario.Load() != "custom" {
		t.Errorf("scenario = %v", c.currentScenario.Load())
	}
}

func TestFaultWrappers(t *testing.T) {
	c, err := NewSimControl("hd", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	rnd := c.Random(fixedRandom{})
	p := c.Presenter()

	if rnd.Float64() != 0.25 || p.Present(nil) != nil {
		t.Fatal("unarmed wrappers should pass through")
	}

	c.SetFaults(SimFaults{TickPanic: true, PresentFail: true})
	if p.Present(nil) == nil {
		t.Error("armed presenter should fail")
	}
	defer func() {
		if recover() == nil {
			t.Error("armed random should panic")
		}
	}()
	rnd.Float64()
}

func TestSimEndpoints(t *testing.T) {
	c, err := NewSimControl("", 320, 200)
	if err != nil {
		t.Fatal(err)
	}
	r := &recordingResizer{}
	c.Attach(r)
	mux := http.NewServeMux()
	registerSimEndpoints(mux, c)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sim/scenario/fullhd", nil))
	if rec.Code != http.StatusOK || len(r.sizes) != 1 || r.sizes[0] != [2]int{1920, 1080} {
		t.Fatalf("scenario: code=%d sizes=%v", rec.Code, r.sizes)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sim/scenario/nope", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown scenario code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sim/faults", strings.NewReader(`{"presentFail":true}`)))
	var faults SimFaults
	if err := json.NewDecoder(rec.Body).Decode(&faults); err != nil {
		t.Fatal(err)
	}
	if !faults.PresentFail || faults.TickPanic || !c.Faults().PresentFail {
		t.Errorf("faults = %+v", faults)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sim/scenarios", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"fullhd"`) {
		t.Errorf("scenarios: code=%d body=%s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sim/reset", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET reset code = %d", rec.Code)
	}
}

func TestDisplayAddr(t *testing.T) {
	tests := map[string]string{
		":8080":         "127.0.0.1:8080",
		"[::]:8080":     "127.0.0.1:8080",
		"10.0.0.2:8080": "10.0.0.2:8080",
	}
	for in, want := range tests {
		if got := displayAddr(in); got != want {
			t.Errorf("displayAddr(%q) = %q, want %q", in, got, want)
		}
	}
}
