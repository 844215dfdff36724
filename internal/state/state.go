package state

import (
	"sync"
	"time"
)

type Phase int

const (
	STOPPED Phase = iota
	RUNNING
	PAUSED
	ERROR
)

func (p Phase) String() string {
	switch p {
	case RUNNING:
		return "running"
	case PAUSED:
		return "paused"
	case ERROR:
		return "error"
	default:
		return "stopped"
	}
}

type SurfaceInfo struct {
	Width   int
	Height  int
	Columns int
}

type SplashInfo struct {
	Running bool
	Visible bool
	Drawn   uint64
}

type State struct {
	Phase     Phase
	Frames    uint64
	Surface   SurfaceInfo
	Splash    SplashInfo
	Font      string
	Err       string
	UpdatedAt time.Time
}

// Store holds the latest status published by the render loop.
// It is read from other goroutines (HTTP handlers, logging).
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Phase: STOPPED}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	store.state.UpdatedAt = time.Now()
	store.mu.Unlock()
}

// SetError records err and moves to ERROR. A nil err clears the message only.
func (store *Store) SetError(err error) {
	store.mu.Lock()
	if err == nil {
		store.state.Err = ""
	} else {
		store.state.Err = err.Error()
		store.state.Phase = ERROR
	}
	store.state.UpdatedAt = time.Now()
	store.mu.Unlock()
}

func (store *Store) SetFont(name string) {
	store.mu.Lock()
	store.state.Font = name
	store.mu.Unlock()
}

// UpdateFrame publishes per-frame counters.
func (store *Store) UpdateFrame(frames uint64, surface SurfaceInfo) {
	store.mu.Lock()
	store.state.Frames = frames
	store.state.Surface = surface
	store.state.UpdatedAt = time.Now()
	store.mu.Unlock()
}

func (store *Store) UpdateSplash(splash SplashInfo) {
	store.mu.Lock()
	store.state.Splash = splash
	store.mu.Unlock()
}
