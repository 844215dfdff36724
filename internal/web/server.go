package web

import "context"

// Server is what the binaries start next to the render loop.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
}

type NoopServer struct{}

func (n *NoopServer) Start(ctx context.Context) error { return nil }
func (n *NoopServer) Stop() error                     { return nil }
