//go:build !linux

package system

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// EnterGraphics is a no-op without Linux virtual terminals.
func EnterGraphics(l logger) (restore func()) { return func() {} }

// VTVisibility is always visible off Linux.
type VTVisibility struct{ VT int }

func NewVTVisibility() *VTVisibility { return &VTVisibility{} }

func (v *VTVisibility) Visible() bool { return true }
