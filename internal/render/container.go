package render

// VirtualContainer is a Container whose size is set by the host. SetSize
// notifies subscribers synchronously, so callers must stay on the goroutine
// that drives the engine.
type VirtualContainer struct {
	width, height int
	nextID        int
	subs          map[int]func()
}

func NewVirtualContainer(width, height int) *VirtualContainer {
	return &VirtualContainer{width: clampDim(width), height: clampDim(height), subs: make(map[int]func())}
}

func (v *VirtualContainer) Size() (int, int) { return v.width, v.height }

// SetSize updates the size and notifies subscribers when it changed.
func (v *VirtualContainer) SetSize(width, height int) {
	width, height = clampDim(width), clampDim(height)
	if width == v.width && height == v.height {
		return
	}
	v.width, v.height = width, height
	for _, fn := range v.snapshotSubs() {
		fn()
	}
}

func (v *VirtualContainer) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	return func() { delete(v.subs, id) }
}

// Subscribers reports how many listeners are attached.
func (v *VirtualContainer) Subscribers() int { return len(v.subs) }

func (v *VirtualContainer) snapshotSubs() []func() {
	out := make([]func(), 0, len(v.subs))
	for _, fn := range v.subs {
		out = append(out, fn)
	}
	return out
}
