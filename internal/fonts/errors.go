package fonts

import "fmt"

// ResourceLoadError reports that a font could not be fetched or parsed.
// It is the only failure the rain engine surfaces to its caller.
type ResourceLoadError struct {
	Family string
	Source string
	Err    error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("failed loading font %q from %q: %v", e.Family, e.Source, e.Err)
}

func (e *ResourceLoadError) Unwrap() error { return e.Err }
