package fonts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rook-computer/matrixrain/internal/assets"
)

const (
	builtinPrefix = "builtin:"

	// maxRemoteFontBytes caps how much of a remote font file is read.
	maxRemoteFontBytes = 32 << 20
)

// Loader fetches the raw bytes of a font file identified by a locator.
type Loader interface {
	Load(ctx context.Context, locator string) ([]byte, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, locator string) ([]byte, error)

func (f LoaderFunc) Load(ctx context.Context, locator string) ([]byte, error) { return f(ctx, locator) }

// DefaultLoader resolves three kinds of locators:
//   - "builtin:<name>" for fonts embedded in the binary
//   - "http://..." and "https://..." fetched with Client
//   - anything else is read from the filesystem
type DefaultLoader struct {
	Client *http.Client
}

func NewDefaultLoader() *DefaultLoader {
	return &DefaultLoader{Client: &http.Client{Timeout: 30 * time.Second}}
}

func (l *DefaultLoader) Load(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case locator == "":
		return nil, fmt.Errorf("empty font locator")
	case strings.HasPrefix(locator, builtinPrefix):
		name := strings.TrimPrefix(locator, builtinPrefix)
		data, ok := assets.BuiltinFont(name)
		if !ok {
			return nil, fmt.Errorf("unknown builtin font %q", name)
		}
		return data, nil
	case strings.HasPrefix(locator, "http://"), strings.HasPrefix(locator, "https://"):
		return l.fetch(ctx, locator)
	default:
		return os.ReadFile(locator)
	}
}

func (l *DefaultLoader) fetch(ctx context.Context, url string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxRemoteFontBytes))
}
