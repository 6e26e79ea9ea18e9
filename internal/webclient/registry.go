package webclient

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/chromedp"

	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
)

// BackendConstructor constructs a WebClient from config.
type BackendConstructor func(cfg Config, logger interfaces.Logger) (WebClient, error)

var (
	mu       sync.RWMutex
	registry = map[string]BackendConstructor{}
)

// RegisterBackend registers a named backend constructor. Names are
// lower-cased; registering an existing name overwrites it.
func RegisterBackend(name string, ctor BackendConstructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = ctor
}

// New constructs the configured backend. It returns an error naming the
// available backends when the requested one is unknown.
func New(cfg Config, logger interfaces.Logger) (WebClient, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = "nethttp"
	}
	mu.RLock()
	ctor, ok := registry[backend]
	mu.RUnlock()
	if !ok || ctor == nil {
		return nil, fmt.Errorf("webclient backend %q not registered: available=%v", backend, ListBackends())
	}
	wc, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("constructing webclient backend %q: %w", backend, err)
	}
	if wc == nil {
		return nil, errors.New("webclient constructor returned nil")
	}
	return wc, nil
}

// ListBackends returns the registered backend names.
func ListBackends() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}

func init() {
	RegisterBackend("nethttp", func(cfg Config, logger interfaces.Logger) (WebClient, error) {
		return NewNetHTTPClient(cfg.Timeout, logger, nil), nil
	})

	RegisterBackend("chromedp", func(cfg Config, logger interfaces.Logger) (WebClient, error) {
		var opts []chromedp.ExecAllocatorOption
		if cfg.Headless != nil && !*cfg.Headless {
			opts = append(opts, chromedp.Flag("headless", false))
		}
		return NewChromeDPClient(cfg.IdleAfter, logger, opts...)
	})
}
