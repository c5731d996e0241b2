// Package driver is the process-wide page driver registration point. Concrete
// browser drivers live outside this module and register themselves here,
// typically from an init func behind a blank import in the binary.
package driver

import (
	"sync"

	"github.com/rbright/usher/internal/page"
)

var (
	mu       sync.Mutex
	registry page.Factory
)

// Register installs the factory returned by Default. The last registration
// wins.
func Register(f page.Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry = f
}

// Default returns the registered page driver, or nil when none is linked in.
func Default() page.Factory {
	mu.Lock()
	defer mu.Unlock()
	return registry
}
