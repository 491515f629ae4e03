package platform

import (
	"fmt"
	"runtime"

	"golang.org/x/exp/slices"
)

// Platform defines the interface for target-specific tool resolution
type Platform interface {
	// GetName returns the platform name as reported by GOOS
	GetName() string

	// GetExecutableSuffix returns the file suffix of native executables
	GetExecutableSuffix() string
}

var platforms = make(map[string]Platform)

// Register adds a platform to the registry
func Register(p Platform) {
	platforms[p.GetName()] = p
}

// Get returns a platform by name
func Get(name string) (Platform, error) {
	p, ok := platforms[name]
	if !ok {
		return nil, fmt.Errorf("unsupported platform: %s", name)
	}
	return p, nil
}

// Current returns the platform the binary was built for. Unregistered
// Unix-like systems fall back to the POSIX conventions.
func Current() Platform {
	if p, err := Get(runtime.GOOS); err == nil {
		return p
	}
	return &Posix{name: runtime.GOOS}
}

// GetSupportedPlatforms returns a sorted list of supported platform names
func GetSupportedPlatforms() []string {
	names := make([]string, 0, len(platforms))
	for name := range platforms {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
