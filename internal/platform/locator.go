package platform

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Mode is the deployment mode the tool binaries are resolved for
type Mode string

const (
	// ModeDevelopment trusts the ambient PATH to find the tool
	ModeDevelopment Mode = "development"
	// ModePackaged uses the binaries bundled next to the application
	ModePackaged Mode = "packaged"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDevelopment, ModePackaged:
		return m, nil
	case "":
		return ModeDevelopment, nil
	default:
		return "", errors.Errorf("unsupported mode: %s (supported: %s, %s)", s, ModeDevelopment, ModePackaged)
	}
}

// Locator resolves the executable for an external tool name
type Locator struct {
	Mode         Mode
	Platform     Platform
	ResourcesDir string
}

// NewLocator returns a locator for the current platform. An empty
// resourcesDir falls back to DefaultResourcesDir.
func NewLocator(mode Mode, resourcesDir string) *Locator {
	if resourcesDir == "" {
		resourcesDir = DefaultResourcesDir()
	}
	return &Locator{
		Mode:         mode,
		Platform:     Current(),
		ResourcesDir: resourcesDir,
	}
}

// Resolve returns the bare tool name in development mode, and the bundled
// path <resources>/bin/<tool><suffix> in packaged mode. It does not check
// that the result exists.
func (l *Locator) Resolve(tool string) string {
	if l.Mode != ModePackaged {
		return tool
	}
	plat := l.Platform
	if plat == nil {
		plat = Current()
	}
	return filepath.Join(l.ResourcesDir, "bin", tool+plat.GetExecutableSuffix())
}

// RequiresExistenceCheck reports whether resolved paths must be verified
// before spawning. Development mode lets the OS lookup fail on its own.
func (l *Locator) RequiresExistenceCheck() bool {
	return l.Mode == ModePackaged
}

// DefaultResourcesDir is the resources directory beside the running binary
func DefaultResourcesDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "resources"
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "resources")
}
