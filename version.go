package requesty

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build metadata, overridable with -ldflags "-X".
var (
	Version   = "v0.3.0"
	GitCommit = ""
)

const modulePath = "github.com/Limbus-Foundation/requesty"

// GetVersion describes the library build, e.g. "Requesty v0.3.0 (commit: abc123, go1.23.4)".
func GetVersion() string {
	commit := GitCommit
	if commit == "" {
		commit = "unknown"
	}
	return fmt.Sprintf("Requesty %s (commit: %s, %s)", moduleVersion(), commit, runtime.Version())
}

// UserAgent is the User-Agent HTTPTransport sends when a call sets none.
func UserAgent() string {
	return "requesty/" + moduleVersion()
}

// moduleVersion prefers the version recorded by the go tool when requesty is
// built as a dependency.
func moduleVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}
	for _, dep := range info.Deps {
		if dep.Path == modulePath && dep.Version != "" && dep.Version != "(devel)" {
			return dep.Version
		}
	}
	return Version
}
