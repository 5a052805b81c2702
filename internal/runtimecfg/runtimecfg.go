// Package runtimecfg captures the deployment-time backend overrides that are
// substituted into the environment at container start. Values left as literal
// ${NAME} markers by an unsubstituted template are treated as absent.
package runtimecfg

import (
	"os"
	"strconv"
	"strings"
)

// Names of the substitution inputs supplied at deployment time.
const (
	URLVar  = "BACKEND_URL"
	PortVar = "BACKEND_PORT"
)

// Runtime holds the injected backend overrides for the life of the process.
// Written once at startup, read-only afterwards. Zero values mean "absent,
// use fallback" — never "use empty string".
type Runtime struct {
	BackendURL  string
	BackendPort int
}

// HasURL reports whether a real backend URL was injected.
func (r Runtime) HasURL() bool { return r.BackendURL != "" }

// HasPort reports whether a real backend port was injected.
func (r Runtime) HasPort() bool { return r.BackendPort != 0 }

// Inject evaluates the two raw substitution inputs independently and returns
// the resulting runtime configuration. Malformed operator input never fails:
// a value that is empty, still in placeholder form, or (for the port) not an
// integer is silently absent.
func Inject(rawURL, rawPort string) Runtime {
	var rt Runtime

	if v, ok := injected(rawURL, URLVar); ok {
		rt.BackendURL = v
	}
	if v, ok := injected(rawPort, PortVar); ok {
		if port, err := strconv.Atoi(v); err == nil && port != 0 {
			rt.BackendPort = port
		}
	}

	return rt
}

// FromEnv reads the substitution inputs from the process environment.
// Called exactly once, before any reader of the result exists.
func FromEnv() Runtime {
	return Inject(os.Getenv(URLVar), os.Getenv(PortVar))
}

// injected reports whether raw carries a real value for the named input.
// The placeholder marker is reconstructed from the identifier itself so a
// partially substituted template is caught the same way as an untouched one.
func injected(raw, name string) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" || v == placeholder(name) {
		return "", false
	}
	return v, true
}

func placeholder(name string) string {
	return "${" + name + "}"
}
