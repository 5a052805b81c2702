// Package endpoint computes the backend base URL for a dashboard session.
package endpoint

import (
	"fmt"
	"net/url"
	"sync"

	"invoicedash/internal/runtimecfg"
)

// DefaultBackendPort is used when neither a backend URL nor a port was injected.
const DefaultBackendPort = 8000

// Location is the dashboard's own serving identity, the counterpart of the
// page's protocol and hostname. Scheme carries no trailing "://".
type Location struct {
	Scheme   string
	Hostname string
}

// Resolver turns the injected runtime configuration and the dashboard's own
// location into a single base URL, fixed for the life of the session.
type Resolver struct {
	rt  runtimecfg.Runtime
	loc Location

	once sync.Once
	base string
}

func NewResolver(rt runtimecfg.Runtime, loc Location) *Resolver {
	return &Resolver{rt: rt, loc: loc}
}

// BaseURL returns the backend base URL. Precedence: an injected backend URL
// verbatim; otherwise the dashboard's own scheme and hostname with the
// injected port, falling back to DefaultBackendPort. Computed once.
func (r *Resolver) BaseURL() string {
	r.once.Do(func() {
		if r.rt.HasURL() {
			r.base = r.rt.BackendURL
			return
		}
		port := DefaultBackendPort
		if r.rt.HasPort() {
			port = r.rt.BackendPort
		}
		r.base = fmt.Sprintf("%s://%s:%d", r.loc.Scheme, r.loc.Hostname, port)
	})
	return r.base
}

// Normalize reduces a URL to its origin (scheme://host[:port]) for display.
// Best effort only: anything that does not parse as an absolute URL comes
// back unchanged, never an error.
func Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host
}
