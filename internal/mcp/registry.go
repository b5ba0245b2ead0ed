package mcp

import (
	"fmt"
	"sort"
	"time"
)

// Endpoint is the resolved address and per-call timeout for one tool server.
type Endpoint struct {
	URL     string
	Timeout time.Duration
}

// Registry maps logical server names ("rag-tools", "extraction-tools", ...)
// to endpoints. Servers not explicitly overridden share the default
// endpoint, mirroring a centralized tool-server deployment.
type Registry struct {
	defaultEndpoint Endpoint
	overrides       map[string]Endpoint
	known           map[string]bool
}

// Known server names. Calls to servers outside this set are rejected before
// any connection is attempted.
var defaultServers = []string{
	"data-processor",
	"rag-tools",
	"extraction-tools",
	"gmail-tools",
}

// NewRegistry creates a registry with the given default endpoint and
// optional per-server URL overrides (each override keeps the default timeout).
func NewRegistry(defaultURL string, timeout time.Duration, overrides map[string]string) *Registry {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	r := &Registry{
		defaultEndpoint: Endpoint{URL: defaultURL, Timeout: timeout},
		overrides:       make(map[string]Endpoint, len(overrides)),
		known:           make(map[string]bool, len(defaultServers)),
	}
	for _, s := range defaultServers {
		r.known[s] = true
	}
	for server, url := range overrides {
		r.known[server] = true
		r.overrides[server] = Endpoint{URL: url, Timeout: timeout}
	}
	return r
}

// Resolve returns the endpoint for a server name.
func (r *Registry) Resolve(server string) (Endpoint, error) {
	if !r.known[server] {
		return Endpoint{}, fmt.Errorf("%w: %s", ErrUnknownServer, server)
	}
	if ep, ok := r.overrides[server]; ok {
		return ep, nil
	}
	return r.defaultEndpoint, nil
}

// Servers returns all known server names.
func (r *Registry) Servers() []string {
	names := make([]string, 0, len(r.known))
	for s := range r.known {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}
