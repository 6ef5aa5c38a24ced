// Package registry holds the ordered, append-only set of links submitted in a session.
package registry

import (
	"strings"
	"sync"
)

// Registry is an insertion-ordered list of links. Duplicates are kept and
// scored independently. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	links []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Append adds link to the end and returns the new length.
func (r *Registry) Append(link string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = append(r.links, link)
	return len(r.links)
}

// Snapshot returns a copy of the links in insertion order.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.links...)
}

// Len returns the number of registered links.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.links)
}

// Truncate drops every link past the first n. It is used to roll back an
// append whose scoring failed; n beyond the current length is a no-op.
func (r *Registry) Truncate(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n >= len(r.links) {
		return
	}
	clear(r.links[n:])
	r.links = r.links[:n]
}

// Reset clears the registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = nil
}

// Batch joins links into the single request text sent to the inference service.
func Batch(links []string) string {
	return strings.Join(links, ", ")
}
