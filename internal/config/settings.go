package config

import (
	"sync"

	"bigtable2/internal/schema"
)

// Settings holds the values hello_configure() can change at runtime.
//
// A bind reads the default revision once, so a change made while a query is in
// flight applies to the next bind only.
type Settings struct {
	mu       sync.RWMutex
	revision schema.Revision
}

var settings = &Settings{revision: schema.Default}

// SetRevision sets the default schema revision for subsequent binds.
func SetRevision(r schema.Revision) {
	settings.mu.Lock()
	defer settings.mu.Unlock()
	settings.revision = r
}

// Revision returns the current default schema revision.
func Revision() schema.Revision {
	settings.mu.RLock()
	defer settings.mu.RUnlock()
	return settings.revision
}
