// Package classpath implements the class-path provider abstraction
// (spec C5): name-keyed blob lookup backed by directories or JAR/zip
// archives.
package classpath

// Provider resolves a fully-qualified class name like "pkg/sub/Name"
// to the raw bytes of "pkg/sub/Name.class", or reports not-found.
type Provider interface {
	Lookup(className string) ([]byte, bool, error)
}

// ClassPath aggregates providers and tries each in registration order,
// mirroring Jacobin's Classloader.Archives-plus-filesystem search.
type ClassPath struct {
	providers []Provider
}

// New returns an empty class path.
func New() *ClassPath { return &ClassPath{} }

// Add registers another backend, searched after all previously added
// ones.
func (cp *ClassPath) Add(p Provider) { cp.providers = append(cp.providers, p) }

// Lookup tries each provider in order, returning the first hit.
func (cp *ClassPath) Lookup(className string) ([]byte, bool, error) {
	for _, p := range cp.providers {
		data, ok, err := p.Lookup(className)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return data, true, nil
		}
	}
	return nil, false, nil
}
