package persistent

import "sync"

// PathSet tracks normalized database paths that currently hold a live
// handle. It is an advisory, in-process lock: it stops this process from
// opening the same file twice, nothing more.
type PathSet struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewPathSet returns an empty path set.
func NewPathSet() *PathSet {
	return &PathSet{paths: make(map[string]struct{})}
}

// Mark records the path as open. It returns false when the path is already
// marked, leaving the set unchanged.
func (p *PathSet) Mark(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, open := p.paths[path]; open {
		return false
	}
	p.paths[path] = struct{}{}
	return true
}

// Unmark releases the path so a later session can open it.
func (p *PathSet) Unmark(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.paths, path)
}

// IsMarked reports whether the path currently holds a live handle.
func (p *PathSet) IsMarked(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, open := p.paths[path]
	return open
}
