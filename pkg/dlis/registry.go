package dlis

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Registry memoizes open Streams by path, so that concurrent lookups
// against the same file (e.g. a service fielding several requests for
// one log while it is still being indexed) share a single Open call
// instead of racing to index the file twice.
type Registry struct {
	opts Options

	mu      sync.RWMutex
	streams map[string]*Stream

	sf singleflight.Group
}

// NewRegistry returns a Registry that opens files with opts whenever
// OpenShared observes a path it has not served yet.
func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts, streams: make(map[string]*Stream)}
}

// OpenShared returns the already-open Stream for path if one exists,
// or opens it, sharing the work among concurrent callers for the same
// path via singleflight so only one of them actually runs Open.
func (r *Registry) OpenShared(path string) (*Stream, error) {
	r.mu.RLock()
	if s, ok := r.streams[path]; ok {
		r.mu.RUnlock()
		return s, nil
	}
	r.mu.RUnlock()

	v, err, _ := r.sf.Do(path, func() (interface{}, error) {
		r.mu.RLock()
		if s, ok := r.streams[path]; ok {
			r.mu.RUnlock()
			return s, nil
		}
		r.mu.RUnlock()

		res, err := Open(path, r.opts)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.streams[path] = res.Stream
		r.mu.Unlock()
		return res.Stream, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Stream), nil
}

// Evict closes and forgets the Stream cached for path, if any. Later
// OpenShared calls for path will re-open and re-index it.
func (r *Registry) Evict(path string) error {
	r.mu.Lock()
	s, ok := r.streams[path]
	if ok {
		delete(r.streams, path)
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Close()
}

// CloseAll closes every Stream the registry currently holds.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	streams := r.streams
	r.streams = make(map[string]*Stream)
	r.mu.Unlock()

	var first error
	for _, s := range streams {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
