package jent

import "sync"

// registry tracks the number of live collector handles and gates the
// one-time global library initialization. The library contract is that
// initialization runs before the first collector is allocated and is never
// undone, so the registry only remembers whether it already ran; releasing
// the last handle does not reset it.
//
// The zero value is ready to use. Sources share a single process-wide
// instance; tests create isolated ones.
type registry struct {
	mu    sync.Mutex
	live  int
	ready bool
}

// acquire registers one prospective collector handle, running init first if
// no successful initialization has happened yet. A failed init leaves the
// registry untouched so a later acquire retries it.
func (r *registry) acquire(init func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		if err := init(); err != nil {
			return err
		}
		r.ready = true
	}
	r.live++
	return nil
}

// release drops one handle registration.
func (r *registry) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live--
}

// liveCount returns the number of currently registered handles.
func (r *registry) liveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}
