package jent

// #cgo LDFLAGS: -ljitterentropy
// #include <jitterentropy.h>
import "C"

import (
	"fmt"
	"unsafe"
)

// Collector parameters used for both library initialization and handle
// allocation. An oversampling rate of 3 with forced FIPS mode keeps the
// library's startup self-tests and continuous health tests active.
const oversamplingRate = 3

var global registry

// globalInit performs the process-wide library initialization. It runs at
// most once per process, serialized by the registry.
func globalInit() error {
	rc := C.jent_entropy_init_ex(C.uint(oversamplingRate), C.uint(C.JENT_FORCE_FIPS))
	return errorFromCode(int(rc))
}

// Source is a single jitterentropy collector. Each Source owns exactly one
// native handle; the handle is released by Close, which must be called when
// the Source is no longer needed. Distinct Sources are safe to create and
// use from multiple goroutines; a single Source is not safe for concurrent
// reads.
type Source struct {
	handle *C.struct_rand_data
}

// New allocates an independent entropy collector, running the one-time
// global library initialization first if this is the first live instance in
// the process. Initialization faults (unsuitable timer, failed self-tests,
// allocation failure) are returned as the corresponding Error.
func New() (*Source, error) {
	if err := global.acquire(globalInit); err != nil {
		return nil, err
	}
	handle := C.jent_entropy_collector_alloc(C.uint(oversamplingRate), C.uint(C.JENT_FORCE_FIPS))
	if handle == nil {
		global.release()
		return nil, ErrNullCollector
	}
	return &Source{handle: handle}, nil
}

// FillBytes fills p with random bytes from the collector. The read succeeds
// only if the library reports having produced exactly len(p) bytes; any
// other outcome is mapped through the Error taxonomy. After a fault with
// Permanent() true the Source must be discarded.
func (s *Source) FillBytes(p []byte) error {
	if s.handle == nil {
		return ErrNullCollector
	}
	if len(p) == 0 {
		return nil
	}
	n := C.jent_read_entropy_safe(&s.handle, (*C.char)(unsafe.Pointer(&p[0])), C.size_t(len(p)))
	if int(n) == len(p) {
		return nil
	}
	if err := errorFromCode(int(n)); err != nil {
		return err
	}
	// Non-negative return below the requested length. The library does not
	// document this outcome, so refuse the partial buffer.
	return fmt.Errorf("%w: short entropy read (%d of %d bytes)", ErrInternal, int(n), len(p))
}

// Close releases the native collector handle. It is safe to call more than
// once; only the first call frees the handle.
func (s *Source) Close() error {
	if s.handle == nil {
		return nil
	}
	C.jent_entropy_collector_free(s.handle)
	s.handle = nil
	global.release()
	return nil
}

// LiveSources returns the number of collector handles currently allocated
// in this process.
func LiveSources() int { return global.liveCount() }
