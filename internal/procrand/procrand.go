// Package procrand reads scalar statistics from the kernel's random proc
// interface under /proc/sys/kernel/random. Each accessor performs a single
// read of one virtual file and parses its trimmed content.
package procrand

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultRoot = "/proc/sys/kernel/random"

// Reader reads the kernel's random proc files.
type Reader struct {
	root string
}

// New returns a Reader over /proc/sys/kernel/random.
func New() *Reader { return &Reader{root: defaultRoot} }

// NewAt returns a Reader over an alternate root, used in tests.
func NewAt(root string) *Reader { return &Reader{root: root} }

// BootID returns the identifier generated at boot; it changes on every
// system boot.
func (r *Reader) BootID() (string, error) { return r.readString("boot_id") }

// UUID returns a freshly generated random identifier; every read produces a
// new one.
func (r *Reader) UUID() (string, error) { return r.readString("uuid") }

// EntropyAvail returns the kernel's estimate of available entropy in bits.
func (r *Reader) EntropyAvail() (uint32, error) { return r.readUint32("entropy_avail") }

// PoolSize returns the size of the kernel entropy pool in bits.
func (r *Reader) PoolSize() (uint32, error) { return r.readUint32("poolsize") }

// URandomMinReseedSecs returns the minimum number of seconds between
// automatic reseeds of the urandom pool.
func (r *Reader) URandomMinReseedSecs() (uint32, error) {
	return r.readUint32("urandom_min_reseed_secs")
}

// WriteWakeupThreshold returns the entropy level below which writers to the
// random device are woken.
func (r *Reader) WriteWakeupThreshold() (uint32, error) {
	return r.readUint32("write_wakeup_threshold")
}

func (r *Reader) readString(name string) (string, error) {
	b, err := os.ReadFile(filepath.Join(r.root, name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (r *Reader) readUint32(name string) (uint32, error) {
	s, err := r.readString(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return uint32(v), nil
}
