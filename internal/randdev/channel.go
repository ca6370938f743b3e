package randdev

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DevicePath is the kernel random device the channel operates on.
const DevicePath = "/dev/random"

// Channel issues entropy accounting ioctls against the kernel random
// device. Every operation opens a fresh descriptor and closes it on return;
// calls are seconds apart in practice, so the extra open is cheaper than
// carrying shared state.
//
// Use New for a real channel. The device path and ioctl hook exist so tests
// can exercise the call contract without a kernel.
type Channel struct {
	path  string
	ioctl func(fd int, req uintptr, arg unsafe.Pointer) error
}

// New returns a Channel bound to /dev/random.
func New() *Channel {
	return &Channel{path: DevicePath, ioctl: sysIoctl}
}

func sysIoctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func (c *Channel) open() (*os.File, error) {
	f, err := os.OpenFile(c.path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrKernelIO, c.path, err)
	}
	return f, nil
}

// wrapIoctl classifies an ioctl failure. Missing privilege is its own fault
// kind because retrying without it cannot succeed; everything else is an
// opaque kernel I/O fault.
func wrapIoctl(op string, err error) error {
	if errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, op)
	}
	return fmt.Errorf("%w: %s: %v", ErrKernelIO, op, err)
}

// EntropyCount returns the kernel's current entropy estimate in bits. The
// call needs no special privilege.
func (c *Channel) EntropyCount() (int32, error) {
	f, err := c.open()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var count int32
	if err := c.ioctl(int(f.Fd()), rndGetEntCnt, unsafe.Pointer(&count)); err != nil {
		return 0, wrapIoctl("RNDGETENTCNT", err)
	}
	return count, nil
}

// AddToEntropyCount adds delta bits to the kernel's entropy estimate;
// a negative delta subtracts. Superuser only.
func (c *Channel) AddToEntropyCount(delta int32) error {
	f, err := c.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := c.ioctl(int(f.Fd()), rndAddToEntCnt, unsafe.Pointer(&delta)); err != nil {
		return wrapIoctl("RNDADDTOENTCNT", err)
	}
	return nil
}

// InjectEntropy writes p into the kernel entropy pool, crediting
// claimedBits bits of entropy. The claim may never exceed len(p)*8 and the
// buffer may not exceed MaxBufferSize; both are rejected before the device
// is opened. Superuser only.
func (c *Channel) InjectEntropy(p []byte, claimedBits uint32) error {
	if uint64(claimedBits) > uint64(len(p))*8 {
		return fmt.Errorf("%w: claimed %d bits for %d bytes", ErrOverclaimedEntropy, claimedBits, len(p))
	}
	if len(p) > MaxBufferSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrBufferTooLarge, len(p), MaxBufferSize)
	}

	f, err := c.open()
	if err != nil {
		return err
	}
	defer f.Close()

	var info poolInfo
	info.header.entropyCount = int32(claimedBits)
	info.header.bufSize = int32(len(p))
	copy(info.buf[:], p)

	// The kernel sizes the request from the header; the buffer follows it
	// contiguously inside info.
	cerr := c.ioctl(int(f.Fd()), rndAddEntropy, unsafe.Pointer(&info))

	// The request holds entropy bytes; wipe it whether or not the call
	// succeeded.
	zero(info.buf[:])
	info.header = poolInfoHeader{}

	if cerr != nil {
		return wrapIoctl("RNDADDENTROPY", cerr)
	}
	return nil
}

// ZapEntropyCount clears the kernel's entropy estimate to zero without
// touching the pool contents. Superuser only.
func (c *Channel) ZapEntropyCount() error {
	return c.plainOp("RNDZAPENTCNT", rndZapEntCnt)
}

// ClearPool clears the entropy pool and its counters. Superuser only.
func (c *Channel) ClearPool() error {
	return c.plainOp("RNDCLEARPOOL", rndClearPool)
}

// ForceReseed makes the kernel reseed its CRNG from the pool immediately.
// Superuser only.
func (c *Channel) ForceReseed() error {
	return c.plainOp("RNDRESEEDCRNG", rndReseedCRNG)
}

func (c *Channel) plainOp(name string, req uintptr) error {
	f, err := c.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := c.ioctl(int(f.Fd()), req, nil); err != nil {
		return wrapIoctl(name, err)
	}
	return nil
}

func zero(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
