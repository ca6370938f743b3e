package randdev

import "unsafe"

// Request numbers for the random device ioctl family, built with the
// kernel's _IO/_IOR/_IOW encoding. Operation numbers and comments follow
// include/uapi/linux/random.h; 0x02 (RNDGETPOOL) was removed from the
// kernel long ago and 0x05 was never assigned.
const (
	iocMagic = 'R'

	iocNrBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNrShift   = 0
	iocTypeShift = iocNrShift + iocNrBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocNone  = 0
	iocWrite = 1
	iocRead  = 2
)

func ioc(dir, nr, size uintptr) uintptr {
	return dir<<iocDirShift | iocMagic<<iocTypeShift | nr<<iocNrShift | size<<iocSizeShift
}

var (
	// Get the entropy count.
	rndGetEntCnt = ioc(iocRead, 0x00, unsafe.Sizeof(int32(0)))
	// Add to (or subtract from) the entropy count. (Superuser only.)
	rndAddToEntCnt = ioc(iocWrite, 0x01, unsafe.Sizeof(int32(0)))
	// Add entropy to the pool together with an entropy count claim.
	// (Superuser only.)
	rndAddEntropy = ioc(iocWrite, 0x03, unsafe.Sizeof(poolInfoHeader{}))
	// Clear the entropy count to 0. (Superuser only.)
	rndZapEntCnt = ioc(iocNone, 0x04, 0)
	// Clear the entropy pool and associated counters. (Superuser only.)
	rndClearPool = ioc(iocNone, 0x06, 0)
	// Reseed the CRNG. (Superuser only.)
	rndReseedCRNG = ioc(iocNone, 0x07, 0)
)

// MaxBufferSize is the largest entropy buffer accepted per injection call.
const MaxBufferSize = 2 * 1024

// poolInfoHeader mirrors the two leading words of the kernel's struct
// rand_pool_info. The RNDADDENTROPY request size is derived from this
// header alone; the kernel reads buf_size further bytes from the same
// allocation immediately after it.
type poolInfoHeader struct {
	entropyCount int32
	bufSize      int32
}

// poolInfo is the full injection request: the header immediately followed
// by the entropy buffer, contiguous and without padding.
type poolInfo struct {
	header poolInfoHeader
	buf    [MaxBufferSize]byte
}

// The ioctl encoding and the kernel's request validation both depend on the
// header being exactly two 32-bit words with the buffer directly behind it.
var (
	_ [unsafe.Sizeof(poolInfoHeader{}) - 8]byte
	_ [8 - unsafe.Sizeof(poolInfoHeader{})]byte
	_ [unsafe.Offsetof(poolInfo{}.buf) - 8]byte
	_ [8 - unsafe.Offsetof(poolInfo{}.buf)]byte
)
