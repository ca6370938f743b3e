package randdev

import "errors"

// Channel errors. Check with errors.Is; operation context is attached by
// wrapping.
var (
	// ErrOverclaimedEntropy is returned when an injection claims more
	// entropy bits than the buffer physically holds (len * 8). Detected
	// before any device access.
	ErrOverclaimedEntropy = errors.New("randdev: claimed entropy exceeds buffer capacity")

	// ErrBufferTooLarge is returned when an injection buffer exceeds
	// MaxBufferSize. Detected before any device access.
	ErrBufferTooLarge = errors.New("randdev: entropy buffer exceeds device limit")

	// ErrPermissionDenied is returned when a mutating operation is
	// attempted without superuser privilege. Retrying cannot succeed.
	ErrPermissionDenied = errors.New("randdev: operation requires superuser privilege")

	// ErrKernelIO covers device open failures and ioctl calls rejected by
	// the kernel for any reason other than missing privilege.
	ErrKernelIO = errors.New("randdev: kernel random device access failed")
)
