// Package randdev manages the kernel CRNG's entropy accounting through the
// random device's ioctl interface.
//
// A [Channel] reads the kernel's entropy estimate, adjusts it, injects
// entropy bytes together with an entropy claim, and triggers pool resets and
// CRNG reseeds. Every operation opens /dev/random afresh and closes it
// before returning, so the channel carries no state between calls.
//
// All mutating operations require superuser privilege and fail with
// [ErrPermissionDenied] otherwise. Injection requests are validated locally
// before the device is touched: the claimed entropy may never exceed eight
// bits per buffer byte, and a single request carries at most [MaxBufferSize]
// bytes.
package randdev
