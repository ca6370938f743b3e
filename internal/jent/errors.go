package jent

// Error is a fault code reported by the jitterentropy library. Positive
// codes are returned by the one-time library initialization and by collector
// allocation; negative codes surface during entropy reads when a continuous
// health test fails. The code values match the library's C API.
type Error int

// Initialization faults.
const (
	// ErrNoTime means no timer service is available.
	ErrNoTime Error = 1
	// ErrCoarseTime means the timer is too coarse for RNG use.
	ErrCoarseTime Error = 2
	// ErrNotMonotonic means the timer is not monotonically increasing.
	ErrNotMonotonic Error = 3
	// ErrMinVariation means timer variations are too small for RNG use.
	ErrMinVariation Error = 4
	// ErrVarVar means the timer produces no variations of variations.
	ErrVarVar Error = 5
	// ErrMinVarVar means timer variations of variations are too small.
	ErrMinVarVar Error = 6
	// ErrInternal is a programming or internal library error. Unrecognized
	// library codes are also mapped to this fault.
	ErrInternal Error = 7
	// ErrStuck means too many stuck results were observed during init.
	ErrStuck Error = 8
	// ErrHealth means a health test failed during initialization.
	ErrHealth Error = 9
	// ErrRCT means the repetition count test failed during initialization.
	ErrRCT Error = 10
	// ErrHash means the hash self test failed.
	ErrHash Error = 11
	// ErrMemory means memory allocation for initialization failed.
	ErrMemory Error = 12
	// ErrGCD means the GCD self-test failed.
	ErrGCD Error = 13
)

// Runtime faults.
const (
	// ErrNullCollector means the entropy collector handle is nil.
	ErrNullCollector Error = -1
	// ErrRCTFailure is a runtime repetition count test failure.
	ErrRCTFailure Error = -2
	// ErrAPTFailure is a runtime adaptive proportion test failure.
	ErrAPTFailure Error = -3
	// ErrTimerInit means internal timer initialization failed.
	ErrTimerInit Error = -4
	// ErrLagFailure is a runtime lag prediction test failure.
	ErrLagFailure Error = -5
	// ErrRCTPermanent is an unrecoverable repetition count test failure.
	ErrRCTPermanent Error = -6
	// ErrAPTPermanent is an unrecoverable adaptive proportion test failure.
	ErrAPTPermanent Error = -7
	// ErrLagPermanent is an unrecoverable lag prediction test failure.
	ErrLagPermanent Error = -8
)

// errorFromCode maps a raw library return code to an Error. Code 0 maps to
// nil. The mapping is total: codes outside the documented 1..13 and -8..-1
// ranges are reported as ErrInternal rather than treated as success.
func errorFromCode(code int) error {
	switch {
	case code == 0:
		return nil
	case code >= 1 && code <= 13:
		return Error(code)
	case code >= -8 && code <= -1:
		return Error(code)
	default:
		return ErrInternal
	}
}

// Permanent reports whether the fault means the generator must never be
// used again. A transient runtime fault may be recovered from by discarding
// the instance and creating a fresh one; a permanent fault may not.
func (e Error) Permanent() bool {
	switch e {
	case ErrRCTPermanent, ErrAPTPermanent, ErrLagPermanent:
		return true
	}
	return false
}

// InitFault reports whether the fault belongs to the initialization phase
// of the library rather than to runtime entropy production.
func (e Error) InitFault() bool { return e > 0 }

func (e Error) Error() string {
	switch e {
	case ErrNoTime:
		return "jent: timer service not available"
	case ErrCoarseTime:
		return "jent: timer too coarse for RNG"
	case ErrNotMonotonic:
		return "jent: timer is not monotonic increasing"
	case ErrMinVariation:
		return "jent: timer variations too small for RNG"
	case ErrVarVar:
		return "jent: timer does not produce variations of variations"
	case ErrMinVarVar:
		return "jent: timer variations of variations too small"
	case ErrInternal:
		return "jent: internal error"
	case ErrStuck:
		return "jent: too many stuck results during init"
	case ErrHealth:
		return "jent: health test failed during initialization"
	case ErrRCT:
		return "jent: RCT failed during initialization"
	case ErrHash:
		return "jent: hash self test failed"
	case ErrMemory:
		return "jent: cannot allocate memory for initialization"
	case ErrGCD:
		return "jent: GCD self-test failed"
	case ErrNullCollector:
		return "jent: entropy collector is nil"
	case ErrRCTFailure:
		return "jent: repetition count test failed"
	case ErrAPTFailure:
		return "jent: adaptive proportion test failed"
	case ErrTimerInit:
		return "jent: timer initialization failed"
	case ErrLagFailure:
		return "jent: lag prediction test failed"
	case ErrRCTPermanent:
		return "jent: permanent repetition count test failure"
	case ErrAPTPermanent:
		return "jent: permanent adaptive proportion test failure"
	case ErrLagPermanent:
		return "jent: permanent lag prediction test failure"
	}
	return "jent: unknown fault"
}
