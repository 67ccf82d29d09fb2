package remem

import (
	"errors"
	"fmt"
)

// Sentinel errors, following the teacher's errors.go / api/const.go
// style: package-level vars rather than error codes.
var (
	// ErrArenaInit reports that the backing arena adapter could not be
	// constructed. No code path currently produces it: the default
	// adapter's constructor cannot fail, and Init reports through its
	// bool result.
	ErrArenaInit = errors.New("remem: arena init failed")

	// ErrOutOfMemory is the fatal path of spec.md section 7: after one
	// retry collection, allocation still could not be served.
	ErrOutOfMemory = errors.New("remem: out of memory after retry collection")

	// ErrNotInitialized is the panic value of the package-level
	// operations (Alloc, Collect, Root, Unroot, GetStats) when invoked
	// before Init or after Destroy.
	ErrNotInitialized = errors.New("remem: collector not initialized")

	// ErrSizeTooLarge names a request larger than the oversize path
	// serves. No code path currently produces it: the oversize path has
	// no size cap, and an arena refusal surfaces as ErrOutOfMemory.
	ErrSizeTooLarge = errors.New("remem: requested size exceeds maximum allocation")
)

func panicerr(fmsg string, args ...interface{}) {
	panic(&Error{msg: fmt.Sprintf(fmsg, args...)})
}

// Error is the panic payload used for invariant violations the
// collector cannot recover from (mirrors the teacher's panicerr
// idiom, malloc/util.go and errors.go, but typed so callers can
// recover() and inspect it instead of matching on a bare string).
type Error struct{ msg string }

func (e *Error) Error() string { return e.msg }
