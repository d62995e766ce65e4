package tempref

import (
	"errors"
)

var (
	// ErrBorrowConflict is returned by [Cell] operations when the requested
	// access mode is incompatible with the cell's current state, i.e.
	// requesting shared access while an exclusive guard is live, or exclusive
	// access while any guard is live.
	ErrBorrowConflict = errors.New(`tempref: borrow conflict`)

	// ErrWouldBlock is returned by the non-blocking acquisition methods of
	// [Mutex] and [RWMutex], when access is unavailable. The caller may retry
	// or back off.
	ErrWouldBlock = errors.New(`tempref: would block`)

	// ErrPoisoned is returned by [Mutex] and [RWMutex] operations after a
	// prior exclusive holder released its guard abnormally (panicked). The
	// payload remains consistent, as the reset operation already ran during
	// that release, but callers must explicitly decide whether to proceed.
	// The flag is sticky, remaining set until ClearPoison is called.
	ErrPoisoned = errors.New(`tempref: poisoned`)
)
