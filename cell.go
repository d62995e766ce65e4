package tempref

import (
	"github.com/joeycumines/logiface"
)

// Cell is the unsynchronized container variant, for use by a single
// goroutine. The shared/exclusive access discipline is enforced at runtime:
// acquisitions never block, instead failing immediately on conflict. Cell
// carries no thread-safety contract whatsoever.
//
// Instances must be initialized using one of the NewCell constructors.
type Cell[T any] struct {
	value T
	reset Reset[T]
	log   *logiface.Logger[logiface.Event]
	// 0 idle, >0 count of live shared guards, -1 exclusive
	borrows int
}

// NewCell initializes a new Cell, owning the provided payload and reset
// operation. A panic will occur if reset is nil.
func NewCell[T any](value T, reset Reset[T], opts ...Option) *Cell[T] {
	if reset == nil {
		panic(`tempref: nil reset`)
	}
	cfg := resolveOptions(opts)
	return &Cell[T]{value: value, reset: reset, log: cfg.logger}
}

// NewCellWith is like [NewCell], taking the initial payload from init.
// A panic will occur if init or reset is nil.
func NewCellWith[T any](init func() T, reset Reset[T], opts ...Option) *Cell[T] {
	if init == nil {
		panic(`tempref: nil init`)
	}
	return NewCell(init(), reset, opts...)
}

// NewCellZero is like [NewCell], using the zero value of T as the initial
// payload.
func NewCellZero[T any](reset Reset[T], opts ...Option) *Cell[T] {
	var value T
	return NewCell(value, reset, opts...)
}

// NewCellZeroWith is like [NewCellZero], applying init to the zero value, in
// place, to produce the initial payload. A panic will occur if init or reset
// is nil.
func NewCellZeroWith[T any](init func(*T), reset Reset[T], opts ...Option) *Cell[T] {
	if init == nil {
		panic(`tempref: nil init`)
	}
	var value T
	init(&value)
	return NewCell(value, reset, opts...)
}

// Borrow acquires shared access to the payload, which lasts until the
// returned guard is released. Multiple shared guards may be live at once.
// Borrow panics if an exclusive guard is live: use [Cell.TryBorrow] where
// failing is preferable to aborting.
func (x *Cell[T]) Borrow() *Ref[T] {
	r, err := x.TryBorrow()
	if err != nil {
		panic(`tempref: already exclusively borrowed`)
	}
	return r
}

// TryBorrow acquires shared access to the payload, returning
// [ErrBorrowConflict] if an exclusive guard is live.
func (x *Cell[T]) TryBorrow() (*Ref[T], error) {
	if x.borrows < 0 {
		return nil, ErrBorrowConflict
	}
	x.borrows++
	return &Ref[T]{value: &x.value, release: x.releaseShared}, nil
}

// BorrowMut acquires exclusive access to the payload, which lasts until the
// returned guard is released, at which point the reset operation runs.
// BorrowMut panics if any guard is live: use [Cell.TryBorrowMut] where
// failing is preferable to aborting.
func (x *Cell[T]) BorrowMut() *MutRef[T] {
	r, err := x.TryBorrowMut()
	if err != nil {
		panic(`tempref: already borrowed`)
	}
	return r
}

// TryBorrowMut acquires exclusive access to the payload, returning
// [ErrBorrowConflict] if any guard is live.
func (x *Cell[T]) TryBorrowMut() (*MutRef[T], error) {
	if x.borrows != 0 {
		return nil, ErrBorrowConflict
	}
	x.borrows = -1
	return &MutRef[T]{value: &x.value, reset: x.reset, unlock: x.releaseExclusive}, nil
}

// Do acquires exclusive access, passes the payload to f, then releases,
// running the reset operation, on any exit path. [ErrBorrowConflict] is
// returned, without calling f, if any guard is live.
func (x *Cell[T]) Do(f func(value *T)) error {
	guard, err := x.TryBorrowMut()
	if err != nil {
		return err
	}
	defer guard.Release()
	f(guard.Value())
	return nil
}

// View acquires shared access and passes the payload to f, which must not
// mutate it. [ErrBorrowConflict] is returned, without calling f, if an
// exclusive guard is live.
func (x *Cell[T]) View(f func(value *T)) error {
	guard, err := x.TryBorrow()
	if err != nil {
		return err
	}
	defer guard.Release()
	f(guard.Value())
	return nil
}

// Swap exchanges the payloads of the two cells, in place, without invoking
// either reset operation. [ErrBorrowConflict] is returned if either cell has
// a live guard. Swapping a cell with itself is a no-op.
func (x *Cell[T]) Swap(other *Cell[T]) error {
	if x.borrows != 0 || other.borrows != 0 {
		return ErrBorrowConflict
	}
	x.value, other.value = other.value, x.value
	x.log.Debug().Log(`payload swapped`)
	return nil
}

// Replace replaces the payload, returning the old payload, without invoking
// the reset operation. [ErrBorrowConflict] is returned if any guard is live.
func (x *Cell[T]) Replace(value T) (T, error) {
	if x.borrows != 0 {
		var zero T
		return zero, ErrBorrowConflict
	}
	old := x.value
	x.value = value
	x.log.Debug().Log(`payload replaced`)
	return old, nil
}

// ReplaceWith replaces the payload with one computed by f, from the current
// payload, returning the old payload (as left by f), without invoking the
// reset operation. [ErrBorrowConflict] is returned, without calling f, if any
// guard is live.
func (x *Cell[T]) ReplaceWith(f func(value *T) T) (T, error) {
	if x.borrows != 0 {
		var zero T
		return zero, ErrBorrowConflict
	}
	value := f(&x.value)
	old := x.value
	x.value = value
	x.log.Debug().Log(`payload replaced`)
	return old, nil
}

// Take removes and returns the payload, leaving the zero value of T, without
// invoking the reset operation. [ErrBorrowConflict] is returned if any guard
// is live.
func (x *Cell[T]) Take() (T, error) {
	var zero T
	if x.borrows != 0 {
		return zero, ErrBorrowConflict
	}
	old := x.value
	x.value = zero
	x.log.Debug().Log(`payload taken`)
	return old, nil
}

// Reset briefly acquires exclusive access and invokes the reset operation on
// the payload. [ErrBorrowConflict] is returned if any guard is live.
func (x *Cell[T]) Reset() error {
	if x.borrows != 0 {
		return ErrBorrowConflict
	}
	x.borrows = -1
	defer x.releaseExclusive()
	x.reset(&x.value)
	return nil
}

func (x *Cell[T]) releaseShared() {
	x.borrows--
}

func (x *Cell[T]) releaseExclusive() {
	x.borrows = 0
}
