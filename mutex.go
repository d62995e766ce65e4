package tempref

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// Mutex is the mutual-exclusion container variant, safe for concurrent use,
// allowing one exclusive holder at a time.
//
// Go's mutex does not poison, so abnormal releases are tracked explicitly: a
// guard released by an unwinding panic sets a sticky poisoned flag, surfaced
// as [ErrPoisoned] to subsequent acquirers until [Mutex.ClearPoison] is
// called. The payload remains consistent regardless, as the reset operation
// runs during every exclusive release, abnormal or not.
//
// Instances must be initialized using one of the NewMutex constructors, and
// must not be copied after first use.
type Mutex[T any] struct {
	noCopy   noCopy
	mu       sync.Mutex
	value    T
	reset    Reset[T]
	log      *logiface.Logger[logiface.Event]
	poisoned atomic.Bool
}

// NewMutex initializes a new Mutex, owning the provided payload and reset
// operation. A panic will occur if reset is nil.
func NewMutex[T any](value T, reset Reset[T], opts ...Option) *Mutex[T] {
	if reset == nil {
		panic(`tempref: nil reset`)
	}
	cfg := resolveOptions(opts)
	return &Mutex[T]{value: value, reset: reset, log: cfg.logger}
}

// NewMutexWith is like [NewMutex], taking the initial payload from init.
// A panic will occur if init or reset is nil.
func NewMutexWith[T any](init func() T, reset Reset[T], opts ...Option) *Mutex[T] {
	if init == nil {
		panic(`tempref: nil init`)
	}
	return NewMutex(init(), reset, opts...)
}

// NewMutexZero is like [NewMutex], using the zero value of T as the initial
// payload.
func NewMutexZero[T any](reset Reset[T], opts ...Option) *Mutex[T] {
	var value T
	return NewMutex(value, reset, opts...)
}

// NewMutexZeroWith is like [NewMutexZero], applying init to the zero value,
// in place, to produce the initial payload. A panic will occur if init or
// reset is nil.
func NewMutexZeroWith[T any](init func(*T), reset Reset[T], opts ...Option) *Mutex[T] {
	if init == nil {
		panic(`tempref: nil init`)
	}
	var value T
	init(&value)
	return NewMutex(value, reset, opts...)
}

// Lock acquires exclusive access to the payload, blocking the calling
// goroutine until it is available. The returned guard is always valid, and
// must be released (running the reset operation) even when the error is
// non-nil: the error is [ErrPoisoned] if a prior holder released abnormally,
// which the caller may inspect, then either proceed or release immediately.
func (x *Mutex[T]) Lock() (*MutRef[T], error) {
	x.mu.Lock()
	guard := x.newGuard()
	if x.poisoned.Load() {
		return guard, ErrPoisoned
	}
	return guard, nil
}

// TryLock attempts to acquire exclusive access, without blocking, returning
// (nil, [ErrWouldBlock]) if the payload is contended. On acquisition the
// guard is always valid, with the error reporting [ErrPoisoned] exactly as
// for [Mutex.Lock].
func (x *Mutex[T]) TryLock() (*MutRef[T], error) {
	if !x.mu.TryLock() {
		return nil, ErrWouldBlock
	}
	guard := x.newGuard()
	if x.poisoned.Load() {
		return guard, ErrPoisoned
	}
	return guard, nil
}

// Do acquires exclusive access, passes the payload to f, then releases,
// running the reset operation, on any exit path. A panic within f poisons the
// container, before being re-raised. If the container is already poisoned,
// [ErrPoisoned] is returned without calling f (the payload is still reset).
func (x *Mutex[T]) Do(f func(value *T)) error {
	guard, err := x.Lock()
	if err != nil {
		guard.Release()
		return err
	}
	defer guard.Release()
	f(guard.Value())
	return nil
}

// Reset briefly acquires exclusive access and invokes the reset operation on
// the payload, blocking until access is available. [ErrPoisoned] is returned,
// without invoking the reset operation, if the container is poisoned.
func (x *Mutex[T]) Reset() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.poisoned.Load() {
		return ErrPoisoned
	}
	x.reset(&x.value)
	return nil
}

// TryReset is like [Mutex.Reset], without blocking, returning
// [ErrWouldBlock] if the payload is contended.
func (x *Mutex[T]) TryReset() error {
	if !x.mu.TryLock() {
		return ErrWouldBlock
	}
	defer x.mu.Unlock()
	if x.poisoned.Load() {
		return ErrPoisoned
	}
	x.reset(&x.value)
	return nil
}

// Take removes and returns the payload, leaving the zero value of T, without
// invoking the reset operation, blocking until access is available. The
// payload is returned even when the error is [ErrPoisoned].
func (x *Mutex[T]) Take() (T, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	var zero T
	old := x.value
	x.value = zero
	x.log.Debug().Log(`payload taken`)
	if x.poisoned.Load() {
		return old, ErrPoisoned
	}
	return old, nil
}

// Poisoned reports whether a prior exclusive holder released abnormally.
func (x *Mutex[T]) Poisoned() bool {
	return x.poisoned.Load()
}

// ClearPoison acknowledges and clears the poisoned flag, after which
// acquisitions succeed without error again.
func (x *Mutex[T]) ClearPoison() {
	if x.poisoned.Swap(false) {
		x.log.Debug().Log(`poison cleared`)
	}
}

func (x *Mutex[T]) newGuard() *MutRef[T] {
	return &MutRef[T]{value: &x.value, reset: x.reset, unlock: x.mu.Unlock, fail: x.poison}
}

func (x *Mutex[T]) poison() {
	if !x.poisoned.Swap(true) {
		x.log.Warning().Log(`poisoned by abnormal exclusive release`)
	}
}
