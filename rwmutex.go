package tempref

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// RWMutex is the reader-writer container variant, safe for concurrent use,
// allowing many concurrent readers or one exclusive writer. Reading never
// mutates, so shared guards carry no reset semantics: only exclusive releases
// run the reset operation.
//
// Poisoning behaves exactly as for [Mutex]: a sticky flag, set by an abnormal
// exclusive release, surfaced as [ErrPoisoned] to subsequent acquirers (both
// readers and writers) until [RWMutex.ClearPoison] is called.
//
// Instances must be initialized using one of the NewRWMutex constructors, and
// must not be copied after first use.
type RWMutex[T any] struct {
	noCopy   noCopy
	mu       sync.RWMutex
	value    T
	reset    Reset[T]
	log      *logiface.Logger[logiface.Event]
	poisoned atomic.Bool
}

// NewRWMutex initializes a new RWMutex, owning the provided payload and reset
// operation. A panic will occur if reset is nil.
func NewRWMutex[T any](value T, reset Reset[T], opts ...Option) *RWMutex[T] {
	if reset == nil {
		panic(`tempref: nil reset`)
	}
	cfg := resolveOptions(opts)
	return &RWMutex[T]{value: value, reset: reset, log: cfg.logger}
}

// NewRWMutexWith is like [NewRWMutex], taking the initial payload from init.
// A panic will occur if init or reset is nil.
func NewRWMutexWith[T any](init func() T, reset Reset[T], opts ...Option) *RWMutex[T] {
	if init == nil {
		panic(`tempref: nil init`)
	}
	return NewRWMutex(init(), reset, opts...)
}

// NewRWMutexZero is like [NewRWMutex], using the zero value of T as the
// initial payload.
func NewRWMutexZero[T any](reset Reset[T], opts ...Option) *RWMutex[T] {
	var value T
	return NewRWMutex(value, reset, opts...)
}

// NewRWMutexZeroWith is like [NewRWMutexZero], applying init to the zero
// value, in place, to produce the initial payload. A panic will occur if init
// or reset is nil.
func NewRWMutexZeroWith[T any](init func(*T), reset Reset[T], opts ...Option) *RWMutex[T] {
	if init == nil {
		panic(`tempref: nil init`)
	}
	var value T
	init(&value)
	return NewRWMutex(value, reset, opts...)
}

// RLock acquires shared access to the payload, blocking the calling goroutine
// until a shared slot is available (i.e. no writer holds or awaits access,
// per [sync.RWMutex] semantics). The returned guard is always valid, and must
// be released even when the error is non-nil: the error is [ErrPoisoned] if a
// prior exclusive holder released abnormally.
func (x *RWMutex[T]) RLock() (*Ref[T], error) {
	x.mu.RLock()
	guard := &Ref[T]{value: &x.value, release: x.mu.RUnlock}
	if x.poisoned.Load() {
		return guard, ErrPoisoned
	}
	return guard, nil
}

// TryRLock attempts to acquire shared access, without blocking, returning
// (nil, [ErrWouldBlock]) if unavailable. On acquisition the guard is always
// valid, with the error reporting [ErrPoisoned] exactly as for
// [RWMutex.RLock].
func (x *RWMutex[T]) TryRLock() (*Ref[T], error) {
	if !x.mu.TryRLock() {
		return nil, ErrWouldBlock
	}
	guard := &Ref[T]{value: &x.value, release: x.mu.RUnlock}
	if x.poisoned.Load() {
		return guard, ErrPoisoned
	}
	return guard, nil
}

// Lock acquires exclusive access to the payload, blocking the calling
// goroutine until all shared guards (and any exclusive guard) have been
// released. The returned guard is the same uniform reset-guaranteeing type as
// [Mutex.Lock] returns, and the contract is identical: always valid, must be
// released, with [ErrPoisoned] reported while the container is poisoned.
func (x *RWMutex[T]) Lock() (*MutRef[T], error) {
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
// for [RWMutex.Lock].
func (x *RWMutex[T]) TryLock() (*MutRef[T], error) {
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
func (x *RWMutex[T]) Do(f func(value *T)) error {
	guard, err := x.Lock()
	if err != nil {
		guard.Release()
		return err
	}
	defer guard.Release()
	f(guard.Value())
	return nil
}

// View acquires shared access and passes the payload to f, which must not
// mutate it. If the container is poisoned, [ErrPoisoned] is returned without
// calling f.
func (x *RWMutex[T]) View(f func(value *T)) error {
	guard, err := x.RLock()
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
func (x *RWMutex[T]) Reset() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.poisoned.Load() {
		return ErrPoisoned
	}
	x.reset(&x.value)
	return nil
}

// TryReset is like [RWMutex.Reset], without blocking, returning
// [ErrWouldBlock] if the payload is contended.
func (x *RWMutex[T]) TryReset() error {
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
func (x *RWMutex[T]) Take() (T, error) {
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
func (x *RWMutex[T]) Poisoned() bool {
	return x.poisoned.Load()
}

// ClearPoison acknowledges and clears the poisoned flag, after which
// acquisitions succeed without error again.
func (x *RWMutex[T]) ClearPoison() {
	if x.poisoned.Swap(false) {
		x.log.Debug().Log(`poison cleared`)
	}
}

func (x *RWMutex[T]) newGuard() *MutRef[T] {
	return &MutRef[T]{value: &x.value, reset: x.reset, unlock: x.mu.Unlock, fail: x.poison}
}

func (x *RWMutex[T]) poison() {
	if !x.poisoned.Swap(true) {
		x.log.Warning().Log(`poisoned by abnormal exclusive release`)
	}
}
