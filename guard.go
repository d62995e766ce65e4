package tempref

type (
	// Reset is a caller-supplied operation that receives exclusive access to
	// a container's payload, and mutates it into a canonical form. It is
	// invoked exactly once per exclusive-access release, always serialized by
	// the container's own access discipline, so it need not be safe for
	// concurrent invocation.
	//
	// A Reset must not attempt to (re)acquire access to the same container:
	// doing so deadlocks ([Mutex], [RWMutex]) or fails with
	// [ErrBorrowConflict] ([Cell]).
	Reset[T any] func(value *T)

	// Ref is a shared (read-only) guard on a container's payload. Multiple
	// Ref guards may be live at once. Releasing a Ref never runs the reset
	// operation.
	//
	// A Ref is not safe for concurrent use.
	Ref[T any] struct {
		value   *T
		release func()
	}

	// MutRef is an exclusive guard on a container's payload, uniform across
	// all three container variants. At most one MutRef is live per container,
	// and no Ref is live while it is.
	//
	// Releasing a MutRef runs the container's reset operation exactly once,
	// then returns access to the container. Release should be deferred
	// directly (`defer guard.Release()`): that way reset runs on every exit
	// path from the access scope, and an unwinding panic is detected,
	// poisoning lock-backed containers before being re-raised.
	//
	// A MutRef is not safe for concurrent use.
	MutRef[T any] struct {
		value  *T
		reset  Reset[T]
		unlock func()
		fail   func() // marks the container poisoned, nil for Cell
	}
)

// Value returns the payload. The payload must not be mutated through a shared
// guard. Value panics if the guard has been released.
func (x *Ref[T]) Value() *T {
	if x.release == nil {
		panic(`tempref: use of released guard`)
	}
	return x.value
}

// Release returns shared access to the container. Calling Release more than
// once is a no-op.
func (x *Ref[T]) Release() {
	if release := x.release; release != nil {
		x.release = nil
		release()
	}
}

// Value returns the payload, for reading and mutation. Value panics if the
// guard has been released.
func (x *MutRef[T]) Value() *T {
	if x.unlock == nil {
		panic(`tempref: use of released guard`)
	}
	return x.value
}

// Reset invokes the reset operation on the payload immediately, while the
// guard remains held. The reset operation will still run again on Release.
// Reset panics if the guard has been released.
func (x *MutRef[T]) Reset() {
	if x.unlock == nil {
		panic(`tempref: use of released guard`)
	}
	x.reset(x.value)
}

// Release runs the reset operation on the payload, then returns exclusive
// access to the container. Calling Release more than once is a no-op.
//
// When deferred directly from the access scope, Release detects an unwinding
// panic, in which case it marks lock-backed containers as poisoned, before
// running reset, releasing access, and re-raising the panic. The same
// poisoning occurs if the reset operation itself panics.
func (x *MutRef[T]) Release() {
	unlock := x.unlock
	if unlock == nil {
		return
	}
	x.unlock = nil
	abnormal := true
	defer func() {
		if abnormal && x.fail != nil {
			x.fail()
		}
		unlock()
	}()
	if r := recover(); r != nil {
		x.reset(x.value)
		panic(r)
	}
	x.reset(x.value)
	abnormal = false
}

// noCopy may be embedded into structs which must not be copied after first
// use, flagging misuse via `go vet -copylocks`.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
