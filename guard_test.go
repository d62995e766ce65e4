package tempref

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_releaseIdempotent(t *testing.T) {
	c := newIntCell(1)

	ref := c.Borrow()
	ref.Release()
	ref.Release()
	ref.Release()
	require.Equal(t, 0, c.borrows)

	// a fresh shared guard is unaffected by stale releases
	other := c.Borrow()
	ref.Release()
	require.Equal(t, 1, c.borrows)
	other.Release()
}

func TestRef_useAfterRelease(t *testing.T) {
	c := newIntCell(1)
	ref := c.Borrow()
	ref.Release()
	assert.PanicsWithValue(t, `tempref: use of released guard`, func() {
		_ = ref.Value()
	})
}

func TestMutRef_releaseIdempotent(t *testing.T) {
	var count int
	c := NewCell(0, func(*int) { count++ })

	m := c.BorrowMut()
	m.Release()
	m.Release()
	require.Equal(t, 1, count)
	require.Equal(t, 0, c.borrows)
}

func TestMutRef_useAfterRelease(t *testing.T) {
	c := newIntCell(1)
	m := c.BorrowMut()
	m.Release()
	assert.PanicsWithValue(t, `tempref: use of released guard`, func() {
		_ = m.Value()
	})
	assert.PanicsWithValue(t, `tempref: use of released guard`, func() {
		m.Reset()
	})
}

func TestMutRef_manualReset(t *testing.T) {
	var count int
	c := NewCell(5, func(n *int) {
		count++
		*n = 0
	})

	m := c.BorrowMut()
	*m.Value() = 3
	m.Reset()
	require.Equal(t, 0, *m.Value())
	require.Equal(t, 1, count)

	// the guard remains held, and release still resets
	*m.Value() = 7
	m.Release()
	require.Equal(t, 2, count)
}

func TestMutRef_releasePreservesPanicValue(t *testing.T) {
	m := NewMutex(0, func(*int) {})

	require.PanicsWithError(t, io.ErrUnexpectedEOF.Error(), func() {
		guard, err := m.Lock()
		require.NoError(t, err)
		defer guard.Release()
		panic(io.ErrUnexpectedEOF)
	})
	assert.True(t, m.Poisoned())
}

func TestMutRef_resetPanicPoisons(t *testing.T) {
	first := true
	m := NewMutex(0, func(*int) {
		if first {
			first = false
			panic(`reset failed`)
		}
	})

	require.PanicsWithValue(t, `reset failed`, func() {
		guard, err := m.Lock()
		require.NoError(t, err)
		guard.Release()
	})

	// the lock was still released, and the failure was recorded
	require.True(t, m.Poisoned())
	guard, err := m.TryLock()
	require.ErrorIs(t, err, ErrPoisoned)
	require.NotNil(t, guard)
	guard.Release()
}
