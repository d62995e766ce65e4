package tempref_test

import (
	"fmt"
	"sync"

	"github.com/joeycumines/go-tempref"
)

// Demonstrates reusing one allocation as scratch space: the buffer is
// zeroed automatically every time exclusive access ends, so state never
// leaks from one use into the next.
func ExampleCell() {
	scratch := tempref.NewCell(make([]byte, 8), func(b *[]byte) {
		for i := range *b {
			(*b)[i] = 0
		}
	})

	sum := func(data []byte) int {
		guard := scratch.BorrowMut()
		defer guard.Release() // zeroes the buffer, even on panic

		buf := *guard.Value()
		copy(buf, data)
		var total int
		for _, b := range buf {
			total += int(b)
		}
		return total
	}

	fmt.Println(sum([]byte{1, 2, 3}))
	fmt.Println(sum([]byte{10})) // stale bytes from the previous use are gone

	ref := scratch.Borrow()
	defer ref.Release()
	fmt.Println(*ref.Value())

	// Output:
	// 6
	// 10
	// [0 0 0 0 0 0 0 0]
}

// Demonstrates the thread-safe variant: each worker gets the workspace in
// its canonical form, no matter what the previous holder did to it.
func ExampleMutex() {
	workspace := tempref.NewMutex(make([]int, 4), func(v *[]int) {
		for i := range *v {
			(*v)[i] = 0
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guard, err := workspace.Lock()
			if err != nil {
				fmt.Println(`poisoned:`, err)
			}
			defer guard.Release()
			for j := range *guard.Value() {
				(*guard.Value())[j] = i // scribble freely
			}
		}()
	}
	wg.Wait()

	final, _ := workspace.Take()
	fmt.Println(final)

	// Output:
	// [0 0 0 0]
}

// Demonstrates shared reads coexisting, with resets only on the write path.
func ExampleRWMutex() {
	stats := tempref.NewRWMutexWith(func() map[string]int {
		return make(map[string]int)
	}, func(counts *map[string]int) {
		clear(*counts)
	})

	_ = stats.Do(func(counts *map[string]int) {
		(*counts)[`hits`] = 42 // discarded on release
	})

	_ = stats.View(func(counts *map[string]int) {
		fmt.Println(len(*counts))
	})

	// Output:
	// 0
}
