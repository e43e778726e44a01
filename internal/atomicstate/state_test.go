package atomicstate

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAdvanceTo(t *testing.T) {
	Convey("Given a cell in Created", t, func() {
		c := NewCell(Created)

		Convey("AdvanceTo a later state succeeds and updates the value", func() {
			So(c.AdvanceTo(Running), ShouldBeTrue)
			So(c.Load(), ShouldEqual, Running)
		})

		Convey("AdvanceTo an earlier or equal state fails and leaves the value unchanged", func() {
			c.Store(Running)
			So(c.AdvanceTo(Started), ShouldBeFalse)
			So(c.Load(), ShouldEqual, Running)
		})
	})
}

func TestAdvanceToIsRaceSafe(t *testing.T) {
	Convey("Given many goroutines racing to close a session", t, func() {
		c := NewCell(Running)
		const n = 64
		successes := int32(0)
		var mu sync.Mutex
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				if c.AdvanceTo(Closing) {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Exactly one goroutine wins the transition", func() {
			So(successes, ShouldEqual, int32(1))
			So(c.Load(), ShouldEqual, Closing)
		})
	})
}
