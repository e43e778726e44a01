package board

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIsqrt(t *testing.T) {
	Convey("Given a handful of perfect and non-perfect squares", t, func() {
		So(Isqrt(0), ShouldEqual, 0)
		So(Isqrt(1), ShouldEqual, 1)
		So(Isqrt(25), ShouldEqual, 5)
		So(Isqrt(26), ShouldEqual, 5)
		So(Isqrt(900), ShouldEqual, 30)
		So(Isqrt(899), ShouldEqual, 29)
	})
}

func TestAliveMask(t *testing.T) {
	Convey("Given a 2x2 board owned by players 1 and 2", t, func() {
		m := NewGameMap(2, 2, 3, 1)
		m.Owner = []uint8{1, 0, 0, 2}
		Convey("Players 1 and 2 are alive, player 3 is not", func() {
			alive := m.AliveMask()
			So(alive, ShouldResemble, []bool{true, true, false})
			So(m.AliveCount(), ShouldEqual, 2)
		})
	})
}
