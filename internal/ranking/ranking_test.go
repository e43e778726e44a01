package ranking

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRankSoleSurvivorWins(t *testing.T) {
	Convey("Given a 2-player match where player 2 is eliminated mid-match", t, func() {
		frames := [][]uint8{
			{1, 2, 0, 0}, // frame 0: both alive
			{1, 2, 0, 0}, // frame 1: both alive
			{1, 0, 0, 0}, // frame 2: player 2 eliminated
			{1, 0, 0, 0}, // frame 3: player 1 survives to the end
		}

		Convey("Player 1 ranks first and player 2 ranks last", func() {
			ranks, lastAlive := Rank(frames, 2)
			So(ranks[0], ShouldEqual, 0)
			So(ranks[1], ShouldEqual, 1)
			So(lastAlive[0], ShouldEqual, 3)
			So(lastAlive[1], ShouldEqual, 1)
		})
	})
}

func TestRankTieBrokenByCumulativeTerritory(t *testing.T) {
	Convey("Given two players eliminated in the same frame with equal final territory", t, func() {
		frames := [][]uint8{
			{1, 2, 0, 0},
			{1, 2, 0, 0}, // both held 1 cell here; player 1 held more earlier
			{0, 0, 0, 0}, // both eliminated simultaneously
		}
		// Give player 1 more cumulative territory earlier so it outranks
		// player 2 despite an identical final-frame territory count.
		frames[0] = []uint8{1, 1, 2, 0}

		Convey("Higher cumulative territory wins the tie", func() {
			ranks, _ := Rank(frames, 2)
			So(ranks[0], ShouldEqual, 0)
			So(ranks[1], ShouldEqual, 1)
		})
	})
}
