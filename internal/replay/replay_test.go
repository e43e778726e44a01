package replay

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewFrameShape(t *testing.T) {
	Convey("Given a flat 2x2 owner/strength plane", t, func() {
		owner := []uint8{1, 0, 0, 2}
		strength := []uint8{10, 0, 0, 20}

		Convey("NewFrame nests it into [height][width]Cell", func() {
			frame := NewFrame(owner, strength, 2, 2)
			So(len(frame), ShouldEqual, 2)
			So(frame[0][0], ShouldResemble, Cell{1, 10})
			So(frame[1][1], ShouldResemble, Cell{2, 20})
		})
	})
}

func TestMarshalRoundTrip(t *testing.T) {
	Convey("Given a populated replay", t, func() {
		r := &Replay{
			Version:     CurrentVersion,
			Height:      2,
			Width:       2,
			NumPlayers:  2,
			NumFrames:   1,
			PlayerNames: []string{"Alpha", "Beta"},
			Productions: NewProductionGrid([]uint8{1, 2, 3, 4}, 2, 2),
			Frames:      [][][]Cell{NewFrame([]uint8{1, 0, 0, 2}, []uint8{5, 0, 0, 6}, 2, 2)},
			Moves:       [][][]int{NewMoveGrid([]int{0, 0, 0, 0}, 2, 2)},
			Seed:        42,
		}

		Convey("Marshal then Unmarshal reproduces the replay", func() {
			data, err := r.Marshal()
			So(err, ShouldBeNil)

			decoded, err := Unmarshal(data)
			So(err, ShouldBeNil)
			So(decoded.Version, ShouldEqual, CurrentVersion)
			So(decoded.PlayerNames, ShouldResemble, r.PlayerNames)
			So(decoded.Production(), ShouldResemble, r.Productions)
			So(decoded.Frames, ShouldResemble, r.Frames)
		})
	})
}
