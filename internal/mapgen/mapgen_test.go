package mapgen

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerateDeterministic(t *testing.T) {
	Convey("Given the same seed and dimensions", t, func() {
		a, err := Generate(nil, 32, 32, 2, 42)
		So(err, ShouldBeNil)
		b, err := Generate(nil, 32, 32, 2, 42)
		So(err, ShouldBeNil)

		Convey("Generate produces byte-identical boards", func() {
			So(a.Owner, ShouldResemble, b.Owner)
			So(a.Production, ShouldResemble, b.Production)
			So(a.Strength, ShouldResemble, b.Strength)
		})
	})
}

func TestGenerateDistinctSeeds(t *testing.T) {
	Convey("Given two different seeds", t, func() {
		a, err := Generate(nil, 32, 32, 2, 1)
		So(err, ShouldBeNil)
		b, err := Generate(nil, 32, 32, 2, 2)
		So(err, ShouldBeNil)

		Convey("The boards differ in at least one plane", func() {
			same := true
			for i := range a.Production {
				if a.Production[i] != b.Production[i] || a.Strength[i] != b.Strength[i] {
					same = false
					break
				}
			}
			So(same, ShouldBeFalse)
		})
	})
}

func TestGenerateOwnerSeedCount(t *testing.T) {
	Convey("Given a request for 4 players", t, func() {
		m, err := Generate(nil, 40, 40, 4, 7)
		So(err, ShouldBeNil)

		Convey("Exactly 4 distinct non-zero owner seeds are placed", func() {
			seen := map[uint8]bool{}
			for _, o := range m.Owner {
				if o != 0 {
					seen[o] = true
				}
			}
			So(len(seen), ShouldEqual, 4)
		})

		Convey("Every owned cell has production at least 1", func() {
			for i, o := range m.Owner {
				if o != 0 {
					So(m.Production[i], ShouldBeGreaterThanOrEqualTo, 1)
				}
			}
		})
	})
}

func TestGenerateDegenerateDimensionsFail(t *testing.T) {
	Convey("Given dimensions too small to trim evenly across players", t, func() {
		_, err := Generate(nil, 2, 2, 5, 1)
		Convey("Generate returns a GenerationError rather than panicking", func() {
			So(err, ShouldNotBeNil)
			_, ok := err.(*GenerationError)
			So(ok, ShouldBeTrue)
		})
	})
}

func TestGenerateRejectsInvalidPlayerCount(t *testing.T) {
	Convey("Given an out-of-range player count", t, func() {
		_, err := Generate(nil, 16, 16, 0, 1)
		So(err, ShouldNotBeNil)

		_, err = Generate(nil, 16, 16, 7, 1)
		So(err, ShouldNotBeNil)
	})
}
