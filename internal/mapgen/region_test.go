package mapgen

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRegionFactorsShape(t *testing.T) {
	Convey("Given a region sized 6x5", t, func() {
		rng := rand.New(rand.NewSource(11))
		r := newRegion(6, 5, rng)

		Convey("factors returns a height x width grid", func() {
			f := r.factors()
			So(len(f), ShouldEqual, 5)
			for _, row := range f {
				So(len(row), ShouldEqual, 6)
			}
		})
	})
}

func TestRegionFactorsAreAncestryProducts(t *testing.T) {
	Convey("Given a region with children", t, func() {
		rng := rand.New(rand.NewSource(3))
		r := newRegion(3, 3, rng)
		So(len(r.children), ShouldBeGreaterThan, 0)

		Convey("Every leaf's value is scaled by every ancestor's factor", func() {
			f := r.factors()
			for a, row := range r.children {
				for b, child := range row {
					// a 3x3 region with regionChunkSize=4 splits into 1x1 leaves directly
					leaf := child.factors()[0][0]
					So(f[a][b], ShouldAlmostEqual, leaf*r.factor, 1e-9)
				}
			}
		})
	})
}

func TestRegionBaseCaseHasNoChildren(t *testing.T) {
	Convey("Given a 1x1 region", t, func() {
		rng := rand.New(rand.NewSource(5))
		r := newRegion(1, 1, rng)

		Convey("It has no children and its factors grid is a single cell", func() {
			So(r.children, ShouldBeEmpty)
			f := r.factors()
			So(len(f), ShouldEqual, 1)
			So(len(f[0]), ShouldEqual, 1)
			So(f[0][0], ShouldEqual, r.factor)
		})
	})
}

func TestRegionDeterministic(t *testing.T) {
	Convey("Given the same rng seed", t, func() {
		a := newRegion(7, 7, rand.New(rand.NewSource(21))).factors()
		b := newRegion(7, 7, rand.New(rand.NewSource(21))).factors()

		Convey("factors produce identical grids", func() {
			So(a, ShouldResemble, b)
		})
	})
}
