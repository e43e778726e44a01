package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const fixtureYaml = `
kind: match
def:
  width: 40
  height: 40
  seed: 7
  bots:
    - image: bots/alpha:latest
      name: Alpha
    - image: bots/beta:latest
  frameTimeout: 2s
`

func writeFixture(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "match.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromYaml(t *testing.T) {
	Convey("Given a match config wrapped in an envelope", t, func() {
		path := writeFixture(t, fixtureYaml)

		Convey("FromYaml decodes the nested def into a MatchConfig", func() {
			cfg, err := FromYaml(path)
			So(err, ShouldBeNil)
			So(cfg.Width, ShouldEqual, 40)
			So(cfg.Height, ShouldEqual, 40)
			So(cfg.Seed, ShouldEqual, int64(7))
			So(len(cfg.Bots), ShouldEqual, 2)
			So(cfg.Bots[0].Name, ShouldEqual, "Alpha")

			Convey("Explicit timeouts parse and unset ones fall back to defaults", func() {
				frame, err := cfg.FrameTimeoutDuration()
				So(err, ShouldBeNil)
				So(frame, ShouldEqual, 2*time.Second)

				initTimeout, err := cfg.InitTimeoutDuration()
				So(err, ShouldBeNil)
				So(initTimeout, ShouldEqual, 30*time.Second)
			})
		})
	})
}

func TestFromYamlRejectsBadDuration(t *testing.T) {
	Convey("Given a config with an invalid timeout string", t, func() {
		cfg := &MatchConfig{FrameTimeout: "not-a-duration"}

		Convey("FrameTimeoutDuration returns an error", func() {
			_, err := cfg.FrameTimeoutDuration()
			So(err, ShouldNotBeNil)
		})
	})
}
