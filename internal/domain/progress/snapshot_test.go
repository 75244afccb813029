package progress_test

import (
	"testing"

	"github.com/okian/focusforge/internal/domain/progress"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSnapshotRoundTrip(t *testing.T) {
	Convey("Given a populated snapshot", t, func() {
		snap := progress.Snapshot{
			TotalSeconds:     120,
			FocusSeconds:     100,
			DistractionCount: 2,
			Points:           12.5,
			Owned:            []string{"hat-crown", "acc-star"},
			Equipped:         progress.Equipped{Hat: "hat-crown", Accessory: "acc-star"},
		}

		Convey("When encoding and decoding", func() {
			raw, err := snap.Encode()
			So(err, ShouldBeNil)
			out, err := progress.DecodeSnapshot(raw)

			Convey("Then the result matches the original", func() {
				So(err, ShouldBeNil)
				So(out.Equal(snap), ShouldBeTrue)
			})
		})
	})
}

func TestSnapshotTolerantDecode(t *testing.T) {
	Convey("Given partial or legacy payloads", t, func() {
		Convey("When decoding an empty object", func() {
			out, err := progress.DecodeSnapshot([]byte(`{}`))

			Convey("Then defaults fill every field", func() {
				So(err, ShouldBeNil)
				So(out.Equal(progress.DefaultSnapshot()), ShouldBeTrue)
			})
		})

		Convey("When decoding empty input", func() {
			out, err := progress.DecodeSnapshot(nil)
			So(err, ShouldBeNil)
			So(out.Equal(progress.DefaultSnapshot()), ShouldBeTrue)
		})

		Convey("When decoding a payload missing newer fields", func() {
			out, err := progress.DecodeSnapshot([]byte(`{"totalSeconds": 30, "points": 7.5}`))

			Convey("Then known fields load and the rest default", func() {
				So(err, ShouldBeNil)
				So(out.TotalSeconds, ShouldEqual, 30)
				So(out.Points, ShouldEqual, 7.5)
				So(out.FocusSeconds, ShouldEqual, 0)
				So(out.Owned, ShouldBeEmpty)
			})
		})

		Convey("When decoding malformed JSON", func() {
			_, err := progress.DecodeSnapshot([]byte(`{"totalSeconds": `))

			Convey("Then an error reports the payload unusable", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When decoding unknown fields", func() {
			out, err := progress.DecodeSnapshot([]byte(`{"totalSeconds": 5, "futureField": true}`))
			So(err, ShouldBeNil)
			So(out.TotalSeconds, ShouldEqual, 5)
		})
	})
}

func TestSanitize(t *testing.T) {
	Convey("Given snapshots violating invariants", t, func() {
		Convey("When focus time exceeds total time", func() {
			out := progress.Sanitize(progress.Snapshot{TotalSeconds: 5, FocusSeconds: 9})
			So(out.FocusSeconds, ShouldEqual, 5)
		})

		Convey("When counters are negative", func() {
			out := progress.Sanitize(progress.Snapshot{
				TotalSeconds:     -1,
				FocusSeconds:     -2,
				DistractionCount: -3,
				Points:           -4,
			})
			So(out.Equal(progress.DefaultSnapshot()), ShouldBeTrue)
		})

		Convey("When the inventory has duplicates", func() {
			out := progress.Sanitize(progress.Snapshot{
				Owned: []string{"hat-crown", "hat-crown", "", "acc-star"},
			})
			So(out.Owned, ShouldResemble, []string{"hat-crown", "acc-star"})
		})

		Convey("When an equipped item is not owned", func() {
			out := progress.Sanitize(progress.Snapshot{
				Owned:    []string{"hat-crown"},
				Equipped: progress.Equipped{Hat: "hat-crown", Outfit: "outfit-robe"},
			})
			So(out.Equipped.Hat, ShouldEqual, "hat-crown")
			So(out.Equipped.Outfit, ShouldEqual, "")
		})
	})
}

func TestCatalog(t *testing.T) {
	Convey("Given the shop catalog", t, func() {
		items := progress.Catalog()

		Convey("Then it holds the six cosmetics with positive costs", func() {
			So(len(items), ShouldEqual, 6)
			for _, item := range items {
				So(item.Cost, ShouldBeGreaterThan, 0)
				So(item.ID, ShouldNotBeEmpty)
			}
		})

		Convey("And lookups find known ids", func() {
			item, ok := progress.Lookup("outfit-hoodie")
			So(ok, ShouldBeTrue)
			So(item.Slot, ShouldEqual, progress.SlotOutfit)
			So(item.Cost, ShouldEqual, 35)
		})

		Convey("And unknown ids miss", func() {
			_, ok := progress.Lookup("hat-unobtainium")
			So(ok, ShouldBeFalse)
		})
	})
}
