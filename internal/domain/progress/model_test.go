package progress_test

import (
	"testing"

	"github.com/okian/focusforge/internal/domain/progress"
	. "github.com/smartystreets/goconvey/convey"
)

func TestModelAccrual(t *testing.T) {
	Convey("Given a model hydrated with the default snapshot", t, func() {
		m := progress.NewModel(progress.DefaultSnapshot())

		Convey("When ticking 10 focused seconds at 0.5 points each", func() {
			for i := 0; i < 10; i++ {
				m.AccrueFocusSecond(0.5)
			}

			Convey("Then all counters advance together", func() {
				snap := m.Snapshot()
				So(snap.TotalSeconds, ShouldEqual, 10)
				So(snap.FocusSeconds, ShouldEqual, 10)
				So(snap.Points, ShouldEqual, 5.0)
				So(snap.DistractionCount, ShouldEqual, 0)
			})
		})

		Convey("When mixing focused and distracted seconds", func() {
			m.AccrueFocusSecond(0.5)
			m.AccrueDistractedSecond()
			m.AccrueDistractedSecond()
			m.AccrueFocusSecond(0.5)

			Convey("Then focus time never exceeds total time", func() {
				snap := m.Snapshot()
				So(snap.TotalSeconds, ShouldEqual, 4)
				So(snap.FocusSeconds, ShouldEqual, 2)
				So(snap.FocusSeconds, ShouldBeLessThanOrEqualTo, snap.TotalSeconds)
				So(snap.Points, ShouldEqual, 1.0)
			})
		})

		Convey("When recording distraction episodes", func() {
			m.RecordDistractionEpisode()
			m.RecordDistractionEpisode()

			Convey("Then only the episode counter moves", func() {
				snap := m.Snapshot()
				So(snap.DistractionCount, ShouldEqual, 2)
				So(snap.TotalSeconds, ShouldEqual, 0)
			})
		})
	})
}

func TestModelPurchase(t *testing.T) {
	crown, ok := progress.Lookup("hat-crown")
	if !ok {
		t.Fatal("catalog missing hat-crown")
	}

	Convey("Given a model with 45 points", t, func() {
		snap := progress.DefaultSnapshot()
		snap.Points = 45
		m := progress.NewModel(snap)

		Convey("When purchasing a 40-point item", func() {
			changed := m.Purchase(crown)

			Convey("Then the item is bought and equipped", func() {
				So(changed, ShouldBeTrue)
				out := m.Snapshot()
				So(out.Points, ShouldEqual, 5.0)
				So(out.Owned, ShouldResemble, []string{"hat-crown"})
				So(out.Equipped.Hat, ShouldEqual, "hat-crown")
			})

			Convey("And purchasing it again is a silent no-op", func() {
				before := m.Snapshot()
				So(m.Purchase(crown), ShouldBeFalse)
				So(m.Snapshot().Equal(before), ShouldBeTrue)
			})
		})

		Convey("When purchasing an unaffordable item", func() {
			robe, _ := progress.Lookup("outfit-robe")
			before := m.Snapshot()
			changed := m.Purchase(robe)

			Convey("Then nothing changes", func() {
				So(changed, ShouldBeFalse)
				So(m.Snapshot().Equal(before), ShouldBeTrue)
			})
		})
	})
}

func TestModelEquip(t *testing.T) {
	crown, _ := progress.Lookup("hat-crown")
	beanie, _ := progress.Lookup("hat-beanie")

	Convey("Given a model owning the crown", t, func() {
		snap := progress.DefaultSnapshot()
		snap.Points = 100
		m := progress.NewModel(snap)
		So(m.Purchase(crown), ShouldBeTrue)

		Convey("When equipping an unowned item", func() {
			before := m.Snapshot()
			changed := m.Equip(beanie)

			Convey("Then the operation is a silent no-op", func() {
				So(changed, ShouldBeFalse)
				So(m.Snapshot().Equal(before), ShouldBeTrue)
			})
		})

		Convey("When buying and equipping a second hat", func() {
			So(m.Purchase(beanie), ShouldBeTrue)
			So(m.EquippedIn(progress.SlotHat), ShouldEqual, "hat-beanie")

			Convey("And the first hat can be re-equipped", func() {
				So(m.Equip(crown), ShouldBeTrue)
				So(m.EquippedIn(progress.SlotHat), ShouldEqual, "hat-crown")
			})

			Convey("Then every equipped id stays in the inventory", func() {
				out := m.Snapshot()
				for _, slot := range progress.Slots() {
					if id := out.Equipped.Get(slot); id != "" {
						So(out.Owns(id), ShouldBeTrue)
					}
				}
			})
		})
	})
}

func TestDisplayHelpers(t *testing.T) {
	Convey("Given fractional points", t, func() {
		Convey("Then display truncates without rounding", func() {
			So(progress.DisplayPoints(5.0), ShouldEqual, 5)
			So(progress.DisplayPoints(5.5), ShouldEqual, 5)
			So(progress.DisplayPoints(5.99), ShouldEqual, 5)
			So(progress.DisplayPoints(0), ShouldEqual, 0)
		})
	})

	Convey("Given second counts", t, func() {
		Convey("Then they format as HH:MM:SS", func() {
			So(progress.FormatSeconds(0), ShouldEqual, "00:00:00")
			So(progress.FormatSeconds(61), ShouldEqual, "00:01:01")
			So(progress.FormatSeconds(3661), ShouldEqual, "01:01:01")
		})
	})
}
