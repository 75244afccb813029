package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/focusforge/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given a clean environment", t, func() {
		// goconvey re-runs this closure for every leaf, but env vars set by
		// t.Setenv in one branch persist into sibling branches; clear them so
		// each branch truly starts from a clean environment.
		for _, key := range []string{
			"FOCUSFORGE_CONFIG",
			"FOCUSFORGE_ADDR",
			"FOCUSFORGE_LOG_LEVEL",
			"FOCUSFORGE_IDLE_THRESHOLD_SEC",
			"FOCUSFORGE_TICK_INTERVAL_MS",
		} {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}

		Convey("When loading with nothing set", func() {
			cfg, err := config.Load(ctx)

			Convey("Then the defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":4173")
				So(cfg.LogLevel, ShouldEqual, "info")
				So(cfg.TickIntervalMS, ShouldEqual, 1000)
				So(cfg.IdleThresholdSec, ShouldEqual, 60)
				So(cfg.PointsPerFocusSecond, ShouldEqual, 0.5)
				So(cfg.FlushEverySeconds, ShouldEqual, 10)
				So(cfg.SessionTTLHours, ShouldEqual, 168)
			})
		})

		Convey("When environment variables override", func() {
			t.Setenv("FOCUSFORGE_ADDR", ":9999")
			t.Setenv("FOCUSFORGE_LOG_LEVEL", "debug")
			t.Setenv("FOCUSFORGE_IDLE_THRESHOLD_SEC", "120")
			cfg, err := config.Load(ctx)

			Convey("Then the overridden keys change and the rest stay default", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9999")
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.IdleThresholdSec, ShouldEqual, 120)
				So(cfg.TickIntervalMS, ShouldEqual, 1000)
			})
		})

		Convey("When a config file is provided", func() {
			path := filepath.Join(t.TempDir(), "config.yaml")
			raw := []byte("addr: \":8080\"\npoints_per_focus_second: 1.5\n")
			So(os.WriteFile(path, raw, 0o600), ShouldBeNil)
			t.Setenv("FOCUSFORGE_CONFIG", path)

			Convey("Then file values layer over defaults", func() {
				cfg, err := config.Load(ctx)
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8080")
				So(cfg.PointsPerFocusSecond, ShouldEqual, 1.5)
			})

			Convey("Then env still beats the file", func() {
				t.Setenv("FOCUSFORGE_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
			})
		})

		Convey("When the config file is missing", func() {
			t.Setenv("FOCUSFORGE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
			_, err := config.Load(ctx)
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})

		Convey("When a value fails validation", func() {
			t.Setenv("FOCUSFORGE_TICK_INTERVAL_MS", "0")
			_, err := config.Load(ctx)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
