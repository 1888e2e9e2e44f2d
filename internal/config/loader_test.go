package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/negade/gebeya/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad_Defaults(t *testing.T) {
	Convey("Given no file and no environment overrides", t, func() {
		ctx := context.Background()

		cfg, err := config.Load(ctx)

		Convey("Then the defaults apply", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8090")
			So(cfg.Store, ShouldEqual, config.StoreMemory)
			So(cfg.Notifier, ShouldEqual, config.NotifierLog)
			So(cfg.QueueSize, ShouldEqual, 10_000)
			So(cfg.MatchThreshold, ShouldEqual, 50)
			So(cfg.Weights.CategoryMatch, ShouldEqual, 40)
			So(cfg.Weights.BudgetTolerance, ShouldEqual, 1.2)
		})
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	Convey("Given environment overrides", t, func() {
		ctx := context.Background()
		t.Setenv("GEBEYA_ADDR", ":9999")
		t.Setenv("GEBEYA_MATCH_THRESHOLD", "65")
		t.Setenv("GEBEYA_STORE", "sqlite")
		t.Setenv("GEBEYA_WEIGHTS__CATEGORY_MATCH", "45")

		cfg, err := config.Load(ctx)

		Convey("Then env values win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9999")
			So(cfg.MatchThreshold, ShouldEqual, 65)
			So(cfg.Store, ShouldEqual, config.StoreSQLite)
			So(cfg.Weights.CategoryMatch, ShouldEqual, 45)
		})

		Convey("And untouched keys keep their defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Notifier, ShouldEqual, config.NotifierLog)
			So(cfg.Weights.BudgetFull, ShouldEqual, 20)
		})
	})
}

func TestLoad_FromFile(t *testing.T) {
	Convey("Given a YAML config file", t, func() {
		ctx := context.Background()

		path := filepath.Join(t.TempDir(), "config.yaml")
		body := []byte("addr: \":7070\"\nlog_level: debug\nworker_count: 3\n")
		So(os.WriteFile(path, body, 0o600), ShouldBeNil)
		t.Setenv("GEBEYA_CONFIG", path)

		Convey("When loading", func() {
			cfg, err := config.Load(ctx)

			Convey("Then file values layer over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.WorkerCount, ShouldEqual, 3)
			})
		})

		Convey("When an env var contradicts the file", func() {
			t.Setenv("GEBEYA_ADDR", ":6060")

			cfg, err := config.Load(ctx)

			Convey("Then the env var wins", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6060")
			})
		})
	})
}

func TestLoad_Validation(t *testing.T) {
	Convey("Given invalid configuration values", t, func() {
		ctx := context.Background()

		Convey("When the store backend is unknown", func() {
			t.Setenv("GEBEYA_STORE", "papyrus")
			_, err := config.Load(ctx)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the notifier backend is unknown", func() {
			t.Setenv("GEBEYA_NOTIFIER", "pigeon")
			_, err := config.Load(ctx)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the threshold leaves [1,100]", func() {
			t.Setenv("GEBEYA_MATCH_THRESHOLD", "0")
			_, err := config.Load(ctx)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the config file does not exist", func() {
			t.Setenv("GEBEYA_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
			_, err := config.Load(ctx)
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}
