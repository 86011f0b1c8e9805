package cmd

import (
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vrsync/vrsync/config"
	"github.com/vrsync/vrsync/key"
)

func TestSelectFields(t *testing.T) {
	Convey("Given the field registry", t, func() {
		Convey("Live fields are the reconciliation tuning", func() {
			fields, err := selectFields(nil, true)
			So(err, ShouldBeNil)
			So(lo.Map(fields, func(f config.Field, _ int) string { return f.Key }), ShouldResemble,
				[]string{key.SyncDriftToleranceMs, key.SyncSmoothingFactor})
		})

		Convey("Named fields come back sorted", func() {
			fields, err := selectFields([]string{key.RenderFPS, key.ListenPort}, false)
			So(err, ShouldBeNil)
			So(fields[0].Key, ShouldEqual, key.ListenPort)
			So(fields[1].Key, ShouldEqual, key.RenderFPS)
		})

		Convey("Unknown keys suggest the closest one", func() {
			_, err := selectFields([]string{"listen.prot"}, false)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, key.ListenPort)
		})
	})
}

func TestLiveHint(t *testing.T) {
	Convey("Given live reload enabled", t, func() {
		viper.Set(key.SyncLiveReload, true)
		Reset(func() { viper.Set(key.SyncLiveReload, true) })

		Convey("Live fields apply on the next frame", func() {
			So(liveHint(config.Default[key.SyncDriftToleranceMs]), ShouldContainSubstring, "next frame")
		})

		Convey("Other fields need a restart", func() {
			So(liveHint(config.Default[key.ListenPort]), ShouldContainSubstring, "restart")
		})

		Convey("Disabling live reload points at the switch", func() {
			viper.Set(key.SyncLiveReload, false)
			So(liveHint(config.Default[key.SyncSmoothingFactor]), ShouldContainSubstring, key.SyncLiveReload)
		})
	})
}
