package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})

		Convey("EnsureDir creates nested directories", func() {
			SetMemMapFs()
			dir := filepath.Join("a", "b", "c")
			So(EnsureDir(dir), ShouldBeNil)
			So(lo.Must(API().IsDir(dir)), ShouldBeTrue)
		})

		Convey("GacheFs writes through the active backend", func() {
			SetMemMapFs()
			f, err := GacheFs{}.OpenFile("state.json", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
			So(err, ShouldBeNil)
			_, err = f.Write([]byte("{}"))
			So(err, ShouldBeNil)
			So(f.Close(), ShouldBeNil)
			So(lo.Must(API().Exists("state.json")), ShouldBeTrue)
		})
	})
}
