package player

import (
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
	"github.com/vrsync/vrsync/filesystem"
)

func TestCollectSockets(t *testing.T) {
	Convey("Given a temp dir with old and fresh sockets", t, func() {
		filesystem.SetMemMapFs()
		Reset(filesystem.SetOsFs)

		fs := filesystem.API()
		dir := filepath.Join("tmp", "vrsync")
		now := time.Now()

		write := func(name string, age time.Duration) string {
			path := filepath.Join(dir, name)
			So(afero.WriteFile(fs, path, nil, 0o600), ShouldBeNil)
			So(fs.Chtimes(path, now.Add(-age), now.Add(-age)), ShouldBeNil)
			return path
		}

		stale := write("mpv-0badf00d.sock", 48*time.Hour)
		fresh := write("mpv-deadbeef.sock", time.Minute)
		other := write("mpv-version.json", 48*time.Hour)

		Convey("Only abandoned sockets are removed", func() {
			So(collectSockets(dir, now), ShouldEqual, 1)

			for path, want := range map[string]bool{stale: false, fresh: true, other: true} {
				exists, _ := afero.Exists(fs, path)
				So(exists, ShouldEqual, want)
			}
		})
	})
}
