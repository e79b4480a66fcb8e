package addtorrent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/boypt/addtorrent/client"
	"github.com/boypt/addtorrent/ui/widget"
)

func countAdded(e interface {
	OnTorrentAdded(func(*client.TorrentInfo)) widget.Subscription
}) *[]*client.TorrentInfo {
	var got []*client.TorrentInfo
	e.OnTorrentAdded(func(info *client.TorrentInfo) { got = append(got, info) })
	return &got
}

func TestFileDialogSubmit(t *testing.T) {
	c := newFakeClient()
	c.infos["/tmp/uploads/a.torrent"] = &client.TorrentInfo{InfoHash: "aa", Filename: "/tmp/uploads/a.torrent", Name: "A"}
	env, _ := testEnv(c)
	d := NewFile(env, c)
	got := countAdded(d)

	if err := d.Submit(); !errors.Is(err, widget.ErrNotLoaded) {
		t.Errorf("Submit() before load = %v", err)
	}
	d.Show()
	if d.FileInput().Opacity >= 0.001 {
		t.Errorf("real file input visible, opacity %v", d.FileInput().Opacity)
	}
	if err := d.Submit(); !errors.Is(err, ErrNoFile) {
		t.Errorf("Submit() without file = %v", err)
	}
	if err := d.SelectFile("a.torrent", strings.NewReader("d4:infode")); err != nil {
		t.Fatal(err)
	}
	if d.FakeFile().Value() != "a.torrent" {
		t.Errorf("fake input shows %q", d.FakeFile().Value())
	}
	if err := d.Submit(); err != nil {
		t.Fatal(err)
	}
	if d.State() != widget.Hidden || d.Busy() {
		t.Errorf("state %v busy %v after submit", d.State(), d.Busy())
	}
	if len(*got) != 1 || (*got)[0].InfoHash != "aa" {
		t.Errorf("torrentAdded %+v", *got)
	}
	if len(c.infoReqs) != 1 || c.infoReqs[0] != "/tmp/uploads/a.torrent" {
		t.Errorf("info requested for %v", c.infoReqs)
	}
}

func TestFileDialogFalsyInfo(t *testing.T) {
	c := newFakeClient()
	env, n := testEnv(c)
	d := NewFile(env, c)
	got := countAdded(d)
	d.Show()
	if err := d.SelectFile("junk.torrent", strings.NewReader("junk")); err != nil {
		t.Fatal(err)
	}
	if err := d.Submit(); err != nil {
		t.Fatal(err)
	}
	if len(*got) != 0 {
		t.Errorf("falsy info announced %d times", len(*got))
	}
	if len(n.seen) != 0 {
		t.Errorf("falsy info should be silent, got %+v", n.seen)
	}
}

func TestFileDialogUploadError(t *testing.T) {
	c := newFakeClient()
	c.uploadErr = errors.New("disk full")
	env, n := testEnv(c)
	d := NewFile(env, c)
	got := countAdded(d)
	var errs []error
	d.On(widget.EventError, func(arg interface{}) { errs = append(errs, arg.(error)) })
	d.Show()
	d.SelectFile("a.torrent", strings.NewReader("x"))
	if err := d.Submit(); err != nil {
		t.Fatal(err)
	}
	if len(*got) != 0 || len(errs) != 1 || len(n.seen) != 1 {
		t.Errorf("added %d errors %v notes %+v", len(*got), errs, n.seen)
	}
	if d.Busy() || d.State() != widget.Shown {
		t.Errorf("busy %v state %v after failed upload", d.Busy(), d.State())
	}
	if len(c.infoReqs) != 0 {
		t.Error("info requested after failed upload")
	}
}

func TestFileDialogBusy(t *testing.T) {
	c := newFakeClient()
	loop := widget.NewLoop()
	env := widget.Env{Loader: c, Dispatcher: loop, Notifier: &notes{}}
	d := NewFile(env, c)

	// the load callback stays queued until the loop runs
	d.Show()
	if d.State() != widget.Loading {
		t.Fatalf("state %v", d.State())
	}
	go loop.Run(d.Context())
	loop.Settle()
	loop.Call(func() {
		d.SelectFile("a.torrent", strings.NewReader("x"))
		if err := d.Submit(); err != nil {
			t.Error(err)
		}
		if err := d.Submit(); !errors.Is(err, ErrBusy) {
			t.Errorf("second Submit() = %v", err)
		}
	})
	loop.Settle()
	loop.Call(func() {
		if d.Busy() {
			t.Error("still busy after completion")
		}
	})
	d.Destroy()
}

func TestFileDialogCancelButton(t *testing.T) {
	c := newFakeClient()
	env, _ := testEnv(c)
	d := NewFile(env, c)
	d.Show()
	d.Cancel()
	if d.State() != widget.Hidden {
		t.Errorf("state %v after cancel", d.State())
	}
}

func TestURLDialogOK(t *testing.T) {
	c := newFakeClient()
	c.downloads["http://example.com/a.torrent"] = "/tmp/downloads/a.torrent"
	c.infos["/tmp/downloads/a.torrent"] = &client.TorrentInfo{InfoHash: "aa", Name: "A"}
	env, _ := testEnv(c)
	u := NewURL(env, c)
	got := countAdded(u)
	u.Show()
	if err := u.OK(); !errors.Is(err, ErrEmptyURL) {
		t.Errorf("OK() without url = %v", err)
	}
	u.SetURL(" http://example.com/a.torrent ")
	if err := u.OK(); err != nil {
		t.Fatal(err)
	}
	if u.State() != widget.Hidden {
		t.Errorf("state %v after OK", u.State())
	}
	if len(*got) != 1 || (*got)[0].InfoHash != "aa" {
		t.Errorf("torrentAdded %+v", *got)
	}
}

// The URL dialog announces a torrent even when the server could not parse
// the download; the file dialog does not. RequireInfo aligns the two.
func TestURLDialogFalsyInfoStillNotifies(t *testing.T) {
	c := newFakeClient()
	c.downloads["http://example.com/junk"] = "/tmp/downloads/junk"
	env, _ := testEnv(c)

	u := NewURL(env, c)
	got := countAdded(u)
	u.SetURL("http://example.com/junk")
	if err := u.OK(); err != nil {
		t.Fatal(err)
	}
	if len(*got) != 1 || (*got)[0] != nil {
		t.Errorf("want one nil notification, got %+v", *got)
	}

	strict := NewURL(env, c)
	strict.RequireInfo = true
	got = countAdded(strict)
	strict.SetURL("http://example.com/junk")
	if err := strict.OK(); err != nil {
		t.Fatal(err)
	}
	if len(*got) != 0 {
		t.Errorf("RequireInfo announced %d torrents", len(*got))
	}
}

func TestURLDialogDownloadError(t *testing.T) {
	c := newFakeClient()
	env, n := testEnv(c)
	u := NewURL(env, c)
	got := countAdded(u)
	u.SetURL("http://example.com/missing.torrent")
	u.OKButton().Click()
	if len(*got) != 0 || len(c.infoReqs) != 0 {
		t.Error("failed download continued")
	}
	if len(n.seen) != 1 || !strings.Contains(n.seen[0].Message, "404") {
		t.Errorf("notes %+v", n.seen)
	}
}

func TestURLDialogCancel(t *testing.T) {
	c := newFakeClient()
	env, _ := testEnv(c)
	u := NewURL(env, c)
	u.Show()
	u.SetURL("http://example.com/a.torrent")
	u.Cancel()
	if u.URLInput().Value() != "" || u.State() != widget.Hidden {
		t.Errorf("cancel left value %q state %v", u.URLInput().Value(), u.State())
	}
	if len(c.infoReqs) != 0 {
		t.Error("cancel made a remote call")
	}
}

func TestURLDialogTranslated(t *testing.T) {
	c := newFakeClient()
	env, _ := testEnv(c)
	env.T = func(s string) string { return "<" + s + ">" }
	u := NewURL(env, c)
	if u.Options().Title != "<From Url>" {
		t.Errorf("title %q", u.Options().Title)
	}
	if u.Content().Text("label") != "<Url>" || u.OKButton().Text != "<Ok>" {
		t.Errorf("label %q ok %q", u.Content().Text("label"), u.OKButton().Text)
	}
}

func TestFilesTabSetTorrent(t *testing.T) {
	ft := NewFilesTab()
	ft.SetTorrent(sampleInfo(0))
	if ft.Table().Len() != 2 {
		t.Fatalf("rows %d", ft.Table().Len())
	}
	if row := ft.Table().Rows()[0]; row[0] != "" || row[2] != "1.0 MiB" {
		t.Errorf("row %v", row)
	}
	ft.SetTorrent(nil)
	if ft.Table().Len() != 0 {
		t.Error("nil torrent left rows")
	}
}

func TestFilesTabLoad(t *testing.T) {
	c := newFakeClient()
	ft := NewFilesTab()
	ft.SetTorrent(sampleInfo(1))
	tabs := widget.NewTabs(widget.Env{Loader: c}, context.Background())
	tabs.AddPage(ft.TabPage)
	if !ft.Loaded() || ft.Table().Len() != 2 {
		t.Errorf("loaded %v with %d rows", ft.Loaded(), ft.Table().Len())
	}

	c.templates = map[string]string{filesTabURL: "<div>no table</div>"}
	broken := NewFilesTab()
	var failed error
	broken.On(widget.EventError, func(arg interface{}) { failed = arg.(error) })
	tabs.AddPage(broken.TabPage)
	if !errors.Is(failed, widget.ErrMissingElement) {
		t.Errorf("missing table reported %v", failed)
	}
}
