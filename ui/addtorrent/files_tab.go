package addtorrent

import (
	"log"

	"github.com/boypt/addtorrent/client"
	"github.com/boypt/addtorrent/common"
	"github.com/boypt/addtorrent/ui/widget"
)

const filesTabURL = "/template/render/html/add_torrent_files.html"

// FilesTab lists the files of the selected torrent.
type FilesTab struct {
	*widget.TabPage
	table *widget.Table
}

func NewFilesTab() *FilesTab {
	ft := &FilesTab{
		TabPage: widget.NewTabPage("Files", filesTabURL),
		table:   widget.NewTable(),
	}
	ft.On(widget.EventLoaded, ft.onLoad)
	return ft
}

// onLoad only checks the page has a table. Rows live in ft.table, so files
// set before the page arrives are kept.
func (ft *FilesTab) onLoad(arg interface{}) {
	if _, err := arg.(*widget.Content).Element("table"); err != nil {
		log.Printf("[ui] files tab: %s", err)
		ft.Emit(widget.EventError, err)
	}
}

func (ft *FilesTab) Table() *widget.Table { return ft.table }

// SetTorrent replaces the table rows with the files of info. The first
// cell of each row is left empty.
func (ft *FilesTab) SetTorrent(info *client.TorrentInfo) {
	ft.table.Empty()
	if info == nil {
		return
	}
	for _, f := range info.Files {
		ft.table.Grab("", f.Path, common.FormatBytes(f.Size))
	}
}
