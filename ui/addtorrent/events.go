// Package addtorrent implements the Add Torrents window together with its
// From File and From URL dialogs.
package addtorrent

import (
	"log"

	"github.com/boypt/addtorrent/client"
	"github.com/boypt/addtorrent/ui/widget"
)

// EventTorrentAdded carries the *client.TorrentInfo of a picked torrent.
// The info may be nil, see URL.RequireInfo.
const EventTorrentAdded widget.Event = "torrentAdded"

func onTorrentAdded(e *widget.Emitter, fn func(*client.TorrentInfo)) widget.Subscription {
	return e.On(EventTorrentAdded, func(arg interface{}) {
		info, _ := arg.(*client.TorrentInfo)
		fn(info)
	})
}

// fail reports err on the window's error event and to the user.
func fail(w *widget.Window, err error) {
	log.Printf("[ui] %s: %s", w.Options().Title, err)
	w.Emit(widget.EventError, err)
	w.Env().Fail(w.Options().Title, err)
}
