package addtorrent

import (
	"fmt"
	"log"
	"strings"

	"github.com/boypt/addtorrent/client"
	"github.com/boypt/addtorrent/ui/widget"
)

const (
	addWindowURL  = "/template/render/html/window_add_torrent.html"
	optionsTabURL = "/template/render/html/add_torrent_options.html"
)

// Window collects torrents picked through the From File and From URL
// dialogs and adds them to the session as one batch.
type Window struct {
	*widget.Window
	client client.Client

	torrents    *widget.Select
	torrentInfo map[string]*client.TorrentInfo
	order       []string

	tabs       *widget.Tabs
	filesTab   *FilesTab
	fileWindow *File
	urlWindow  *URL

	fileButton   *widget.Button
	urlButton    *widget.Button
	addButton    *widget.Button
	cancelButton *widget.Button

	subs []widget.Subscription
}

func NewWindow(env widget.Env, c client.Client) *Window {
	w := &Window{
		Window: widget.NewWindow(env, widget.Options{
			Title:  env.Translate("Add Torrents"),
			Width:  550,
			Height: 500,
			URL:    addWindowURL,
		}),
		client:      c,
		torrentInfo: map[string]*client.TorrentInfo{},
	}
	w.On(widget.EventLoaded, w.onLoad)
	return w
}

func (w *Window) onLoad(arg interface{}) {
	content := arg.(*widget.Content)
	content.ID = "addTorrent"

	var buttons [4]*widget.Button
	for i, sel := range []string{"button.file", "button.url", "button.add", "button.cancel"} {
		b, err := content.Button(sel)
		if err != nil {
			fail(w.Window, err)
			return
		}
		buttons[i] = b
	}
	for _, sel := range []string{"select", "div.moouiTabs"} {
		if _, err := content.Element(sel); err != nil {
			fail(w.Window, err)
			return
		}
	}

	env := w.Env()
	w.torrents = widget.NewSelect()
	w.subs = append(w.subs, w.torrents.On(widget.EventChange, w.onTorrentChanged))

	w.tabs = widget.NewTabs(env, w.Context())
	w.filesTab = NewFilesTab()
	w.tabs.AddPage(w.filesTab.TabPage)
	w.tabs.AddPage(widget.NewTabPage("Options", optionsTabURL))

	w.fileWindow = NewFile(env, w.client)
	w.subs = append(w.subs, w.fileWindow.OnTorrentAdded(w.onTorrentAdded))
	w.urlWindow = NewURL(env, w.client)
	w.subs = append(w.subs, w.urlWindow.OnTorrentAdded(w.onTorrentAdded))

	w.fileButton, w.urlButton, w.addButton, w.cancelButton = buttons[0], buttons[1], buttons[2], buttons[3]
	w.subs = append(w.subs,
		w.fileButton.OnClick(w.fileWindow.Show),
		w.urlButton.OnClick(w.urlWindow.Show),
		w.addButton.OnClick(w.onAdd),
		w.cancelButton.OnClick(w.onCancel),
	)
}

func (w *Window) Torrents() *widget.Select { return w.torrents }
func (w *Window) Tabs() *widget.Tabs       { return w.tabs }
func (w *Window) FilesTab() *FilesTab      { return w.filesTab }
func (w *Window) FileDialog() *File        { return w.fileWindow }
func (w *Window) URLDialog() *URL          { return w.urlWindow }

// TorrentInfo returns the stored metadata for infoHash.
func (w *Window) TorrentInfo(infoHash string) (*client.TorrentInfo, bool) {
	info, ok := w.torrentInfo[infoHash]
	return info, ok
}

// Len is the number of torrents waiting to be added.
func (w *Window) Len() int { return len(w.order) }

func (w *Window) onTorrentAdded(info *client.TorrentInfo) {
	if info == nil {
		log.Printf("[ui] %s: ignoring empty torrent info", w.Options().Title)
		return
	}
	filename := info.Filename
	if i := strings.LastIndex(filename, "/"); i >= 0 {
		filename = filename[i+1:]
	}
	w.torrents.Grab(widget.Option{
		Value: info.InfoHash,
		Text:  fmt.Sprintf("%s (%s)", info.Name, filename),
	})
	if _, ok := w.torrentInfo[info.InfoHash]; !ok {
		w.order = append(w.order, info.InfoHash)
	}
	w.torrentInfo[info.InfoHash] = info
}

func (w *Window) onTorrentChanged(interface{}) {
	w.filesTab.SetTorrent(w.torrentInfo[w.torrents.Value()])
}

// Pending builds the add_torrents batch from the stored torrents, in the
// order they were picked.
func (w *Window) Pending() []client.PendingTorrent {
	torrents := make([]client.PendingTorrent, 0, len(w.order))
	for _, ih := range w.order {
		torrents = append(torrents, client.PendingTorrent{
			Path:    w.torrentInfo[ih].Filename,
			Options: map[string]interface{}{},
		})
	}
	return torrents
}

func (w *Window) onAdd() {
	torrents := w.Pending()
	ctx, env := w.Context(), w.Env()
	env.Dispatcher.Go(func() {
		err := w.client.AddTorrents(ctx, torrents)
		if err == nil || ctx.Err() != nil {
			return
		}
		env.Dispatcher.Post(func() {
			fail(w.Window, fmt.Errorf("adding %d torrents: %w", len(torrents), err))
		})
	})
	w.onCancel()
}

func (w *Window) onCancel() {
	w.Hide()
	w.torrents.Empty()
	w.torrentInfo = map[string]*client.TorrentInfo{}
	w.order = nil
	w.filesTab.Table().Empty()
}

func (w *Window) click(b *widget.Button) error {
	if b == nil {
		return widget.ErrNotLoaded
	}
	b.Click()
	return nil
}

// OpenFile shows the From File dialog.
func (w *Window) OpenFile() error { return w.click(w.fileButton) }

// OpenURL shows the From URL dialog.
func (w *Window) OpenURL() error { return w.click(w.urlButton) }

// Add submits every stored torrent, then clears the window and closes it.
func (w *Window) Add() error { return w.click(w.addButton) }

// Cancel clears the window and closes it without adding anything.
func (w *Window) Cancel() error { return w.click(w.cancelButton) }

// SelectTorrent selects the option for infoHash, showing its files.
func (w *Window) SelectTorrent(infoHash string) error {
	if w.torrents == nil {
		return widget.ErrNotLoaded
	}
	return w.torrents.SetValue(infoHash)
}

// Destroy tears down the window, its dialogs and every listener it registered.
func (w *Window) Destroy() {
	for _, s := range w.subs {
		s.Remove()
	}
	w.subs = nil
	if w.fileWindow != nil {
		w.fileWindow.Destroy()
	}
	if w.urlWindow != nil {
		w.urlWindow.Destroy()
	}
	w.Window.Destroy()
}
