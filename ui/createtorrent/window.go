// Package createtorrent implements the Create Torrent window.
package createtorrent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/boypt/addtorrent/client"
	"github.com/boypt/addtorrent/ui/widget"
)

const windowURL = "/template/render/html/window_create_torrent.html"

var ErrNoDesktop = errors.New("no desktop integration available")

// PickedFile is a file chosen through the desktop file picker.
type PickedFile struct {
	Name string
	Blob string
}

// DesktopPicker opens the native file chooser.
type DesktopPicker interface {
	OpenFiles(ctx context.Context) ([]PickedFile, error)
}

// Window builds a new torrent from local files.
type Window struct {
	*widget.Window
	client client.Client
	picker DesktopPicker

	tabs         *widget.Tabs
	fields       map[string]*widget.Input
	fileButton   *widget.Button
	folderButton *widget.Button
}

// tabFields names the form fields read from each tab.
var tabFields = map[string][]string{
	"Info":     {"path", "piece_length", "comment"},
	"Trackers": {"trackers"},
	"Webseeds": {"webseeds"},
	"Options":  {"private", "add_to_session"},
}

// NewWindow creates the window. picker may be nil when no desktop
// integration is present.
func NewWindow(env widget.Env, c client.Client, picker DesktopPicker) *Window {
	w := &Window{
		Window: widget.NewWindow(env, widget.Options{
			Title:  env.Translate("Create Torrent"),
			Width:  400,
			Height: 400,
			URL:    windowURL,
		}),
		client: c,
		picker: picker,
		fields: map[string]*widget.Input{},
	}
	w.On(widget.EventLoaded, w.onLoad)
	return w
}

func tabURL(name string) string {
	return "/template/render/html/create_torrent_" + strings.ToLower(name) + ".html"
}

func (w *Window) onLoad(arg interface{}) {
	content := arg.(*widget.Content)
	content.ID = "createTorrent"
	if _, err := content.Element(".moouiTabs"); err != nil {
		w.fail(err)
		return
	}
	fileButton, err := content.Button("button.file")
	if err != nil {
		w.fail(err)
		return
	}
	folderButton, err := content.Button("button.folder")
	if err != nil {
		w.fail(err)
		return
	}
	w.tabs = widget.NewTabs(w.Env(), w.Context())
	for _, name := range []string{"Info", "Trackers", "Webseeds", "Options"} {
		page := widget.NewTabPage(name, tabURL(name))
		name := name
		page.On(widget.EventLoaded, func(arg interface{}) {
			w.bindFields(name, arg.(*widget.Content))
		})
		w.tabs.AddPage(page)
	}
	// the folder button has no action of its own, only the file button
	// opens the picker
	w.fileButton, w.folderButton = fileButton, folderButton
	w.fileButton.OnClick(w.onFileClick)
}

func (w *Window) bindFields(tab string, content *widget.Content) {
	for _, name := range tabFields[tab] {
		in, err := content.Input("[name=" + name + "]")
		if err != nil {
			w.fail(fmt.Errorf("tab %s: %w", tab, err))
			continue
		}
		if name == "piece_length" {
			in.SetValue(content.Attr("select[name=piece_length] option[selected]", "value"))
		}
		w.fields[name] = in
	}
}

// Field returns the form field called name, or nil before its tab loaded.
func (w *Window) Field(name string) *widget.Input { return w.fields[name] }

func checked(in *widget.Input) bool {
	v := strings.ToLower(in.Value())
	return v != "" && v != "false" && v != "off"
}

// Request reads the tab forms. Trackers are one per line with a blank
// line between tiers; webseeds are one per line.
func (w *Window) Request() (client.CreateRequest, error) {
	for _, names := range tabFields {
		for _, name := range names {
			if w.fields[name] == nil {
				return client.CreateRequest{}, widget.ErrNotLoaded
			}
		}
	}
	f := w.fields
	req := NewRequest(strings.TrimSpace(f["path"].Value()), f["trackers"].Value(), f["webseeds"].Value())
	if v := strings.TrimSpace(f["piece_length"].Value()); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return req, fmt.Errorf("piece size %q: %w", v, err)
		}
		req.PieceLength = n
	}
	req.Comment = f["comment"].Value()
	req.Private = checked(f["private"])
	req.AddToSession = checked(f["add_to_session"])
	return req, nil
}

// Submit sends the request built from the tab forms.
func (w *Window) Submit() error {
	req, err := w.Request()
	if err != nil {
		return err
	}
	return w.Create(req)
}

func (w *Window) Tabs() *widget.Tabs             { return w.tabs }
func (w *Window) FileButton() *widget.Button     { return w.fileButton }
func (w *Window) FolderButton() *widget.Button   { return w.folderButton }
func (w *Window) SetPicker(picker DesktopPicker) { w.picker = picker }

// PickFiles clicks the file button.
func (w *Window) PickFiles() error {
	if w.fileButton == nil {
		return widget.ErrNotLoaded
	}
	w.fileButton.Click()
	return nil
}

func (w *Window) onFileClick() {
	if w.picker == nil {
		w.fail(ErrNoDesktop)
		return
	}
	ctx, disp, picker := w.Context(), w.Env().Dispatcher, w.picker
	disp.Go(func() {
		files, err := picker.OpenFiles(ctx)
		disp.Post(func() { w.onFilesPicked(files, err) })
	})
}

func (w *Window) onFilesPicked(files []PickedFile, err error) {
	if w.Context().Err() != nil {
		return
	}
	if err != nil {
		w.fail(fmt.Errorf("picking files: %w", err))
		return
	}
	for _, f := range files {
		w.Env().Notifier.Notify(widget.Notification{
			Level:   widget.LevelInfo,
			Title:   w.Options().Title,
			Message: f.Blob,
		})
	}
}

// Create asks the server to build a torrent. The stored path is announced
// to the user once the server replies.
func (w *Window) Create(req client.CreateRequest) error {
	if strings.TrimSpace(req.Path) == "" {
		return ErrNoPath
	}
	ctx, disp := w.Context(), w.Env().Dispatcher
	disp.Go(func() {
		path, err := w.client.CreateTorrent(ctx, req)
		disp.Post(func() { w.onCreated(path, err) })
	})
	return nil
}

func (w *Window) onCreated(path string, err error) {
	if w.Context().Err() != nil {
		return
	}
	if err != nil {
		w.fail(fmt.Errorf("creating torrent: %w", err))
		return
	}
	w.Env().Notifier.Notify(widget.Notification{
		Level:   widget.LevelInfo,
		Title:   w.Options().Title,
		Message: w.Env().Translate("Torrent created") + ": " + path,
	})
}

func (w *Window) fail(err error) {
	log.Printf("[ui] %s: %s", w.Options().Title, err)
	w.Emit(widget.EventError, err)
	w.Env().Fail(w.Options().Title, err)
}
