package addtorrent

import (
	"errors"
	"fmt"
	"io"

	"github.com/boypt/addtorrent/client"
	"github.com/boypt/addtorrent/ui/widget"
)

const fileDialogURL = "/template/render/html/window_add_torrent_file.html"

var (
	ErrNoFile = errors.New("no torrent file selected")
	ErrBusy   = errors.New("previous submission still in progress")
)

// File uploads a local torrent file and asks the server to parse it.
type File struct {
	*widget.Window
	client client.Client

	fileInput    *widget.Input
	fakeFile     *widget.Input
	cancelButton *widget.Button
	submitButton *widget.Button

	name string
	body io.Reader
	busy bool
}

func NewFile(env widget.Env, c client.Client) *File {
	d := &File{
		Window: widget.NewWindow(env, widget.Options{
			Title:  env.Translate("From File"),
			Width:  400,
			Height: 100,
			URL:    fileDialogURL,
		}),
		client: c,
	}
	d.On(widget.EventBeforeShow, d.onBeforeShow)
	d.On(widget.EventLoaded, d.onLoad)
	return d
}

func (d *File) OnTorrentAdded(fn func(*client.TorrentInfo)) widget.Subscription {
	return onTorrentAdded(&d.Emitter, fn)
}

// onBeforeShow gives every showing a fresh form.
func (d *File) onBeforeShow(interface{}) {
	if d.busy {
		return
	}
	d.name, d.body = "", nil
	if d.fileInput != nil {
		d.fileInput.Opacity = 0.000001
		d.fileInput.SetValue("")
	}
}

func (d *File) onLoad(arg interface{}) {
	content := arg.(*widget.Content)
	if _, err := content.Element("form"); err != nil {
		fail(d.Window, err)
		return
	}
	cancelButton, err := content.Button("form button.cancel")
	if err != nil {
		fail(d.Window, err)
		return
	}
	submitButton, err := content.Button("form button.submit")
	if err != nil {
		fail(d.Window, err)
		return
	}
	fileInput, err := content.Input("form div.fileInputs > input")
	if err != nil {
		fail(d.Window, err)
		return
	}
	fakeFile, err := content.Input("form div.fileInputs div input")
	if err != nil {
		fail(d.Window, err)
		return
	}
	// the real input sits invisibly on top of the decorative one
	fileInput.Opacity = 0.000001
	fileInput.On(widget.EventChange, func(arg interface{}) {
		fakeFile.SetValue(arg.(string))
	})
	cancelButton.OnClick(d.Cancel)
	submitButton.OnClick(func() {
		if err := d.Submit(); err != nil {
			fail(d.Window, err)
		}
	})
	d.cancelButton, d.submitButton = cancelButton, submitButton
	d.fileInput, d.fakeFile = fileInput, fakeFile
}

func (d *File) FileInput() *widget.Input { return d.fileInput }
func (d *File) FakeFile() *widget.Input  { return d.fakeFile }
func (d *File) Busy() bool               { return d.busy }

// SelectFile picks the torrent file to upload.
func (d *File) SelectFile(name string, r io.Reader) error {
	if d.fileInput == nil {
		return widget.ErrNotLoaded
	}
	if d.busy {
		return ErrBusy
	}
	d.name, d.body = name, r
	d.fileInput.SetValue(name)
	return nil
}

// Submit uploads the selected file. Once stored, the dialog closes and the
// server is asked for the torrent's metadata; EventTorrentAdded fires only
// when the server could parse it.
func (d *File) Submit() error {
	if d.fileInput == nil {
		return widget.ErrNotLoaded
	}
	if d.busy {
		return ErrBusy
	}
	if d.body == nil {
		return ErrNoFile
	}
	d.busy = true
	d.fileInput.Opacity = 0
	name, body := d.name, d.body
	ctx, disp := d.Context(), d.Env().Dispatcher
	disp.Go(func() {
		path, err := d.client.UploadTorrentFile(ctx, name, body)
		disp.Post(func() { d.onComplete(path, err) })
	})
	return nil
}

func (d *File) onComplete(path string, err error) {
	if d.Context().Err() != nil {
		return
	}
	if err != nil {
		d.busy = false
		fail(d.Window, fmt.Errorf("uploading torrent: %w", err))
		return
	}
	d.Hide()
	ctx, disp := d.Context(), d.Env().Dispatcher
	disp.Go(func() {
		info, err := d.client.GetTorrentInfo(ctx, path)
		disp.Post(func() { d.onGetInfo(info, err) })
	})
}

func (d *File) onGetInfo(info *client.TorrentInfo, err error) {
	if d.Context().Err() != nil {
		return
	}
	d.busy = false
	if err != nil {
		fail(d.Window, fmt.Errorf("reading torrent info: %w", err))
		return
	}
	if info != nil {
		d.Emit(EventTorrentAdded, info)
	}
}

func (d *File) Cancel() {
	d.Hide()
}
