package addtorrent

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/boypt/addtorrent/client"
	"github.com/boypt/addtorrent/common"
	"github.com/boypt/addtorrent/ui/widget"
)

var ErrEmptyURL = errors.New("no url given")

// URL asks the server to fetch a torrent from a URL and parse it.
type URL struct {
	*widget.Window
	client client.Client

	// RequireInfo suppresses EventTorrentAdded when the server could not
	// parse the downloaded file, as File does. It is off by default, so a
	// nil info is still announced.
	RequireInfo bool

	urlInput     *widget.Input
	okButton     *widget.Button
	cancelButton *widget.Button
}

func NewURL(env widget.Env, c client.Client) *URL {
	u := &URL{
		Window: widget.NewWindow(env, widget.Options{
			Title:  env.Translate("From Url"),
			Width:  300,
			Height: 100,
		}),
		client: c,
	}
	common.Must(u.SetContent(fmt.Sprintf(
		`<form><label for="urlInput" class="fluid">%s</label>`+
			`<input type="text" id="urlInput" name="urlInput"><br>`+
			`<button class="ok">%s</button><button class="cancel">%s</button></form>`,
		html.EscapeString(env.Translate("Url")),
		html.EscapeString(env.Translate("Ok")),
		html.EscapeString(env.Translate("Cancel")))))

	content := u.Content()
	var err error
	u.urlInput, err = content.Input("input#urlInput")
	common.Must(err)
	u.okButton, err = content.Button("button.ok")
	common.Must(err)
	u.cancelButton, err = content.Button("button.cancel")
	common.Must(err)

	u.okButton.OnClick(func() {
		if err := u.OK(); err != nil {
			fail(u.Window, err)
		}
	})
	u.cancelButton.OnClick(u.onCancelClick)
	return u
}

func (u *URL) OnTorrentAdded(fn func(*client.TorrentInfo)) widget.Subscription {
	return onTorrentAdded(&u.Emitter, fn)
}

func (u *URL) URLInput() *widget.Input      { return u.urlInput }
func (u *URL) OKButton() *widget.Button     { return u.okButton }
func (u *URL) CancelButton() *widget.Button { return u.cancelButton }

func (u *URL) SetURL(url string) {
	u.urlInput.SetValue(url)
}

// OK sends the URL to the server and closes the dialog.
func (u *URL) OK() error {
	url := strings.TrimSpace(u.urlInput.Value())
	if url == "" {
		return ErrEmptyURL
	}
	u.Hide()
	ctx, disp := u.Context(), u.Env().Dispatcher
	disp.Go(func() {
		filename, err := u.client.DownloadTorrentFromURL(ctx, url)
		disp.Post(func() { u.onDownload(filename, err) })
	})
	return nil
}

func (u *URL) onDownload(filename string, err error) {
	if u.Context().Err() != nil {
		return
	}
	if err != nil {
		fail(u.Window, fmt.Errorf("downloading torrent: %w", err))
		return
	}
	ctx, disp := u.Context(), u.Env().Dispatcher
	disp.Go(func() {
		info, err := u.client.GetTorrentInfo(ctx, filename)
		disp.Post(func() { u.onGetInfo(info, err) })
	})
}

func (u *URL) onGetInfo(info *client.TorrentInfo, err error) {
	if u.Context().Err() != nil {
		return
	}
	if err != nil {
		fail(u.Window, fmt.Errorf("reading torrent info: %w", err))
		return
	}
	if info == nil && u.RequireInfo {
		return
	}
	u.Emit(EventTorrentAdded, info)
}

// Cancel clears the input and closes the dialog.
func (u *URL) Cancel() {
	u.cancelButton.Click()
}

func (u *URL) onCancelClick() {
	u.urlInput.SetValue("")
	u.Hide()
}
