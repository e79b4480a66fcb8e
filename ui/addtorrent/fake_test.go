package addtorrent

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/boypt/addtorrent/client"
	"github.com/boypt/addtorrent/ui/widget"
)

var templates = map[string]string{
	addWindowURL: `<div>
		<select size="5"></select>
		<div class="moouiTabs"></div>
		<button class="file">File</button><button class="url">Url</button>
		<button class="add">Add</button><button class="cancel">Cancel</button>
	</div>`,
	filesTabURL:   `<table></table>`,
	optionsTabURL: `<form><input type="checkbox" name="add_paused"></form>`,
	fileDialogURL: `<form enctype="multipart/form-data">
		<div class="fileInputs">
			<input type="file" name="torrentFile">
			<div class="fakeFile"><input type="text"></div>
		</div>
		<button type="submit" class="submit">Add</button><button class="cancel">Cancel</button>
	</form>`,
}

// fakeClient answers remote calls from its fields and records what it saw.
type fakeClient struct {
	mu        sync.Mutex
	infos     map[string]*client.TorrentInfo
	downloads map[string]string
	uploadErr error
	addErr    error
	infoErr   error
	templates map[string]string

	uploaded []string
	infoReqs []string
	added    [][]client.PendingTorrent
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		infos:     map[string]*client.TorrentInfo{},
		downloads: map[string]string{},
		templates: templates,
	}
}

func (f *fakeClient) AddTorrents(ctx context.Context, torrents []client.PendingTorrent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, torrents)
	return f.addErr
}

func (f *fakeClient) GetTorrentInfo(ctx context.Context, path string) (*client.TorrentInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoReqs = append(f.infoReqs, path)
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.infos[path], nil
}

func (f *fakeClient) DownloadTorrentFromURL(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path, ok := f.downloads[url]
	if !ok {
		return "", errors.New("404 not found")
	}
	return path, nil
}

func (f *fakeClient) UploadTorrentFile(ctx context.Context, name string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploaded = append(f.uploaded, name)
	return "/tmp/uploads/" + name, nil
}

func (f *fakeClient) CreateTorrent(ctx context.Context, req client.CreateRequest) (string, error) {
	return "", errors.New("not supported")
}

func (f *fakeClient) RenderTemplate(ctx context.Context, path string) (string, error) {
	html, ok := f.templates[path]
	if !ok {
		return "", errors.New("no template " + path)
	}
	return html, nil
}

type notes struct {
	seen []widget.Notification
}

func (n *notes) Notify(note widget.Notification) { n.seen = append(n.seen, note) }

func testEnv(c *fakeClient) (widget.Env, *notes) {
	n := &notes{}
	return widget.Env{Loader: c, Dispatcher: widget.Inline{}, Notifier: n}, n
}
