package engine

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	eglog "github.com/anacrolix/log"
	"github.com/anacrolix/torrent"
	"github.com/anacrolix/torrent/metainfo"
	tstorage "github.com/anacrolix/torrent/storage"
)

var ErrClosed = errors.New("engine not running")

// AddOptions are the per-torrent options accepted by add_torrents.
type AddOptions struct {
	Paused           bool   `json:"add_paused"`
	DownloadLocation string `json:"download_location"`
}

// the Engine, backed by anacrolix/torrent
type Engine struct {
	sync.RWMutex
	client  *torrent.Client
	config  Config
	ts      map[string]*Torrent
	watcher *Watcher
}

func New() *Engine {
	return &Engine{ts: map[string]*Torrent{}}
}

func (e *Engine) Config() Config {
	e.RLock()
	defer e.RUnlock()
	return e.config
}

// Configure (re)starts the torrent client with c.
func (e *Engine) Configure(c Config) error {
	if c.IncomingPort <= 0 || c.IncomingPort >= 65535 {
		return fmt.Errorf("invalid incoming port (%d)", c.IncomingPort)
	}
	if err := mkdir(c.DownloadDirectory); err != nil {
		return err
	}
	tc := torrent.NewDefaultClientConfig()
	tc.ListenPort = c.IncomingPort
	tc.DataDir = c.DownloadDirectory
	tc.Debug = c.EngineDebug
	if c.MuteEngineLog {
		tc.Logger = eglog.Discard
	}
	tc.NoUpload = !c.EnableUpload
	tc.Seed = c.EnableSeeding
	tc.UploadRateLimiter = c.UploadLimiter()
	tc.DownloadRateLimiter = c.DownloadLimiter()
	tc.HeaderObfuscationPolicy = torrent.HeaderObfuscationPolicy{
		Preferred:        c.ObfsPreferred,
		RequirePreferred: c.ObfsRequirePreferred,
	}
	tc.DisableTrackers = c.DisableTrackers
	tc.DisableIPv6 = c.DisableIPv6
	tc.NoDefaultPortForwarding = c.NoDefaultPortForwarding
	tc.DisableUTP = c.DisableUTP
	if c.ProxyURL != "" {
		u, err := url.Parse(c.ProxyURL)
		if err != nil {
			return fmt.Errorf("invalid proxy url: %w", err)
		}
		tc.HTTPProxy = http.ProxyURL(u)
	}

	e.Lock()
	defer e.Unlock()
	if e.client != nil {
		e.client.Close()
		time.Sleep(1 * time.Second)
	}
	client, err := torrent.NewClient(tc)
	if err != nil {
		e.client = nil
		return err
	}
	e.config = c
	e.client = client
	e.ts = map[string]*Torrent{}
	log.Printf("configured, listening on port %d, data in %s", c.IncomingPort, c.DownloadDirectory)
	return nil
}

// AddMetaInfo adds a torrent to the session and returns its info hash.
func (e *Engine) AddMetaInfo(mi *metainfo.MetaInfo, opts AddOptions) (string, error) {
	if _, err := mi.UnmarshalInfo(); err != nil {
		return "", fmt.Errorf("invalid metainfo: %w", err)
	}
	e.Lock()
	defer e.Unlock()
	if e.client == nil {
		return "", ErrClosed
	}
	spec := torrent.TorrentSpecFromMetaInfo(mi)
	if opts.DownloadLocation != "" {
		if err := mkdir(opts.DownloadLocation); err != nil {
			return "", err
		}
		spec.Storage = tstorage.NewFile(opts.DownloadLocation)
	}
	tt, isNew, err := e.client.AddTorrentSpec(spec)
	if err != nil {
		return "", err
	}
	t := e.upsertTorrent(tt)
	t.DownloadLocation = opts.DownloadLocation
	ih := t.InfoHash
	if !isNew {
		log.Println("already in session", ih)
		return ih, nil
	}
	log.Println("added", ih, "paused:", opts.Paused)
	if e.config.AutoStart && !opts.Paused {
		go func() {
			<-tt.GotInfo()
			if err := e.StartTorrent(ih); err != nil {
				log.Println("start failed", ih, err)
			}
		}()
	}
	return ih, nil
}

// AddFile loads a torrent file from disk and adds it.
func (e *Engine) AddFile(path string, opts AddOptions) (string, error) {
	mi, err := metainfo.LoadFromFile(path)
	if err != nil {
		return "", err
	}
	return e.AddMetaInfo(mi, opts)
}

// GetTorrents moves torrents out of the anacrolix/torrent
// and into the local cache
func (e *Engine) GetTorrents() map[string]*Torrent {
	e.Lock()
	defer e.Unlock()

	if e.client == nil {
		return nil
	}
	for _, tt := range e.client.Torrents() {
		e.upsertTorrent(tt)
	}
	ts := make(map[string]*Torrent, len(e.ts))
	for ih, t := range e.ts {
		ts[ih] = t
	}
	return ts
}

func (e *Engine) upsertTorrent(tt *torrent.Torrent) *Torrent {
	ih := tt.InfoHash().HexString()
	t, ok := e.ts[ih]
	if !ok {
		t = &Torrent{
			InfoHash: ih,
			AddedAt:  time.Now(),
		}
		e.ts[ih] = t
	}
	if t.Update(tt) {
		log.Printf("torrent finished: %s", t.Name)
		if cmd := e.config.DoneCmd; cmd != "" {
			go callDoneCmd(cmd, t.doneEnv(e.config.DownloadDirectory))
		}
	}
	return t
}

func (e *Engine) getTorrent(infohash string) (*Torrent, error) {
	ih := metainfo.NewHashFromHex(infohash)
	e.RLock()
	defer e.RUnlock()
	t, ok := e.ts[ih.HexString()]
	if !ok {
		return nil, fmt.Errorf("missing torrent %s", ih.HexString())
	}
	return t, nil
}

func (e *Engine) StartTorrent(infohash string) error {
	t, err := e.getTorrent(infohash)
	if err != nil {
		return err
	}
	t.Lock()
	defer t.Unlock()
	if t.Started {
		return errors.New("already started")
	}
	t.Started = true
	t.StartedAt = time.Now()
	for _, f := range t.Files {
		if f != nil {
			f.Started = true
		}
	}
	if t.t != nil && t.t.Info() != nil {
		t.t.AllowDataDownload()
		t.t.DownloadAll()
	}
	return nil
}

func (e *Engine) StopTorrent(infohash string) error {
	t, err := e.getTorrent(infohash)
	if err != nil {
		return err
	}
	t.Lock()
	defer t.Unlock()
	if !t.Started {
		return errors.New("already stopped")
	}
	if t.t != nil && t.t.Info() != nil {
		t.t.DisallowDataDownload()
	}
	t.Started = false
	t.UploadRate = 0
	t.DownloadRate = 0
	for _, f := range t.Files {
		if f != nil {
			f.Started = false
		}
	}
	return nil
}

// StartWatcher adds torrent files dropped into the watch directory,
// removing each one that was added.
func (e *Engine) StartWatcher() error {
	e.Lock()
	defer e.Unlock()
	if e.watcher != nil {
		e.watcher.Close()
		e.watcher = nil
	}
	dir := e.config.WatchDirectory
	if dir == "" {
		return nil
	}
	if err := mkdir(dir); err != nil {
		return err
	}
	if err := e.restoreWatchDir(dir); err != nil {
		log.Println("restore from watch directory:", err)
	}
	w, err := NewWatcher(dir, func(path string) error {
		_, err := e.AddFile(path, AddOptions{})
		return err
	})
	if err != nil {
		return err
	}
	e.watcher = w
	return nil
}

// restoreWatchDir adds torrent files that were already present.
// Called with e locked.
func (e *Engine) restoreWatchDir(dir string) error {
	tors, err := filepath.Glob(filepath.Join(dir, "*.torrent"))
	if err != nil {
		return err
	}
	for _, p := range tors {
		p := p
		go func() {
			if _, err := e.AddFile(p, AddOptions{}); err != nil {
				log.Printf("initial task: fail to add %s: %s", p, err)
				return
			}
			log.Printf("initial task: added %s, file removed", p)
			os.Remove(p)
		}()
	}
	return nil
}

// Close stops the watcher and the torrent client.
func (e *Engine) Close() error {
	e.Lock()
	defer e.Unlock()
	if e.watcher != nil {
		e.watcher.Close()
		e.watcher = nil
	}
	if e.client == nil {
		return ErrClosed
	}
	e.client.Close()
	e.client = nil
	return nil
}
