package server

import (
	"compress/gzip"
	"crypto/tls"
	"fmt"
	"html/template"
	stdlog "log"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/anacrolix/torrent/metainfo"
	"github.com/boypt/addtorrent/engine"
	"github.com/boypt/addtorrent/i18n"
	"github.com/boypt/addtorrent/server/httpmiddleware"
	"github.com/boypt/addtorrent/static"
	"github.com/boypt/addtorrent/storage"
	"github.com/jpillora/cookieauth"
	"github.com/jpillora/requestlog"
	"github.com/jpillora/velox"
	"github.com/mmcdole/gofeed"
	"github.com/skratchdot/open-golang/open"
)

var log = stdlog.New(os.Stdout, "[server] ", stdlog.LstdFlags|stdlog.Lmsgprefix)

// torrentEngine is the part of the engine the web UI drives.
type torrentEngine interface {
	AddMetaInfo(mi *metainfo.MetaInfo, opts engine.AddOptions) (string, error)
	GetTorrents() map[string]*engine.Torrent
}

// Server is the "State" portion of the diagram
type Server struct {
	//config
	Title          string `opts:"help=Title of this instance,env=TITLE"`
	Port           int    `opts:"help=Listening port,env=PORT"`
	Host           string `opts:"help=Listening interface (default all),env=HOST"`
	Auth           string `opts:"help=Optional basic auth in form 'user:password',env=AUTH"`
	ConfigPath     string `opts:"help=Configuration file path,env=CONFIGPATH"`
	KeyPath        string `opts:"help=TLS Key file path"`
	CertPath       string `opts:"help=TLS Certicate file path,short=r"`
	Log            bool   `opts:"help=Enable request logging"`
	Open           bool   `opts:"help=Open now with your default browser"`
	DisableLogTime bool   `opts:"help=Don't print timestamp in log"`
	Debug          bool   `opts:"help=Debug app"`

	//http handlers
	statich   http.Handler
	rssh      http.Handler
	templates *template.Template
	bundle    *i18n.Bundle
	baseInfo  BaseInfo

	//torrent engine and file store
	engine torrentEngine
	store  *storage.Store
	fetch  *http.Client

	rssMu    sync.Mutex
	rssCache map[string][]*gofeed.Item
	rssAdded map[string]bool
	feeds    *gofeed.Parser

	syncConnected chan struct{}
	syncSemphor   int32

	state struct {
		velox.State
		sync.Mutex
		Config   engine.Config
		Torrents map[string]*engine.Torrent
		Uploads  *storage.Node
		Users    map[string]string
		Stats    struct {
			Title   string
			Version string
			Runtime string
			Uptime  time.Time
			System  stats
		}
	}
}

// Run the server
func (s *Server) Run(version string) error {
	if s.DisableLogTime {
		log.SetFlags(stdlog.Lmsgprefix)
		engine.SetLoggerFlag(0)
	}
	isTLS := s.CertPath != "" || s.KeyPath != "" //poor man's XOR
	if isTLS && (s.CertPath == "" || s.KeyPath == "") {
		return fmt.Errorf("you must provide both key and cert paths")
	}

	c, err := engine.InitConf(s.ConfigPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	store, err := storage.NewDisk(storage.DiskConfig{BasePath: c.UploadDirectory})
	if err != nil {
		return fmt.Errorf("upload directory: %w", err)
	}
	eng := engine.New()
	if err := eng.Configure(*c); err != nil {
		return fmt.Errorf("initial configure failed: %w", err)
	}
	defer eng.Close()
	if err := eng.StartWatcher(); err != nil {
		log.Printf("torrent watcher disabled: %s", err)
	}

	h, err := s.setup(version, *c, eng, store)
	if err != nil {
		return err
	}
	go s.backgroundRoutines()

	host := s.Host
	if host == "" {
		host = "0.0.0.0"
	}
	addr := fmt.Sprintf("%s:%d", host, s.Port)
	proto := "http"
	if isTLS {
		proto += "s"
	}
	if s.Open {
		openhost := host
		if openhost == "0.0.0.0" {
			openhost = "localhost"
		}
		go func() {
			time.Sleep(1 * time.Second)
			if err := open.Run(fmt.Sprintf("%s://%s:%d", proto, openhost, s.Port)); err != nil {
				log.Printf("open browser: %s", err)
			}
		}()
	}
	log.Printf("Listening at %s://%s", proto, addr)
	server := http.Server{
		//disable http2 due to velox bug
		TLSNextProto: map[string]func(*http.Server, *tls.Conn, http.Handler){},
		Addr:         addr,
		Handler:      h,
	}
	if isTLS {
		return server.ListenAndServeTLS(s.CertPath, s.KeyPath)
	}
	return server.ListenAndServe()
}

// setup prepares the server state and returns the full handler chain.
func (s *Server) setup(version string, c engine.Config, eng torrentEngine, store *storage.Store) (http.Handler, error) {
	s.engine = eng
	s.store = store
	s.fetch = &http.Client{Timeout: 30 * time.Second}
	s.feeds = gofeed.NewParser()
	s.feeds.Client = &http.Client{Timeout: 10 * time.Second}
	s.rssCache = map[string][]*gofeed.Item{}
	s.rssAdded = map[string]bool{}
	s.syncConnected = make(chan struct{})

	s.baseInfo = BaseInfo{
		Title:   s.Title,
		Version: version,
		Runtime: strings.TrimPrefix(runtime.Version(), "go"),
		Uptime:  time.Now().Unix(),
	}
	s.state.Config = c
	s.state.Users = map[string]string{}
	s.state.Stats.Title = s.Title
	s.state.Stats.Version = version
	s.state.Stats.Runtime = s.baseInfo.Runtime
	s.state.Stats.Uptime = time.Now()
	s.state.Stats.System.pusher = velox.Pusher(&s.state)

	if err := s.loadTemplates(); err != nil {
		return nil, err
	}
	s.statich = static.FileSystemHandler()
	s.rssh = http.HandlerFunc(s.serveRSS)

	//define handler chain, from last to first
	h := http.Handler(http.HandlerFunc(s.webHandle))
	//gzip
	gzipWrap, _ := gziphandler.NewGzipLevelAndMinSize(gzip.DefaultCompression, 0)
	h = gzipWrap(h)
	//auth
	if s.Auth != "" {
		user := s.Auth
		pass := ""
		if s := strings.SplitN(s.Auth, ":", 2); len(s) == 2 {
			user = s[0]
			pass = s[1]
		}
		h = cookieauth.New().SetUserPass(user, pass).Wrap(h)
		log.Printf("Enabled HTTP authentication")
	}
	h = httpmiddleware.Liveness(h)
	if s.Log {
		h = requestlog.Wrap(h)
	}
	return h, nil
}
