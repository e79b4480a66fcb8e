package server

import (
	"bytes"
	"html/template"
	"net/http"
	"path"
	"strings"

	"github.com/boypt/addtorrent/common"
	"github.com/boypt/addtorrent/i18n"
	"github.com/boypt/addtorrent/static"
	"github.com/jpillora/velox"
)

const templatePrefix = "/template/render/html/"

type BaseInfo struct {
	Uptime  int64
	Title   string
	Version string
	Runtime string
}

func (s *Server) webHandle(w http.ResponseWriter, r *http.Request) {

	switch r.URL.Path {
	case "/", "/index.html":
		s.renderTemplate(w, r, "index.html")
		return
	case "/json":
		s.serveRPC(w, r)
		return
	case "/upload":
		s.serveUpload(w, r)
		return
	case "/rss":
		s.rssh.ServeHTTP(w, r)
		return
	case "/js/gettext.js":
		s.serveGettext(w, r)
		return
	case "/sync":
		//handle realtime client connections, setting content-encoding to avoid gzip buffer
		w.Header().Set("Content-Encoding", "identity")
		conn, err := velox.Sync(&s.state, w, r)
		if err != nil {
			log.Printf("sync failed: %s", err)
			return
		}
		select {
		case s.syncConnected <- struct{}{}:
		default:
		}
		s.state.Lock()
		s.state.Users[conn.ID()] = r.RemoteAddr
		s.state.Unlock()
		s.state.Push()
		conn.Wait()
		s.state.Lock()
		delete(s.state.Users, conn.ID())
		s.state.Unlock()
		s.state.Push()
		return
	case "/js/velox.js":
		velox.JS.ServeHTTP(w, r)
		return
	}

	switch {
	case strings.HasPrefix(r.URL.Path, templatePrefix):
		s.renderTemplate(w, r, strings.TrimPrefix(r.URL.Path, templatePrefix))
	case strings.HasPrefix(r.URL.Path, "/uploads/"):
		s.serveStored(w, r)
	default:
		//no match, assume static file
		s.statich.ServeHTTP(w, r)
	}
}

// loadTemplates parses the HTML fragments and registers their strings in
// every catalog.
func (s *Server) loadTemplates() error {
	s.bundle = i18n.NewBundle()
	cats, err := static.Catalogs()
	if err != nil {
		return err
	}
	for lang, data := range cats {
		if err := s.bundle.LoadYAML(lang, data); err != nil {
			return err
		}
	}
	srcs, err := static.TemplateSources()
	if err != nil {
		return err
	}
	for _, src := range srcs {
		s.bundle.Seed(i18n.Extract(src)...)
	}
	s.templates, err = static.Templates(template.FuncMap{"_": i18n.Identity})
	return err
}

func (s *Server) catalog(r *http.Request) *i18n.Catalog {
	return s.bundle.Match(r.Header.Get("Accept-Language"))
}

func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request, name string) {
	name = path.Base(path.Clean("/" + name))
	if s.templates.Lookup(name) == nil {
		http.NotFound(w, r)
		return
	}
	tpl, err := s.templates.Clone()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	tpl.Funcs(template.FuncMap{"_": s.catalog(r).Get})
	buf := bytes.Buffer{}
	if err := tpl.ExecuteTemplate(&buf, name, s.baseInfo); err != nil {
		log.Printf("render %s: %s", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = w.Write(buf.Bytes())
	common.HandleError(err)
}

func (s *Server) serveGettext(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, err := w.Write(s.catalog(r).JS())
	common.HandleError(err)
}
