package server

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/boypt/addtorrent/storage"
)

// serveStored lets clients fetch the torrent files kept in the store, such
// as the ones made by create_torrent.
func (s *Server) serveStored(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/uploads/")
	if name == "" || strings.Contains(name, "/") {
		http.NotFound(w, r)
		return
	}
	f, err := s.store.Open(filepath.Join(s.store.Root(), name))
	if errors.Is(err, storage.ErrOutsideRoot) {
		http.Error(w, "Nice try", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/x-bittorrent")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
