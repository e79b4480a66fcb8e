package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/boypt/addtorrent/common"
	"github.com/boypt/addtorrent/storage"
	"github.com/dustin/go-humanize"
)

type uploadResponse struct {
	Success bool     `json:"success"`
	Files   []string `json:"files"`
	Error   string   `json:"error,omitempty"`
}

// serveUpload stores the torrent files of a multipart form. Each part
// named "file" is saved; the reply lists the stored paths in order.
func (s *Server) serveUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Invalid request method (expecting POST)", http.StatusMethodNotAllowed)
		return
	}
	s.state.Lock()
	limit := s.state.Config.UploadSizeLimit()
	s.state.Unlock()

	fail := func(code int, msg string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		common.HandleError(json.NewEncoder(w).Encode(uploadResponse{Error: msg}))
	}
	mr, err := r.MultipartReader()
	if err != nil {
		fail(http.StatusBadRequest, err.Error())
		return
	}
	resp := uploadResponse{Files: []string{}}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			fail(http.StatusBadRequest, err.Error())
			return
		}
		if part.FormName() != "file" || part.FileName() == "" {
			part.Close()
			continue
		}
		stored, err := s.store.Save(part.FileName(), part, limit)
		part.Close()
		if errors.Is(err, storage.ErrTooLarge) {
			fail(http.StatusRequestEntityTooLarge, "torrent file larger than "+humanize.IBytes(uint64(limit)))
			return
		}
		if err != nil {
			fail(http.StatusInternalServerError, err.Error())
			return
		}
		log.Printf("upload: stored %s", stored)
		resp.Files = append(resp.Files, stored)
	}
	if len(resp.Files) == 0 {
		fail(http.StatusBadRequest, "no file in upload")
		return
	}
	resp.Success = true
	s.writeJSON(w, resp)
}
