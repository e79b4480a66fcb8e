package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/boypt/addtorrent/client"
	"github.com/boypt/addtorrent/common"
	"github.com/boypt/addtorrent/engine"
	"github.com/boypt/addtorrent/storage"
	"github.com/hashicorp/go-multierror"
)

const (
	codeMethodFailed  = 1
	codeUnknownMethod = 2
	codeBadRequest    = 3
)

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     json.RawMessage   `json:"id"`
}

type rpcError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type rpcResponse struct {
	Result interface{}     `json:"result"`
	Error  *rpcError       `json:"error"`
	ID     json.RawMessage `json:"id"`
}

type rpcMethod func(s *Server, ctx context.Context, params []json.RawMessage) (interface{}, error)

var rpcMethods = map[string]rpcMethod{
	"web.add_torrents":              (*Server).addTorrents,
	"web.get_torrent_info":          (*Server).getTorrentInfo,
	"web.download_torrent_from_url": (*Server).downloadTorrentFromURL,
	"web.create_torrent":            (*Server).createTorrent,
}

var errParams = errors.New("invalid params")

func (s *Server) serveRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Invalid request method (expecting POST)", http.StatusMethodNotAllowed)
		return
	}
	var req rpcRequest
	resp := rpcResponse{}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		resp.Error = &rpcError{Message: "malformed request: " + err.Error(), Code: codeBadRequest}
		s.writeJSON(w, resp)
		return
	}
	resp.ID = req.ID
	method, ok := rpcMethods[req.Method]
	if !ok {
		resp.Error = &rpcError{Message: "unknown method " + req.Method, Code: codeUnknownMethod}
		s.writeJSON(w, resp)
		return
	}
	result, err := method(s, r.Context(), req.Params)
	if err != nil {
		code := codeMethodFailed
		if errors.Is(err, errParams) {
			code = codeBadRequest
		}
		if s.Debug {
			log.Printf("rpc %s failed: %s", req.Method, err)
		}
		resp.Error = &rpcError{Message: err.Error(), Code: code}
	} else {
		resp.Result = result
	}
	s.writeJSON(w, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(b)
	common.HandleError(err)
}

func decodeParams(params []json.RawMessage, out ...interface{}) error {
	if len(params) != len(out) {
		return fmt.Errorf("%w: want %d, got %d", errParams, len(out), len(params))
	}
	for i, p := range params {
		if err := json.Unmarshal(p, out[i]); err != nil {
			return fmt.Errorf("%w: param %d: %s", errParams, i, err)
		}
	}
	return nil
}

func (s *Server) loadMetaInfo(p string) (*metainfo.MetaInfo, error) {
	f, err := s.store.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return metainfo.Load(f)
}

// getTorrentInfo answers false for files that cannot be read as torrents.
func (s *Server) getTorrentInfo(ctx context.Context, params []json.RawMessage) (interface{}, error) {
	var p string
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	f, err := s.store.Open(p)
	if errors.Is(err, storage.ErrOutsideRoot) {
		return nil, err
	}
	if err != nil {
		log.Printf("torrent info %s: %s", p, err)
		return false, nil
	}
	defer f.Close()
	info, err := engine.LoadInfo(f, p)
	if err != nil {
		log.Printf("torrent info %s: %s", p, err)
		return false, nil
	}
	return info, nil
}

func (s *Server) downloadTorrentFromURL(ctx context.Context, params []json.RawMessage) (interface{}, error) {
	var raw string
	if err := decodeParams(params, &raw); err != nil {
		return nil, err
	}
	return s.fetchTorrent(ctx, raw)
}

// fetchTorrent stores the body of an http(s) URL without parsing it.
func (s *Server) fetchTorrent(ctx context.Context, raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid remote torrent url: %q", raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := s.fetch.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: %s", u, resp.Status)
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = "download.torrent"
	}
	s.state.Lock()
	limit := s.state.Config.TorrentSizeLimit()
	s.state.Unlock()
	stored, err := s.store.Save(name, resp.Body, limit)
	if err != nil {
		return "", err
	}
	log.Printf("downloaded %s to %s", u, stored)
	return stored, nil
}

func addOptions(m map[string]interface{}) (engine.AddOptions, error) {
	var opts engine.AddOptions
	if v, ok := m["add_paused"]; ok {
		b, ok := v.(bool)
		if !ok {
			return opts, fmt.Errorf("%w: add_paused must be a boolean", errParams)
		}
		opts.Paused = b
	}
	if v, ok := m["download_location"]; ok {
		loc, ok := v.(string)
		if !ok {
			return opts, fmt.Errorf("%w: download_location must be a string", errParams)
		}
		opts.DownloadLocation = loc
	}
	return opts, nil
}

// addTorrents adds every entry it can and reports the failures together.
func (s *Server) addTorrents(ctx context.Context, params []json.RawMessage) (interface{}, error) {
	var torrents []client.PendingTorrent
	if err := decodeParams(params, &torrents); err != nil {
		return nil, err
	}
	var errs error
	added := 0
	for _, t := range torrents {
		opts, err := addOptions(t.Options)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", t.Path, err))
			continue
		}
		mi, err := s.loadMetaInfo(t.Path)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", t.Path, err))
			continue
		}
		if _, err := s.engine.AddMetaInfo(mi, opts); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", t.Path, err))
			continue
		}
		added++
	}
	if added > 0 {
		go s.pushTorrents()
	}
	log.Printf("add_torrents: %d of %d added", added, len(torrents))
	return nil, errs
}

func (s *Server) createTorrent(ctx context.Context, params []json.RawMessage) (interface{}, error) {
	var req client.CreateRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	if !filepath.IsAbs(req.Path) {
		return nil, fmt.Errorf("%w: path must be absolute", errParams)
	}
	mi, err := engine.CreateTorrent(engine.CreateOptions{
		Path:        req.Path,
		Trackers:    req.Trackers,
		Webseeds:    req.Webseeds,
		PieceLength: req.PieceLength,
		Comment:     req.Comment,
		Private:     req.Private,
		CreatedBy:   "addtorrent/" + s.baseInfo.Version,
	})
	if err != nil {
		return nil, err
	}
	buf := bytes.Buffer{}
	if err := mi.Write(&buf); err != nil {
		return nil, err
	}
	stored, err := s.store.Save(filepath.Base(req.Path)+".torrent", &buf, 0)
	if err != nil {
		return nil, err
	}
	if req.AddToSession {
		// seed from where the files already are
		opts := engine.AddOptions{DownloadLocation: filepath.Dir(req.Path)}
		if _, err := s.engine.AddMetaInfo(mi, opts); err != nil {
			return nil, fmt.Errorf("created %s but adding failed: %w", stored, err)
		}
		go s.pushTorrents()
	}
	return stored, nil
}
