// Package client is the boundary through which the dialogs reach the
// server: adding torrents, parsing torrent metadata, fetching torrents by
// URL, uploading torrent files, creating torrents and loading templates.
package client

import (
	"context"
	"io"
)

type TorrentFile struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// TorrentInfo is the parsed metadata of a torrent file stored on the server.
type TorrentInfo struct {
	InfoHash string        `json:"info_hash"`
	Filename string        `json:"filename"`
	Name     string        `json:"name"`
	Files    []TorrentFile `json:"files"`
}

// PendingTorrent is one entry of an add_torrents batch.
type PendingTorrent struct {
	Path    string                 `json:"path"`
	Options map[string]interface{} `json:"options"`
}

type CreateRequest struct {
	Path         string     `json:"path"`
	Trackers     [][]string `json:"trackers"`
	Webseeds     []string   `json:"webseeds"`
	PieceLength  int64      `json:"piece_length"`
	Comment      string     `json:"comment"`
	Private      bool       `json:"private"`
	AddToSession bool       `json:"add_to_session"`
}

type Client interface {
	AddTorrents(ctx context.Context, torrents []PendingTorrent) error
	// GetTorrentInfo returns (nil, nil) when the server could not parse the file.
	GetTorrentInfo(ctx context.Context, path string) (*TorrentInfo, error)
	DownloadTorrentFromURL(ctx context.Context, url string) (string, error)
	UploadTorrentFile(ctx context.Context, name string, r io.Reader) (string, error)
	CreateTorrent(ctx context.Context, req CreateRequest) (string, error)
	RenderTemplate(ctx context.Context, path string) (string, error)
}
