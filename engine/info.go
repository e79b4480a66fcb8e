package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/boypt/addtorrent/client"
)

// LoadInfo parses a torrent file into the metadata shown by the Add window.
// filename is recorded as the torrent's server-side path.
func LoadInfo(r io.Reader, filename string) (*client.TorrentInfo, error) {
	mi, err := metainfo.Load(r)
	if err != nil {
		return nil, fmt.Errorf("reading metainfo: %w", err)
	}
	return Info(mi, filename)
}

// Info describes mi.
func Info(mi *metainfo.MetaInfo, filename string) (*client.TorrentInfo, error) {
	info, err := mi.UnmarshalInfo()
	if err != nil {
		return nil, fmt.Errorf("reading info dictionary: %w", err)
	}
	ti := &client.TorrentInfo{
		InfoHash: mi.HashInfoBytes().HexString(),
		Filename: filename,
		Name:     info.Name,
	}
	if len(info.Files) == 0 {
		ti.Files = []client.TorrentFile{{Path: info.Name, Size: info.Length}}
		return ti, nil
	}
	for _, f := range info.Files {
		ti.Files = append(ti.Files, client.TorrentFile{
			Path: info.Name + "/" + strings.Join(f.Path, "/"),
			Size: f.Length,
		})
	}
	return ti, nil
}
