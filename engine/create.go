package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/anacrolix/torrent/bencode"
	"github.com/anacrolix/torrent/metainfo"
)

const defaultPieceLength = 256 << 10

var ErrPieceLength = errors.New("piece length must be a power of two")

type CreateOptions struct {
	Path        string
	Trackers    [][]string
	Webseeds    []string
	PieceLength int64
	Comment     string
	Private     bool
	CreatedBy   string
}

// CreateTorrent hashes the file or directory at opts.Path into a new
// torrent.
func CreateTorrent(opts CreateOptions) (*metainfo.MetaInfo, error) {
	info := metainfo.Info{PieceLength: opts.PieceLength}
	if info.PieceLength == 0 {
		info.PieceLength = defaultPieceLength
	}
	if info.PieceLength < 0 || info.PieceLength&(info.PieceLength-1) != 0 {
		return nil, ErrPieceLength
	}
	if opts.Private {
		private := true
		info.Private = &private
	}
	if err := info.BuildFromFilePath(opts.Path); err != nil {
		return nil, fmt.Errorf("hashing %s: %w", opts.Path, err)
	}
	if info.TotalLength() == 0 {
		return nil, fmt.Errorf("%s: nothing to share", opts.Path)
	}

	mi := &metainfo.MetaInfo{
		AnnounceList: tiers(opts.Trackers),
		UrlList:      opts.Webseeds,
		Comment:      opts.Comment,
		CreatedBy:    opts.CreatedBy,
		CreationDate: time.Now().Unix(),
	}
	if len(mi.AnnounceList) > 0 {
		mi.Announce = mi.AnnounceList[0][0]
	}
	var err error
	if mi.InfoBytes, err = bencode.Marshal(info); err != nil {
		return nil, err
	}
	log.Println("created torrent", mi.HashInfoBytes().HexString(), "from", opts.Path)
	return mi, nil
}

// tiers drops empty tiers and blank trackers.
func tiers(in [][]string) [][]string {
	var out [][]string
	for _, tier := range in {
		var t []string
		for _, tr := range tier {
			if tr != "" {
				t = append(t, tr)
			}
		}
		if len(t) > 0 {
			out = append(out, t)
		}
	}
	return out
}
