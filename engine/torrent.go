package engine

import (
	"sync"
	"time"

	"github.com/anacrolix/torrent"
)

type Torrent struct {
	// put at first postition to prevent memorty align issues.
	Stats torrent.TorrentStats

	//anacrolix/torrent
	InfoHash   string
	Name       string
	Magnet     string
	Loaded     bool
	Downloaded int64
	Uploaded   int64
	Size       int64
	Files      []*File

	//session
	Started          bool
	Done             bool
	IsSeeding        bool
	Percent          float32
	DownloadRate     float32
	UploadRate       float32
	SeedRatio        float32
	DownloadLocation string
	DoneCmdCalled    bool
	AddedAt          time.Time
	StartedAt        time.Time
	t                *torrent.Torrent
	updatedAt        time.Time
	sync.Mutex
}

type File struct {
	Path      string
	Size      int64
	Completed int64
	Done      bool
	Started   bool
	Percent   float32
	f         *torrent.File
}

// Update refreshes the status fields from the underlying torrent. It
// reports true on the first update that sees the torrent complete.
func (torrent *Torrent) Update(t *torrent.Torrent) (finished bool) {
	torrent.Lock()
	defer torrent.Unlock()

	torrent.t = t
	if t.Info() != nil {
		torrent.Loaded = true
		torrent.updateStatus()
		torrent.updateConnStat()
		finished = torrent.markDone()
	}

	if torrent.Magnet == "" {
		meta := t.Metainfo()
		if ifo, err := meta.UnmarshalInfo(); err == nil {
			torrent.Magnet = meta.Magnet(nil, &ifo).String()
		}
		torrent.Name = t.Name()
	}
	return finished
}

func (torrent *Torrent) markDone() bool {
	if !torrent.Done || torrent.DoneCmdCalled {
		return false
	}
	torrent.DoneCmdCalled = true
	return true
}

func (torrent *Torrent) updateConnStat() {
	torrent.Stats = torrent.t.Stats()

	bRead := torrent.Stats.BytesReadData.Int64()
	bWrite := torrent.Stats.BytesWrittenData.Int64()
	if bRead > 0 {
		torrent.SeedRatio = float32(bWrite) / float32(bRead)
	}

	now := time.Now()
	bytes := torrent.t.BytesCompleted()
	ulbytes := bWrite

	if !torrent.updatedAt.IsZero() {
		dtinv := float32(time.Second) / float32(now.Sub(torrent.updatedAt))
		torrent.DownloadRate = float32(bytes-torrent.Downloaded) * dtinv
		torrent.UploadRate = float32(ulbytes-torrent.Uploaded) * dtinv
	}

	torrent.Downloaded = bytes
	torrent.Uploaded = ulbytes
	torrent.updatedAt = now
}

func (torrent *Torrent) updateStatus() {
	tfiles := torrent.t.Files()
	if len(tfiles) > 0 && torrent.Files == nil {
		torrent.Files = make([]*File, len(tfiles))
	}
	for i, f := range tfiles {
		file := torrent.Files[i]
		if file == nil {
			file = &File{Path: f.Path(), Started: torrent.Started, f: f}
			torrent.Files[i] = file
		}
		file.Size = f.Length()
		file.Completed = f.BytesCompleted()
		file.Percent = percent(file.Completed, file.Size)
		file.Done = file.Completed == file.Size
	}

	torrent.Size = torrent.t.Length()
	torrent.Percent = percent(torrent.t.BytesCompleted(), torrent.Size)
	torrent.Done = torrent.t.BytesMissing() == 0
	torrent.IsSeeding = torrent.t.Seeding() && torrent.Done
}

func percent(n, total int64) float32 {
	if total == 0 {
		return float32(0)
	}
	return float32(int(float64(10000)*(float64(n)/float64(total)))) / 100
}
