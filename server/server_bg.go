package server

import (
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

func (s *Server) backgroundRoutines() {

	// initial state
	s.refreshState()

	go func() {
		for range s.syncConnected {
			if atomic.CompareAndSwapInt32(&s.syncSemphor, 0, 1) {
				go s.tickerRoutine()
			}
		}
	}()

	// rss updater
	go func() {
		s.updateRSS()
		for range time.Tick(30 * time.Minute) {
			s.updateRSS()
		}
	}()
}

// tickerRoutine refreshes the synced state while browsers are connected.
func (s *Server) tickerRoutine() {
	dur := 3 * time.Second
	tk := time.NewTicker(dur)
	defer tk.Stop()

	log.Println("[tickerRoutine] sync connected, ticking for", dur)
	var noConnCount uint
	for range tk.C {
		if s.state.NumConnections() == 0 {
			noConnCount++
		} else {
			noConnCount = 0
		}
		if noConnCount > 60 { // about 3 minutes
			atomic.StoreInt32(&s.syncSemphor, 0)
			log.Println("[tickerRoutine] exit for no web connections")
			return
		}
		s.refreshState()
	}
}

func (s *Server) refreshState() {
	s.state.Lock()
	s.state.Stats.System.loadStats(s.state.Config.DownloadDirectory)
	s.state.Unlock()
	s.pushTorrents()
}

// pushTorrents publishes the session torrents and stored uploads.
func (s *Server) pushTorrents() {
	ts := s.engine.GetTorrents()
	uploads, err := s.store.List()
	if err != nil && s.Debug {
		log.Printf("list uploads: %s", err)
	}
	s.state.Lock()
	s.state.Torrents = ts
	if err == nil {
		s.state.Uploads = uploads
	}
	s.state.Unlock()
	if uploads != nil && s.Debug {
		log.Printf("%d torrents, uploads use %s", len(ts), humanize.IBytes(uint64(uploads.Size)))
	}
	s.state.Push()
}
