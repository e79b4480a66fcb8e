package engine

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher feeds torrent files written into a directory to an add function.
// Files that were added are removed.
type Watcher struct {
	w    *fsnotify.Watcher
	done chan struct{}
}

func NewWatcher(dir string, add func(path string) error) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{w: fw, done: make(chan struct{})}
	log.Printf("watcher: watching torrent files in %s", dir)
	go w.loop(add)
	return w, nil
}

func (w *Watcher) loop(add func(string) error) {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !strings.HasSuffix(filepath.Base(event.Name), ".torrent") {
				continue
			}
			if st, err := os.Stat(event.Name); err != nil || st.IsDir() || st.Size() == 0 {
				continue
			}
			if err := add(event.Name); err != nil {
				log.Printf("watcher: fail to add %s: %s", event.Name, err)
				continue
			}
			log.Printf("watcher: added %s, file removed", event.Name)
			os.Remove(event.Name)
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			log.Println("watcher error:", err)
		}
	}
}

func (w *Watcher) Close() error {
	err := w.w.Close()
	<-w.done
	return err
}
