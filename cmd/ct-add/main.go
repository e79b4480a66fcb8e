// Command ct-add drives the Add Torrents window without a browser: it picks
// torrent files and URLs through the same dialogs, prints what the server
// parsed and submits the batch.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/boypt/addtorrent/client"
	"github.com/boypt/addtorrent/ui/addtorrent"
	"github.com/boypt/addtorrent/ui/widget"
	"github.com/jpillora/opts"
)

var VERSION = "0.0.0-src" //set with ldflags

type config struct {
	Server string   `opts:"help=Base URL of the server,env=ADDTORRENT_SERVER"`
	Auth   string   `opts:"help=Optional basic auth in form 'user:password',env=AUTH"`
	File   []string `opts:"help=Torrent file to add (repeatable)"`
	URL    []string `opts:"help=Torrent URL to add (repeatable)"`
	DryRun bool     `opts:"help=Only show the parsed torrents"`
}

func main() {
	c := config{Server: "http://localhost:3000"}
	opts.New(&c).
		Name("ct-add").
		Version(VERSION).
		Parse()
	if len(c.File) == 0 && len(c.URL) == 0 {
		log.Fatal("nothing to add")
	}
	if err := run(c); err != nil {
		log.Fatal(err)
	}
}

func run(c config) error {
	user, pass := c.Auth, ""
	if s := strings.SplitN(c.Auth, ":", 2); len(s) == 2 {
		user, pass = s[0], s[1]
	}
	cl := client.NewHTTP(c.Server, user, pass)

	failed := 0
	env := widget.Env{
		Loader:     cl,
		Dispatcher: widget.Inline{},
		Notifier: widget.NotifierFunc(func(n widget.Notification) {
			if n.Level == widget.LevelError {
				failed++
			}
			widget.LogNotifier{}.Notify(n)
		}),
	}
	w := addtorrent.NewWindow(env, cl)
	defer w.Destroy()
	w.Show()
	if !w.Loaded() {
		return fmt.Errorf("could not load the add window from %s", c.Server)
	}

	for _, path := range c.File {
		if err := addFile(w, path); err != nil {
			log.Printf("%s: %s", path, err)
			failed++
		}
	}
	for _, u := range c.URL {
		if err := w.OpenURL(); err != nil {
			return err
		}
		w.URLDialog().SetURL(u)
		if err := w.URLDialog().OK(); err != nil {
			log.Printf("%s: %s", u, err)
			failed++
		}
	}

	printTorrents(w)
	if w.Len() == 0 {
		return fmt.Errorf("no torrents to add")
	}
	if !c.DryRun {
		n, before := w.Len(), failed
		if err := w.Add(); err != nil {
			return err
		}
		if failed == before {
			log.Printf("added %d torrents", n)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d errors", failed)
	}
	return nil
}

func addFile(w *addtorrent.Window, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := w.OpenFile(); err != nil {
		return err
	}
	d := w.FileDialog()
	if err := d.SelectFile(filepath.Base(path), f); err != nil {
		return err
	}
	return d.Submit()
}

func printTorrents(w *addtorrent.Window) {
	for _, opt := range w.Torrents().Options() {
		fmt.Println(opt.Text)
		if err := w.SelectTorrent(opt.Value); err != nil {
			continue
		}
		for _, row := range w.FilesTab().Table().Rows() {
			fmt.Printf("  %s\t%s\n", row[1], row[2])
		}
	}
}
