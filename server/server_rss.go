package server

import (
	"context"
	"net/http"
	"time"

	"github.com/boypt/addtorrent/engine"
	"github.com/mmcdole/gofeed"
)

type rssItem struct {
	Name      string `json:"name,omitempty"`
	Link      string `json:"link,omitempty"`
	Published string `json:"published,omitempty"`
}

// updateRSS fetches every configured feed, keeping older items ahead of
// the next fetch.
func (s *Server) updateRSS() {
	s.state.Lock()
	urls := s.state.Config.RssURLs()
	s.state.Unlock()

	for _, rss := range urls {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		feed, err := s.feeds.ParseURLWithContext(rss, ctx)
		cancel()
		if err != nil {
			log.Printf("parse feed err %s", err.Error())
			continue
		}
		if s.Debug {
			log.Printf("retrived feed %s from %s", feed.Title, rss)
		}
		if len(feed.Items) == 0 {
			continue
		}

		s.autoAddRSS(feed.Items)

		s.rssMu.Lock()
		olditems, ok := s.rssCache[rss]
		if !ok || len(olditems) == 0 {
			s.rssCache[rss] = feed.Items
		} else if olditems[0].GUID != feed.Items[0].GUID {
			var newitems []*gofeed.Item
			for _, i := range feed.Items {
				if i.GUID == olditems[0].GUID {
					break
				}
				newitems = append(newitems, i)
			}
			log.Printf("feed updated %d new items", len(newitems))
			s.rssCache[rss] = append(newitems, olditems...)
		}
		s.rssMu.Unlock()
	}
}

// torrentLink prefers a bittorrent enclosure over the item link.
func torrentLink(i *gofeed.Item) string {
	for _, e := range i.Enclosures {
		if e.Type == "application/x-bittorrent" && e.URL != "" {
			return e.URL
		}
	}
	return i.Link
}

// autoAddRSS adds the torrents of items whose title matches a configured
// filter. Each item is tried once, whether or not adding worked.
func (s *Server) autoAddRSS(items []*gofeed.Item) {
	s.state.Lock()
	filters := s.state.Config.RssFilters()
	s.state.Unlock()
	if len(filters) == 0 {
		return
	}

	added := 0
	for _, i := range items {
		key := i.GUID
		if key == "" {
			key = i.Link
		}
		matched := false
		for _, re := range filters {
			if re.MatchString(i.Title) {
				matched = true
				break
			}
		}
		s.rssMu.Lock()
		seen := s.rssAdded[key]
		if matched {
			s.rssAdded[key] = true
		}
		s.rssMu.Unlock()
		if !matched || seen {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		stored, err := s.fetchTorrent(ctx, torrentLink(i))
		cancel()
		if err != nil {
			log.Printf("rss auto add %q: %s", i.Title, err)
			continue
		}
		mi, err := s.loadMetaInfo(stored)
		if err != nil {
			log.Printf("rss auto add %q: %s", i.Title, err)
			continue
		}
		if _, err := s.engine.AddMetaInfo(mi, engine.AddOptions{}); err != nil {
			log.Printf("rss auto add %q: %s", i.Title, err)
			continue
		}
		log.Printf("rss auto added %q", i.Title)
		added++
	}
	if added > 0 {
		go s.pushTorrents()
	}
}

func (s *Server) rssItems() []rssItem {
	s.state.Lock()
	urls := s.state.Config.RssURLs()
	s.state.Unlock()

	s.rssMu.Lock()
	defer s.rssMu.Unlock()
	results := []rssItem{}
	for _, rss := range urls {
		for _, i := range s.rssCache[rss] {
			results = append(results, rssItem{Name: i.Title, Link: i.Link, Published: i.Published})
		}
	}
	return results
}

func (s *Server) serveRSS(w http.ResponseWriter, r *http.Request) {
	if _, ok := r.URL.Query()["update"]; ok {
		s.updateRSS()
	}
	s.writeJSON(w, s.rssItems())
}
