package createtorrent

import (
	"errors"
	"strings"

	"github.com/boypt/addtorrent/client"
)

var ErrNoPath = errors.New("no path to create a torrent from")

// ParseTrackers reads one announce URL per line. A blank line starts a new
// tier.
func ParseTrackers(text string) [][]string {
	var tiers [][]string
	var tier []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(tier) > 0 {
				tiers = append(tiers, tier)
				tier = nil
			}
			continue
		}
		tier = append(tier, line)
	}
	if len(tier) > 0 {
		tiers = append(tiers, tier)
	}
	return tiers
}

// ParseWebseeds reads one URL per line, skipping blanks.
func ParseWebseeds(text string) []string {
	var seeds []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			seeds = append(seeds, line)
		}
	}
	return seeds
}

// NewRequest assembles a create request from the text of the Trackers and
// Webseeds tabs.
func NewRequest(path, trackers, webseeds string) client.CreateRequest {
	return client.CreateRequest{
		Path:     path,
		Trackers: ParseTrackers(trackers),
		Webseeds: ParseWebseeds(webseeds),
	}
}
