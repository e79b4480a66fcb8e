package engine

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gopkg.in/yaml.v2"
)

func TestConfigValidate(t *testing.T) {
	base := Config{
		IncomingPort:      50007,
		DownloadDirectory: "/data/downloads",
		WatchDirectory:    "/data/torrents",
		UploadDirectory:   "/data/uploads",
		RssURL:            "https://example.com/feed",
	}
	tests := []struct {
		name   string
		change func(c *Config)
		want   uint8
	}{
		{"same", func(c *Config) {}, 0},
		{"port", func(c *Config) { c.IncomingPort = 6881 }, NeedEngineReConfig},
		{"rate", func(c *Config) { c.UploadRate = "low" }, NeedEngineReConfig},
		{"watch", func(c *Config) { c.WatchDirectory = "/tmp" }, NeedRestartWatch},
		{"rss", func(c *Config) { c.RssURL = "" }, NeedUpdateRSS},
		{"uploads", func(c *Config) { c.UploadDirectory = "/tmp" }, ForbidRuntimeChange},
		{"done cmd", func(c *Config) { c.DoneCmd = "/bin/notify" }, ForbidRuntimeChange},
		{"rss filter", func(c *Config) { c.RssFilter = "ubuntu" }, NeedUpdateRSS},
		{"limits", func(c *Config) { c.MaxUploadSize = "1mb" }, NeedUpdateLimits},
		{"several", func(c *Config) { c.DisableUTP = true; c.RssURL = "" }, NeedEngineReConfig | NeedUpdateRSS},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nc := base
			tt.change(&nc)
			if got := base.Validate(&nc); got != tt.want {
				t.Errorf("Validate() = %b, want %b", got, tt.want)
			}
		})
	}
}

func TestConfigLimits(t *testing.T) {
	c := Config{MaxUploadSize: "1kb", MaxTorrentSize: "bogus"}
	if got := c.UploadSizeLimit(); got != 1024 {
		t.Errorf("UploadSizeLimit() = %d", got)
	}
	if got := c.TorrentSizeLimit(); got != 0 {
		t.Errorf("TorrentSizeLimit() = %d", got)
	}
	c.UploadRate = "fake"
	c.UploadLimiter()
	if c.UploadRate != "" {
		t.Errorf("bad rate kept: %q", c.UploadRate)
	}
}

func TestConfigRssURLs(t *testing.T) {
	c := Config{RssURL: "https://a/feed\n\n  http://b/rss  \nftp://c\n"}
	if got := c.RssURLs(); !reflect.DeepEqual(got, []string{"https://a/feed", "http://b/rss"}) {
		t.Errorf("RssURLs() = %v", got)
	}
}

func TestConfigRssFilters(t *testing.T) {
	c := Config{RssFilter: "ubuntu.*amd64\n\n  ([bad\nDebian \\d+ "}
	filters := c.RssFilters()
	if len(filters) != 2 {
		t.Fatalf("RssFilters() = %v", filters)
	}
	for title, want := range map[string]bool{
		"Ubuntu 22.04 AMD64 iso": true,
		"debian-12.iso":          false,
		"Debian 12 netinst":      true,
		"fedora":                 false,
	} {
		matched := false
		for _, re := range filters {
			matched = matched || re.MatchString(title)
		}
		if matched != want {
			t.Errorf("%q matched %v, want %v", title, matched, want)
		}
	}
}

func TestInitConf(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "addtorrent.yaml")
	b, _ := yaml.Marshal(map[string]interface{}{
		"DownloadDirectory": dir,
		"IncomingPort":      6881,
		"UploadRate":        "medium",
	})
	if err := os.WriteFile(path, b, 0644); err != nil {
		t.Fatal(err)
	}
	c, err := InitConf(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.IncomingPort != 6881 || c.UploadRate != "medium" || c.DownloadDirectory != dir {
		t.Errorf("config %+v", c)
	}
	if !c.AutoStart || !c.EnableUpload || c.MaxUploadSize != "10mb" {
		t.Errorf("defaults not applied: %+v", c)
	}
	if !filepath.IsAbs(c.WatchDirectory) || !filepath.IsAbs(c.UploadDirectory) {
		t.Errorf("directories not normalized: %s %s", c.WatchDirectory, c.UploadDirectory)
	}
	written := Config{}
	b, _ = os.ReadFile(path)
	if err := yaml.Unmarshal(b, &written); err != nil {
		t.Fatal(err)
	}
	if written.WatchDirectory != c.WatchDirectory {
		t.Errorf("normalized config not written back: %q", written.WatchDirectory)
	}
}
