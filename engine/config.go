package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v2"
)

const (
	ForbidRuntimeChange uint8 = 1 << iota
	NeedEngineReConfig
	NeedRestartWatch
	NeedUpdateRSS
	NeedUpdateLimits
)

type Config struct {
	AutoStart               bool   `yaml:"AutoStart"`
	EngineDebug             bool   `yaml:"EngineDebug"`
	MuteEngineLog           bool   `yaml:"MuteEngineLog"`
	ObfsPreferred           bool   `yaml:"ObfsPreferred"`
	ObfsRequirePreferred    bool   `yaml:"ObfsRequirePreferred"`
	DisableTrackers         bool   `yaml:"DisableTrackers"`
	DisableIPv6             bool   `yaml:"DisableIPv6"`
	NoDefaultPortForwarding bool   `yaml:"NoDefaultPortForwarding"`
	DisableUTP              bool   `yaml:"DisableUTP"`
	DownloadDirectory       string `yaml:"DownloadDirectory"`
	WatchDirectory          string `yaml:"WatchDirectory"`
	UploadDirectory         string `yaml:"UploadDirectory"`
	EnableUpload            bool   `yaml:"EnableUpload"`
	EnableSeeding           bool   `yaml:"EnableSeeding"`
	IncomingPort            int    `yaml:"IncomingPort"`
	UploadRate              string `yaml:"UploadRate"`
	DownloadRate            string `yaml:"DownloadRate"`
	MaxUploadSize           string `yaml:"MaxUploadSize"`
	MaxTorrentSize          string `yaml:"MaxTorrentSize"`
	ProxyURL                string `yaml:"ProxyURL"`
	RssURL                  string `yaml:"RssURL"`
	RssFilter               string `yaml:"RssFilter"`
	DoneCmd                 string `yaml:"DoneCmd"`
	AllowRuntimeConfigure   bool   `yaml:"AllowRuntimeConfigure"`
}

// InitConf loads the config from specPath or the usual locations, filling
// in defaults. A config file is written when none existed.
func InitConf(specPath string) (*Config, error) {

	viper.SetConfigName("addtorrent")
	viper.AddConfigPath("/etc/addtorrent/")
	viper.AddConfigPath("$HOME/.addtorrent")
	viper.AddConfigPath(".")

	viper.SetDefault("DownloadDirectory", "./downloads")
	viper.SetDefault("WatchDirectory", "./torrents")
	viper.SetDefault("UploadDirectory", "./uploads")
	viper.SetDefault("EnableUpload", true)
	viper.SetDefault("EnableSeeding", true)
	viper.SetDefault("NoDefaultPortForwarding", true)
	viper.SetDefault("AutoStart", true)
	viper.SetDefault("ObfsPreferred", true)
	viper.SetDefault("IncomingPort", 50007)
	viper.SetDefault("MaxUploadSize", "10mb")
	viper.SetDefault("MaxTorrentSize", "10mb")
	viper.SetDefault("AllowRuntimeConfigure", true)

	// user specific config path
	if stat, err := os.Stat(specPath); stat != nil && err == nil {
		viper.SetConfigFile(specPath)
	}

	configExists := true
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
			configExists = false
			if specPath == "" {
				specPath = "./addtorrent.yaml"
			}
			viper.SetConfigFile(specPath)
		} else {
			return nil, err
		}
	}

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return nil, err
	}

	dirChanged, err := c.NormlizeConfigDir()
	if err != nil {
		return nil, err
	}
	if dirChanged {
		viper.Set("DownloadDirectory", c.DownloadDirectory)
		viper.Set("WatchDirectory", c.WatchDirectory)
		viper.Set("UploadDirectory", c.UploadDirectory)
	}

	cf := viper.ConfigFileUsed()
	log.Println("[config] selected config file:", cf)
	if !configExists || dirChanged {
		if err := c.WriteYaml(); err != nil {
			log.Println("[config] failed to write config file:", err)
		} else {
			log.Println("[config] config file written:", cf, "exists:", configExists, "dirchanged:", dirChanged)
		}
	}

	return c, nil
}

// NormlizeConfigDir makes every configured directory absolute.
func (c *Config) NormlizeConfigDir() (bool, error) {
	var changed bool
	for _, dir := range []*string{&c.DownloadDirectory, &c.WatchDirectory, &c.UploadDirectory} {
		if *dir == "" {
			continue
		}
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return false, fmt.Errorf("invalid path %s: %w", *dir, err)
		}
		if *dir != abs {
			changed = true
			*dir = abs
		}
	}
	return changed, nil
}

func (c *Config) UploadLimiter() *rate.Limiter {
	l, err := rateLimiter(c.UploadRate)
	if err != nil {
		log.Printf("RateLimit [%s] unrecognized, set as unlimited", c.UploadRate)
		c.UploadRate = ""
		return rate.NewLimiter(rate.Inf, 0)
	}
	return l
}

func (c *Config) DownloadLimiter() *rate.Limiter {
	l, err := rateLimiter(c.DownloadRate)
	if err != nil {
		log.Printf("RateLimit [%s] unrecognized, set as unlimited", c.DownloadRate)
		c.DownloadRate = ""
		return rate.NewLimiter(rate.Inf, 0)
	}
	return l
}

// UploadSizeLimit is the largest torrent file accepted by an upload, in
// bytes. Zero means unlimited.
func (c *Config) UploadSizeLimit() int64 {
	return sizeLimit(c.MaxUploadSize)
}

// TorrentSizeLimit caps torrent files fetched from URLs.
func (c *Config) TorrentSizeLimit() int64 {
	return sizeLimit(c.MaxTorrentSize)
}

func sizeLimit(s string) int64 {
	if strings.TrimSpace(s) == "" {
		return 0
	}
	n, err := parseSize(s)
	if err != nil {
		log.Printf("size limit [%s] unrecognized, set as unlimited", s)
		return 0
	}
	return n
}

// RssURLs lists the configured feed addresses, one per line.
func (c *Config) RssURLs() []string {
	var urls []string
	for _, u := range strings.Split(c.RssURL, "\n") {
		u = strings.TrimSpace(u)
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			urls = append(urls, u)
		}
	}
	return urls
}

// RssFilters compiles the feed filters, one case-insensitive regular
// expression per line. Lines that do not compile are logged and skipped.
func (c *Config) RssFilters() []*regexp.Regexp {
	var filters []*regexp.Regexp
	for _, line := range strings.Split(c.RssFilter, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + line)
		if err != nil {
			log.Printf("rss filter [%s] ignored: %s", line, err)
			continue
		}
		filters = append(filters, re)
	}
	return filters
}

// Validate reports what has to happen to move from c to nc.
func (c *Config) Validate(nc *Config) uint8 {

	var status uint8

	if c.UploadDirectory != nc.UploadDirectory || c.DoneCmd != nc.DoneCmd {
		status |= ForbidRuntimeChange
	}
	if c.WatchDirectory != nc.WatchDirectory {
		status |= NeedRestartWatch
	}
	if c.RssURL != nc.RssURL || c.RssFilter != nc.RssFilter {
		status |= NeedUpdateRSS
	}
	if c.MaxUploadSize != nc.MaxUploadSize || c.MaxTorrentSize != nc.MaxTorrentSize {
		status |= NeedUpdateLimits
	}

	rfc := reflect.ValueOf(c)
	rfnc := reflect.ValueOf(nc)

	for _, field := range []string{"IncomingPort", "DownloadDirectory",
		"EngineDebug", "MuteEngineLog", "EnableUpload", "EnableSeeding", "UploadRate",
		"DownloadRate", "ObfsPreferred", "ObfsRequirePreferred",
		"DisableTrackers", "DisableIPv6", "DisableUTP", "NoDefaultPortForwarding", "ProxyURL"} {

		cval := reflect.Indirect(rfc).FieldByName(field)
		ncval := reflect.Indirect(rfnc).FieldByName(field)

		if cval.Interface() != ncval.Interface() {
			status |= NeedEngineReConfig
			break
		}
	}

	return status
}

// SyncViper copies changed fields of nc into viper.
func (c *Config) SyncViper(nc Config) {
	cv := reflect.ValueOf(*c)
	nv := reflect.ValueOf(nc)
	typeOfC := cv.Type()
	for i := 0; i < typeOfC.NumField(); i++ {
		if cv.Field(i).Interface() != nv.Field(i).Interface() {
			name := typeOfC.Field(i).Name
			oval := cv.Field(i).Interface()
			val := nv.Field(i).Interface()
			viper.Set(name, val)
			log.Println("config updated", name, ":", oval, "->", val)
		}
	}
}

func (c *Config) WriteYaml() error {
	cf := viper.ConfigFileUsed()
	d, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(cf, d, 0644)
}
