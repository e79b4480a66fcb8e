// Package i18n holds the string catalogs used by server templates, the
// browser gettext.js and the headless dialogs.
package i18n

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Catalog maps source strings to their translation. Unknown strings are
// returned untranslated.
type Catalog struct {
	mu   sync.RWMutex
	maps map[string]string
}

func NewCatalog() *Catalog {
	return &Catalog{maps: map[string]string{}}
}

func (c *Catalog) Add(key, translation string) {
	c.mu.Lock()
	c.maps[key] = translation
	c.mu.Unlock()
}

func (c *Catalog) Get(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t, ok := c.maps[key]; ok && t != "" {
		return t
	}
	return key
}

// Keys returns every source string in the catalog, sorted.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.maps))
	for k := range c.maps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// JS renders the catalog as the gettext.js script loaded by the browser UI.
func (c *Catalog) JS() []byte {
	buf := bytes.Buffer{}
	buf.WriteString(gettextJS)
	for _, k := range c.Keys() {
		fmt.Fprintf(&buf, "GetText.add('%s', '%s');\n", jsEscape(k), jsEscape(c.Get(k)))
	}
	return buf.Bytes()
}

var jsReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "<", `\x3c`)

func jsEscape(s string) string {
	return jsReplacer.Replace(s)
}

const gettextJS = `GetText = {
    maps: {},
    add: function(string, translation) {
        this.maps[string] = translation;
    },
    get: function(string) {
        if (this.maps[string]) {
            return this.maps[string];
        } else {
            return string;
        }
    }
}

var _ = GetText.get.bind(GetText);

`

// Translator turns a source string into display text.
type Translator func(string) string

// Identity leaves every string untranslated.
func Identity(s string) string { return s }

// Bundle is a set of per-language catalogs with English as the fallback.
type Bundle struct {
	tags     []language.Tag
	catalogs map[language.Tag]*Catalog
	matcher  language.Matcher
}

func NewBundle() *Bundle {
	b := &Bundle{catalogs: map[language.Tag]*Catalog{}}
	b.Catalog(language.English)
	return b
}

// Catalog returns the catalog for tag, creating it when missing.
func (b *Bundle) Catalog(tag language.Tag) *Catalog {
	if c, ok := b.catalogs[tag]; ok {
		return c
	}
	c := NewCatalog()
	b.catalogs[tag] = c
	b.tags = append(b.tags, tag)
	b.matcher = language.NewMatcher(b.tags)
	return c
}

// Match picks the best catalog for an Accept-Language header value.
func (b *Bundle) Match(acceptLanguage string) *Catalog {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return b.catalogs[language.English]
	}
	_, idx, conf := b.matcher.Match(prefs...)
	if conf == language.No {
		return b.catalogs[language.English]
	}
	return b.catalogs[b.tags[idx]]
}
