package i18n

import (
	"fmt"
	"regexp"
	"sort"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

var (
	jsString   = regexp.MustCompile(`_\('(.*?)'\)`)
	tmplString = regexp.MustCompile(`\{\{\s*_\s+"((?:[^"\\]|\\.)*)"\s*\}\}`)
)

// Extract finds the translatable strings in a script or template: calls
// like _('Add') and template actions like {{_ "Add"}}. The result is
// sorted and free of duplicates.
func Extract(src []byte) []string {
	seen := map[string]bool{}
	for _, re := range []*regexp.Regexp{jsString, tmplString} {
		for _, m := range re.FindAllSubmatch(src, -1) {
			seen[string(m[1])] = true
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Seed registers keys in every catalog of the bundle without translating
// them, so gettext.js lists each of them.
func (b *Bundle) Seed(keys ...string) {
	for _, c := range b.catalogs {
		c.mu.Lock()
		for _, k := range keys {
			if _, ok := c.maps[k]; !ok {
				c.maps[k] = ""
			}
		}
		c.mu.Unlock()
	}
}

// LoadYAML adds the translations in data, a flat YAML mapping of source
// string to translation, to the catalog for lang.
func (b *Bundle) LoadYAML(lang string, data []byte) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("language %q: %w", lang, err)
	}
	m := map[string]string{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("catalog %s: %w", lang, err)
	}
	c := b.Catalog(tag)
	for k, v := range m {
		c.Add(k, v)
	}
	return nil
}
