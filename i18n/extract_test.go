package i18n

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	src := `title: _('Add Torrents'), other: _('Url'),
	<button>{{_ "Cancel"}}</button> <b>{{ _ "Add Torrents" }}</b> {{.Title}}`
	want := []string{"Add Torrents", "Cancel", "Url"}
	if got := Extract([]byte(src)); !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %v, want %v", got, want)
	}
	if got := Extract(nil); len(got) != 0 {
		t.Errorf("Extract(nil) = %v", got)
	}
}

func TestLoadYAMLAndSeed(t *testing.T) {
	b := NewBundle()
	if err := b.LoadYAML("de", []byte("Cancel: Abbrechen\nUrl: Adresse\n")); err != nil {
		t.Fatal(err)
	}
	if err := b.LoadYAML("xx-!!", nil); err == nil {
		t.Error("bad language accepted")
	}
	if err := b.LoadYAML("fr", []byte("- not a map")); err == nil {
		t.Error("bad yaml accepted")
	}
	b.Seed("Cancel", "Add")
	de := b.Match("de-DE")
	if de.Get("Cancel") != "Abbrechen" || de.Get("Add") != "Add" {
		t.Errorf("de catalog: %q %q", de.Get("Cancel"), de.Get("Add"))
	}
	js := string(b.Match("en").JS())
	if !strings.Contains(js, "GetText.add('Add', 'Add');") || !strings.Contains(js, "GetText.add('Cancel', 'Cancel');") {
		t.Errorf("seeded keys missing from gettext.js:\n%s", js)
	}
}
