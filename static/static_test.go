package static

import (
	"bytes"
	"html/template"
	"testing"
)

func TestTemplates(t *testing.T) {
	tpl, err := Templates(template.FuncMap{"_": func(s string) string { return "<" + s + ">" }})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{
		"window_add_torrent.html", "add_torrent_files.html", "add_torrent_options.html",
		"window_add_torrent_file.html", "window_create_torrent.html",
		"create_torrent_info.html", "create_torrent_trackers.html",
		"create_torrent_webseeds.html", "create_torrent_options.html",
	} {
		buf := bytes.Buffer{}
		if err := tpl.ExecuteTemplate(&buf, name, nil); err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if name == "window_add_torrent.html" && !bytes.Contains(buf.Bytes(), []byte("&lt;Cancel&gt;")) {
			t.Errorf("%s not translated:\n%s", name, buf.String())
		}
	}
}

func TestCatalogs(t *testing.T) {
	cats, err := Catalogs()
	if err != nil {
		t.Fatal(err)
	}
	for _, lang := range []string{"de", "fr"} {
		if len(cats[lang]) == 0 {
			t.Errorf("missing catalog %s", lang)
		}
	}
	srcs, err := TemplateSources()
	if err != nil {
		t.Fatal(err)
	}
	if len(srcs["index.html"]) == 0 {
		t.Error("index.html missing")
	}
}
