package widget

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type fakeLoader map[string]string

func (f fakeLoader) RenderTemplate(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, ok := f[path]
	if !ok {
		return "", errors.New("not found")
	}
	return html, nil
}

type recorder struct {
	mu   sync.Mutex
	seen []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	r.seen = append(r.seen, n)
	r.mu.Unlock()
}

func TestEmitterOrderAndRemove(t *testing.T) {
	var e Emitter
	var got []string
	a := e.On(EventShow, func(interface{}) { got = append(got, "a") })
	e.On(EventShow, func(interface{}) { got = append(got, "b") })
	e.Once(EventShow, func(interface{}) { got = append(got, "once") })

	e.Emit(EventShow, nil)
	a.Remove()
	a.Remove()
	e.Emit(EventShow, nil)

	want := []string{"a", "b", "once", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("emitted %v, want %v", got, want)
	}
	if n := e.Listeners(EventShow); n != 1 {
		t.Errorf("Listeners() = %d, want 1", n)
	}
	e.RemoveAll()
	if n := e.Listeners(EventShow); n != 0 {
		t.Errorf("Listeners() after RemoveAll = %d", n)
	}
}

func TestEmitterRemoveDuringEmit(t *testing.T) {
	var e Emitter
	calls := 0
	var sub Subscription
	sub = e.On(EventLoaded, func(interface{}) {
		calls++
		sub.Remove()
	})
	e.Emit(EventLoaded, nil)
	e.Emit(EventLoaded, nil)
	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}
}

func TestWindowLifecycle(t *testing.T) {
	env := Env{Loader: fakeLoader{"/w.html": `<div><button class="ok">Ok</button></div>`}}
	w := NewWindow(env, Options{Title: "W", URL: "/w.html"})

	var events []Event
	for _, ev := range []Event{EventBeforeShow, EventLoaded, EventShow, EventHide} {
		ev := ev
		w.On(ev, func(interface{}) { events = append(events, ev) })
	}
	if w.State() != Hidden {
		t.Fatalf("initial state %v", w.State())
	}
	w.Show()
	if w.State() != Shown || !w.Loaded() {
		t.Fatalf("state after Show = %v loaded=%v", w.State(), w.Loaded())
	}
	if text := w.Content().Text("button.ok"); text != "Ok" {
		t.Errorf("content text = %q", text)
	}
	w.Hide()
	w.Show()
	w.Show()

	want := []Event{EventBeforeShow, EventLoaded, EventShow, EventHide, EventBeforeShow, EventShow}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events %v, want %v", events, want)
	}
}

func TestWindowLoadFailure(t *testing.T) {
	rec := &recorder{}
	w := NewWindow(Env{Loader: fakeLoader{}, Notifier: rec}, Options{Title: "W", URL: "/missing.html"})
	var gotErr error
	w.On(EventError, func(arg interface{}) { gotErr = arg.(error) })
	w.Show()
	if w.State() != Hidden || w.Loaded() {
		t.Errorf("state %v loaded %v after failed load", w.State(), w.Loaded())
	}
	if gotErr == nil || len(rec.seen) != 1 || rec.seen[0].Level != LevelError {
		t.Errorf("failure not reported: %v %+v", gotErr, rec.seen)
	}
}

func TestWindowWithoutURL(t *testing.T) {
	w := NewWindow(Env{}, Options{Title: "Inline"})
	if err := w.SetContent(`<form><input id="urlInput" name="urlInput" value="x"></form>`); err != nil {
		t.Fatal(err)
	}
	loaded := 0
	w.On(EventLoaded, func(interface{}) { loaded++ })
	w.Show()
	w.Hide()
	w.Show()
	if loaded != 1 || w.State() != Shown {
		t.Errorf("loaded %d times, state %v", loaded, w.State())
	}
	in, err := w.Content().Input("input#urlInput")
	if err != nil {
		t.Fatal(err)
	}
	if in.Name != "urlInput" || in.Value() != "x" {
		t.Errorf("input %+v", in)
	}
}

func TestWindowDestroy(t *testing.T) {
	w := NewWindow(Env{}, Options{})
	w.On(EventShow, func(interface{}) {})
	w.Show()
	w.Destroy()
	if w.State() != Hidden || w.Listeners(EventShow) != 0 || w.Context().Err() == nil {
		t.Errorf("window not torn down")
	}
	w.Show()
	if w.State() != Hidden {
		t.Errorf("destroyed window shown")
	}
}

func TestWindowHideWhileLoading(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	w := NewWindow(Env{Loader: fakeLoader{"/w.html": "<p>hi</p>"}, Dispatcher: loop}, Options{URL: "/w.html"})
	loop.Call(func() {
		w.Show()
		if w.State() != Loading {
			t.Errorf("state %v, want loading", w.State())
		}
		w.Hide()
	})
	loop.Settle()
	loop.Call(func() {
		if w.State() != Hidden || !w.Loaded() {
			t.Errorf("state %v loaded %v", w.State(), w.Loaded())
		}
	})
}

type countingLoader struct {
	fakeLoader
	mu    sync.Mutex
	calls int
}

func (c *countingLoader) RenderTemplate(ctx context.Context, path string) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.fakeLoader.RenderTemplate(ctx, path)
}

func TestWindowReshowWhileLoading(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	loader := &countingLoader{fakeLoader: fakeLoader{"/w.html": "<p>hi</p>"}}
	w := NewWindow(Env{Loader: loader, Dispatcher: loop}, Options{URL: "/w.html"})
	loads, shows := 0, 0
	w.On(EventLoaded, func(interface{}) { loads++ })
	w.On(EventShow, func(interface{}) { shows++ })
	loop.Call(func() {
		w.Show()
		w.Hide()
		w.Show()
		if w.State() != Loading {
			t.Errorf("state %v, want loading", w.State())
		}
	})
	loop.Settle()
	loop.Call(func() {
		if loads != 1 || shows != 1 {
			t.Errorf("loaded %d times, shown %d times, want 1 and 1", loads, shows)
		}
		if w.State() != Shown || !w.Loaded() {
			t.Errorf("state %v loaded %v", w.State(), w.Loaded())
		}
	})
	loader.mu.Lock()
	defer loader.mu.Unlock()
	if loader.calls != 1 {
		t.Errorf("template fetched %d times, want 1", loader.calls)
	}
}

func TestTabs(t *testing.T) {
	env := Env{Loader: fakeLoader{"/files.html": "<table></table>"}}
	tabs := NewTabs(env, context.Background())
	files := NewTabPage("Files", "/files.html")
	var loaded *Content
	files.On(EventLoaded, func(arg interface{}) { loaded = arg.(*Content) })
	tabs.AddPage(files)
	broken := NewTabPage("Options", "/nope.html")
	failed := false
	broken.On(EventError, func(interface{}) { failed = true })
	tabs.AddPage(broken)

	if loaded == nil || !files.Loaded() {
		t.Fatal("files tab not loaded")
	}
	if _, err := loaded.Element("table"); err != nil {
		t.Error(err)
	}
	if !failed || broken.Loaded() {
		t.Error("broken tab should fail to load")
	}
	if tabs.Active() != files {
		t.Error("first page should be active")
	}
	if err := tabs.Select("Options"); err != nil || tabs.Active() != broken {
		t.Errorf("Select() = %v", err)
	}
	if err := tabs.Select("Missing"); err == nil {
		t.Error("Select(Missing) should fail")
	}
	if tabs.Page("Files") != files || len(tabs.Pages()) != 2 {
		t.Error("page lookup")
	}
}

func TestSelect(t *testing.T) {
	s := NewSelect()
	s.Grab(Option{Value: "a", Text: "A"})
	s.Grab(Option{Value: "b", Text: "B"})
	s.Grab(Option{Value: "a", Text: "A2"})
	if s.Len() != 2 || s.Options()[0].Text != "A2" {
		t.Errorf("options %+v", s.Options())
	}
	var changed []string
	s.On(EventChange, func(arg interface{}) { changed = append(changed, arg.(string)) })
	if err := s.SetValue("b"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetValue("zz"); err == nil {
		t.Error("SetValue(zz) should fail")
	}
	if s.Value() != "b" || !reflect.DeepEqual(changed, []string{"b"}) {
		t.Errorf("value %q changes %v", s.Value(), changed)
	}
	s.Empty()
	if s.Len() != 0 || s.Value() != "" {
		t.Error("Empty() left state behind")
	}
}

func TestContentMissingElement(t *testing.T) {
	c, err := ParseContent("<div></div>")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Button("button.add"); !errors.Is(err, ErrMissingElement) {
		t.Errorf("want ErrMissingElement, got %v", err)
	}
	var empty Content
	if _, err := empty.Element("p"); !errors.Is(err, ErrMissingElement) {
		t.Errorf("zero Content: %v", err)
	}
}

func TestLoopOrdering(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		loop.Go(func() {
			time.Sleep(time.Duration(5-i) * time.Millisecond)
			loop.Post(func() { got = append(got, i) })
		})
	}
	loop.Settle()
	loop.Call(func() {
		if len(got) != 5 {
			t.Errorf("got %d callbacks", len(got))
		}
	})
	loop.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}
