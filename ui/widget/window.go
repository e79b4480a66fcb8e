package widget

import (
	"context"
	"errors"
	"fmt"
	"log"
)

var (
	ErrNoLoader  = errors.New("no template loader")
	ErrNotLoaded = errors.New("window content not loaded")
)

type State int

const (
	Hidden State = iota
	Loading
	Shown
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Loading:
		return "loading"
	case Shown:
		return "shown"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Options struct {
	Title  string
	Width  int
	Height int
	// URL of the template rendered into the window on first show. Empty
	// means the content is built in place with SetContent.
	URL string
}

// Window is a modal window. Its content is loaded on the first Show, which
// fires EventLoaded exactly once before EventShow.
type Window struct {
	Emitter
	opts    Options
	env     Env
	state   State
	loaded  bool
	loading bool
	content *Content

	ctx    context.Context
	cancel context.CancelFunc
}

func NewWindow(env Env, opts Options) *Window {
	ctx, cancel := context.WithCancel(context.Background())
	return &Window{
		opts:    opts,
		env:     env.withDefaults(),
		content: &Content{},
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (w *Window) Options() Options         { return w.opts }
func (w *Window) Env() Env                 { return w.env }
func (w *Window) State() State             { return w.state }
func (w *Window) Loaded() bool             { return w.loaded }
func (w *Window) Content() *Content        { return w.content }
func (w *Window) Context() context.Context { return w.ctx }

// SetContent replaces the window body with html.
func (w *Window) SetContent(html string) error {
	c, err := ParseContent(html)
	if err != nil {
		return err
	}
	c.ID = w.content.ID
	w.content = c
	return nil
}

func (w *Window) Show() {
	if w.state != Hidden || w.ctx.Err() != nil {
		return
	}
	w.Emit(EventBeforeShow, nil)
	if w.loaded {
		w.setShown()
		return
	}
	// a load started before a Hide is still running; show when it lands
	if w.loading {
		w.state = Loading
		return
	}
	if w.opts.URL == "" {
		w.loaded = true
		w.Emit(EventLoaded, w.content)
		w.setShown()
		return
	}
	if w.env.Loader == nil {
		w.failLoad(ErrNoLoader)
		return
	}
	w.state = Loading
	w.loading = true
	ctx, url, loader := w.ctx, w.opts.URL, w.env.Loader
	w.env.Dispatcher.Go(func() {
		html, err := loader.RenderTemplate(ctx, url)
		w.env.Dispatcher.Post(func() {
			w.finishLoad(html, err)
		})
	})
}

func (w *Window) finishLoad(html string, err error) {
	w.loading = false
	if w.ctx.Err() != nil || w.loaded {
		return
	}
	if err == nil {
		err = w.SetContent(html)
	}
	if err != nil {
		w.failLoad(err)
		return
	}
	w.loaded = true
	w.Emit(EventLoaded, w.content)
	if w.state == Loading {
		w.setShown()
	}
}

func (w *Window) failLoad(err error) {
	w.state = Hidden
	err = fmt.Errorf("loading %q: %w", w.opts.Title, err)
	log.Printf("[ui] %s", err)
	w.Emit(EventError, err)
	w.env.Fail(w.opts.Title, err)
}

func (w *Window) setShown() {
	w.state = Shown
	w.Emit(EventShow, nil)
}

func (w *Window) Hide() {
	if w.state == Hidden {
		return
	}
	w.state = Hidden
	w.Emit(EventHide, nil)
}

// Destroy hides the window, abandons in-flight loads and drops every listener.
func (w *Window) Destroy() {
	w.Hide()
	w.cancel()
	w.RemoveAll()
}
