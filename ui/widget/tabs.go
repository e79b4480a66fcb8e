package widget

import (
	"context"
	"fmt"
)

// TabPage is one page of a Tabs container. Pages with a URL load their
// template when added to a container.
type TabPage struct {
	Emitter
	Name    string
	URL     string
	loaded  bool
	content *Content
}

func NewTabPage(name, url string) *TabPage {
	return &TabPage{Name: name, URL: url, content: &Content{}}
}

func (p *TabPage) Loaded() bool      { return p.loaded }
func (p *TabPage) Content() *Content { return p.content }

type Tabs struct {
	Emitter
	env    Env
	ctx    context.Context
	pages  []*TabPage
	active int
}

func NewTabs(env Env, ctx context.Context) *Tabs {
	return &Tabs{env: env.withDefaults(), ctx: ctx}
}

func (t *Tabs) AddPage(p *TabPage) {
	t.pages = append(t.pages, p)
	if p.URL == "" {
		p.loaded = true
		p.Emit(EventLoaded, p.content)
		return
	}
	if t.env.Loader == nil {
		p.Emit(EventError, ErrNoLoader)
		return
	}
	ctx, loader := t.ctx, t.env.Loader
	t.env.Dispatcher.Go(func() {
		html, err := loader.RenderTemplate(ctx, p.URL)
		t.env.Dispatcher.Post(func() {
			if ctx.Err() != nil {
				return
			}
			var c *Content
			if err == nil {
				c, err = ParseContent(html)
			}
			if err != nil {
				err = fmt.Errorf("loading tab %q: %w", p.Name, err)
				p.Emit(EventError, err)
				t.env.Fail(p.Name, err)
				return
			}
			p.content = c
			p.loaded = true
			p.Emit(EventLoaded, c)
		})
	})
}

func (t *Tabs) Pages() []*TabPage {
	out := make([]*TabPage, len(t.pages))
	copy(out, t.pages)
	return out
}

func (t *Tabs) Page(name string) *TabPage {
	for _, p := range t.pages {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Select makes the named page active and emits EventChange with it.
func (t *Tabs) Select(name string) error {
	for i, p := range t.pages {
		if p.Name == name {
			t.active = i
			t.Emit(EventChange, p)
			return nil
		}
	}
	return fmt.Errorf("no tab %q", name)
}

func (t *Tabs) Active() *TabPage {
	if len(t.pages) == 0 {
		return nil
	}
	return t.pages[t.active]
}
