package widget

import (
	"context"
	"log"

	"github.com/boypt/addtorrent/i18n"
)

// Loader fetches the server-rendered HTML of a window or tab page.
type Loader interface {
	RenderTemplate(ctx context.Context, path string) (string, error)
}

type Level int

const (
	LevelInfo Level = iota
	LevelError
)

type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Notifier shows messages to the user.
type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to the standard logger.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notification) {
	if n.Level == LevelError {
		log.Printf("[ui] error: %s: %s", n.Title, n.Message)
		return
	}
	log.Printf("[ui] %s: %s", n.Title, n.Message)
}

// Env carries the collaborators shared by every widget of a UI.
type Env struct {
	Loader     Loader
	Dispatcher Dispatcher
	Notifier   Notifier
	T          i18n.Translator
}

func (e Env) withDefaults() Env {
	if e.Dispatcher == nil {
		e.Dispatcher = Inline{}
	}
	if e.Notifier == nil {
		e.Notifier = LogNotifier{}
	}
	if e.T == nil {
		e.T = i18n.Identity
	}
	return e
}

// Fail reports err to the user under title.
func (e Env) Fail(title string, err error) {
	e.Notifier.Notify(Notification{Level: LevelError, Title: title, Message: err.Error()})
}

// Translate runs s through the configured translator.
func (e Env) Translate(s string) string {
	if e.T == nil {
		return s
	}
	return e.T(s)
}
