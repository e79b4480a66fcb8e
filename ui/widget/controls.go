package widget

import "fmt"

type Button struct {
	Emitter
	Text string
}

func NewButton(text string) *Button {
	return &Button{Text: text}
}

func (b *Button) OnClick(fn func()) Subscription {
	return b.On(EventClick, func(interface{}) { fn() })
}

func (b *Button) Click() {
	b.Emit(EventClick, nil)
}

// Input is a single-value form field.
type Input struct {
	Emitter
	Name    string
	value   string
	Opacity float64
}

func NewInput(name string) *Input {
	return &Input{Name: name, Opacity: 1}
}

func (in *Input) Value() string { return in.value }

// SetValue updates the value and emits EventChange with the new value.
func (in *Input) SetValue(v string) {
	in.value = v
	in.Emit(EventChange, v)
}

type Option struct {
	Value string
	Text  string
}

// Select is an ordered list of options with at most one selected.
type Select struct {
	Emitter
	options  []Option
	selected int
}

func NewSelect() *Select {
	return &Select{selected: -1}
}

// Grab appends opt, or replaces the text of the option with the same value.
func (s *Select) Grab(opt Option) {
	for i := range s.options {
		if s.options[i].Value == opt.Value {
			s.options[i].Text = opt.Text
			return
		}
	}
	s.options = append(s.options, opt)
}

func (s *Select) Empty() {
	s.options = nil
	s.selected = -1
}

func (s *Select) Len() int { return len(s.options) }

func (s *Select) Options() []Option {
	out := make([]Option, len(s.options))
	copy(out, s.options)
	return out
}

// Value is the value of the selected option, or "" when nothing is selected.
func (s *Select) Value() string {
	if s.selected < 0 || s.selected >= len(s.options) {
		return ""
	}
	return s.options[s.selected].Value
}

// SetValue selects the option with value v and emits EventChange.
func (s *Select) SetValue(v string) error {
	for i, o := range s.options {
		if o.Value == v {
			s.selected = i
			s.Emit(EventChange, v)
			return nil
		}
	}
	return fmt.Errorf("no option %q", v)
}

type Table struct {
	rows [][]string
}

func NewTable() *Table {
	return &Table{}
}

func (t *Table) Grab(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *Table) Empty() { t.rows = nil }

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) Rows() [][]string {
	out := make([][]string, len(t.rows))
	copy(out, t.rows)
	return out
}
