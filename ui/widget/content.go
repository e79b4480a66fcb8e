package widget

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrMissingElement = errors.New("missing element")

// Content is the parsed HTML body of a window or tab page.
type Content struct {
	ID  string
	doc *goquery.Document
}

func ParseContent(html string) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing content: %w", err)
	}
	return &Content{doc: doc}, nil
}

// Element returns the first element matching selector.
func (c *Content) Element(selector string) (*goquery.Selection, error) {
	if c.doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingElement, selector)
	}
	sel := c.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingElement, selector)
	}
	return sel, nil
}

// Button binds the element matching selector to a new Button.
func (c *Content) Button(selector string) (*Button, error) {
	sel, err := c.Element(selector)
	if err != nil {
		return nil, err
	}
	return NewButton(strings.TrimSpace(sel.Text())), nil
}

// Input binds the element matching selector to a new Input.
func (c *Content) Input(selector string) (*Input, error) {
	sel, err := c.Element(selector)
	if err != nil {
		return nil, err
	}
	in := NewInput(sel.AttrOr("name", ""))
	in.value = sel.AttrOr("value", "")
	if goquery.NodeName(sel) == "textarea" {
		in.value = sel.Text()
	}
	return in, nil
}

func (c *Content) Text(selector string) string {
	sel, err := c.Element(selector)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(sel.Text())
}

// Attr returns attribute name of the element matching selector, or "".
func (c *Content) Attr(selector, name string) string {
	sel, err := c.Element(selector)
	if err != nil {
		return ""
	}
	return sel.AttrOr(name, "")
}

func (c *Content) HTML() string {
	if c.doc == nil {
		return ""
	}
	h, _ := c.doc.Find("body").Html()
	return h
}
