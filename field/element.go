// Package field provides typed wrappers over located elements. Page objects
// declare fields of these types and the page factory binds them.
package field

import (
	"fmt"

	"github.com/luispater/wiselenium/driver"
)

// Field is what every wrapper offers.
type Field interface {
	Wrapped() driver.Element
	Attribute(name string) (string, error)
	ID() (string, error)
	Class() (string, error)
	Title() (string, error)
	Style() (string, error)
	Text() (string, error)
	IsDisplayed() (bool, error)
	IsEnabled() (bool, error)
	IsDisabled() (bool, error)
}

// Element is the base wrapper embedded by all the others.
type Element struct {
	el driver.Element
}

var _ Field = (*Element)(nil)

func NewElement(el driver.Element) *Element {
	return &Element{el: el}
}

func (e *Element) Wrapped() driver.Element {
	return e.el
}

// Attribute returns the attribute value, "" when it is absent.
func (e *Element) Attribute(name string) (string, error) {
	v, _, err := e.el.Attribute(name)
	return v, err
}

func (e *Element) HasAttribute(name string) (bool, error) {
	_, ok, err := e.el.Attribute(name)
	return ok, err
}

func (e *Element) ID() (string, error)    { return e.Attribute("id") }
func (e *Element) Class() (string, error) { return e.Attribute("class") }
func (e *Element) Title() (string, error) { return e.Attribute("title") }
func (e *Element) Style() (string, error) { return e.Attribute("style") }

func (e *Element) Text() (string, error) {
	return e.el.Text()
}

func (e *Element) TagName() (string, error) {
	return e.el.TagName()
}

func (e *Element) IsDisplayed() (bool, error) {
	return e.el.IsDisplayed()
}

func (e *Element) IsEnabled() (bool, error) {
	return e.el.IsEnabled()
}

func (e *Element) IsDisabled() (bool, error) {
	enabled, err := e.el.IsEnabled()
	return !enabled, err
}

// Click clicks the element.
func (e *Element) Click() error {
	return e.el.Click()
}

func (e *Element) value() (string, error) {
	v, err := e.el.Property("value")
	if err != nil {
		return "", err
	}
	return stringOf(v), nil
}

func stringOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
	}
	return fmt.Sprint(v)
}
