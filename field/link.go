package field

import "github.com/luispater/wiselenium/driver"

// Link is an <a>.
type Link interface {
	Field
	Click() error
	Href() (string, error)
	Target() (string, error)
}

type LinkElement struct {
	*Element
}

func NewLink(el driver.Element) *LinkElement {
	return &LinkElement{Element: NewElement(el)}
}

func (l *LinkElement) Href() (string, error)   { return l.Attribute("href") }
func (l *LinkElement) Target() (string, error) { return l.Attribute("target") }

// Image is an <img>.
type Image interface {
	Field
	Click() error
	Src() (string, error)
	Alt() (string, error)
}

type ImageElement struct {
	*Element
}

func NewImage(el driver.Element) *ImageElement {
	return &ImageElement{Element: NewElement(el)}
}

func (i *ImageElement) Src() (string, error) { return i.Attribute("src") }
func (i *ImageElement) Alt() (string, error) { return i.Attribute("alt") }

// Label is a <label>.
type Label interface {
	Field
	Click() error
	For() (string, error)
}

type LabelElement struct {
	*Element
}

func NewLabel(el driver.Element) *LabelElement {
	return &LabelElement{Element: NewElement(el)}
}

func (l *LabelElement) For() (string, error) { return l.Attribute("for") }
