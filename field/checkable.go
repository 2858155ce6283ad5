package field

import "github.com/luispater/wiselenium/driver"

// Button is an <input type="button|submit|reset"> or a <button>.
type Button interface {
	Field
	Click() error
	Value() (string, error)
}

type ButtonField struct {
	*Element
}

func NewButton(el driver.Element) *ButtonField {
	return &ButtonField{Element: NewElement(el)}
}

func (b *ButtonField) Value() (string, error) {
	return b.value()
}

// Text returns the caption: the value of input buttons, the content of
// <button> elements.
func (b *ButtonField) Text() (string, error) {
	tag, err := b.el.TagName()
	if err != nil {
		return "", err
	}
	if tag == "input" {
		return b.value()
	}
	return b.el.Text()
}

// Checkbox is an <input type="checkbox">.
type Checkbox interface {
	Field
	IsChecked() (bool, error)
	Check() error
	Uncheck() error
	Toggle() error
	Value() (string, error)
}

type CheckboxField struct {
	*Element
}

func NewCheckbox(el driver.Element) *CheckboxField {
	return &CheckboxField{Element: NewElement(el)}
}

func (c *CheckboxField) IsChecked() (bool, error) {
	return c.el.IsSelected()
}

// Check clicks the checkbox unless it is already checked.
func (c *CheckboxField) Check() error {
	return clickUnless(c.el, true)
}

// Uncheck clicks the checkbox if it is checked.
func (c *CheckboxField) Uncheck() error {
	return clickUnless(c.el, false)
}

func (c *CheckboxField) Toggle() error {
	return c.el.Click()
}

func (c *CheckboxField) Value() (string, error) {
	return c.value()
}

// Radiobutton is an <input type="radio">.
type Radiobutton interface {
	Field
	IsChecked() (bool, error)
	Check() error
	Value() (string, error)
}

type RadiobuttonField struct {
	*Element
}

func NewRadiobutton(el driver.Element) *RadiobuttonField {
	return &RadiobuttonField{Element: NewElement(el)}
}

func (r *RadiobuttonField) IsChecked() (bool, error) {
	return r.el.IsSelected()
}

// Check clicks the radio button unless it is already checked. Clicking a
// disabled radio button leaves it unchecked.
func (r *RadiobuttonField) Check() error {
	return clickUnless(r.el, true)
}

func (r *RadiobuttonField) Value() (string, error) {
	return r.value()
}

// clickUnless clicks el unless its selected state already equals state.
func clickUnless(el driver.Element, state bool) error {
	selected, err := el.IsSelected()
	if err != nil {
		return err
	}
	if selected == state {
		return nil
	}
	return el.Click()
}
