package field

import "github.com/luispater/wiselenium/driver"

// Text is an <input type="text"> and the other single line inputs.
type Text interface {
	Field
	Value() (string, error)
	SendKeys(keys string) error
	Clear() error
	// Fill replaces the current value.
	Fill(value string) error
	// MaxLength is -1 when the field has no limit.
	MaxLength() (int, error)
	IsReadOnly() (bool, error)
}

type TextField struct {
	*Element
}

func NewText(el driver.Element) *TextField {
	return &TextField{Element: NewElement(el)}
}

func (t *TextField) Value() (string, error) {
	return t.value()
}

func (t *TextField) SendKeys(keys string) error {
	return t.el.SendKeys(keys)
}

func (t *TextField) Clear() error {
	return t.el.Clear()
}

func (t *TextField) Fill(value string) error {
	if err := t.el.Clear(); err != nil {
		return err
	}
	return t.el.SendKeys(value)
}

func (t *TextField) MaxLength() (int, error) {
	v, err := t.el.Property("maxLength")
	if err != nil {
		return 0, err
	}
	if n, ok := v.(float64); ok {
		return int(n), nil
	}
	return -1, nil
}

func (t *TextField) IsReadOnly() (bool, error) {
	return t.HasAttribute("readonly")
}

// Password is an <input type="password">.
type Password interface {
	Text
}

type PasswordField struct {
	*TextField
}

func NewPassword(el driver.Element) *PasswordField {
	return &PasswordField{TextField: NewText(el)}
}

// TextArea is a <textarea>.
type TextArea interface {
	Text
	Rows() (string, error)
	Cols() (string, error)
}

type TextAreaField struct {
	*TextField
}

func NewTextArea(el driver.Element) *TextAreaField {
	return &TextAreaField{TextField: NewText(el)}
}

func (t *TextAreaField) Rows() (string, error) { return t.Attribute("rows") }
func (t *TextAreaField) Cols() (string, error) { return t.Attribute("cols") }

// Hidden is an <input type="hidden">.
type Hidden interface {
	Field
	Value() (string, error)
}

type HiddenField struct {
	*Element
}

func NewHidden(el driver.Element) *HiddenField {
	return &HiddenField{Element: NewElement(el)}
}

func (h *HiddenField) Value() (string, error) {
	return h.value()
}
