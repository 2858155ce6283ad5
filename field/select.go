package field

import (
	"errors"
	"fmt"

	"github.com/luispater/wiselenium/driver"
)

var (
	ErrNoSuchOption = errors.New("no such option")
	ErrNotMultiple  = errors.New("select does not allow multiple selection")
)

// Option is an <option> of a select.
type Option interface {
	Field
	Click() error
	Value() (string, error)
	IsSelected() (bool, error)
}

type OptionElement struct {
	*Element
}

func NewOption(el driver.Element) *OptionElement {
	return &OptionElement{Element: NewElement(el)}
}

func (o *OptionElement) Value() (string, error) {
	return o.value()
}

func (o *OptionElement) IsSelected() (bool, error) {
	return o.el.IsSelected()
}

// Select is a single choice <select>.
type Select interface {
	Field
	Options() ([]Option, error)
	SelectedOption() (Option, error)
	SelectByValue(value string) error
	SelectByVisibleText(text string) error
	SelectByIndex(index int) error
	IsMultiple() (bool, error)
}

// MultiSelect is a <select multiple>.
type MultiSelect interface {
	Select
	SelectedOptions() ([]Option, error)
	DeselectAll() error
	DeselectByValue(value string) error
	DeselectByVisibleText(text string) error
	DeselectByIndex(index int) error
}

type SelectField struct {
	*Element
}

func NewSelect(el driver.Element) *SelectField {
	return &SelectField{Element: NewElement(el)}
}

func (s *SelectField) options() ([]*OptionElement, error) {
	elements, err := s.el.FindElements(driver.TagName("option"))
	if err != nil {
		return nil, err
	}
	options := make([]*OptionElement, len(elements))
	for i, el := range elements {
		options[i] = NewOption(el)
	}
	return options, nil
}

func (s *SelectField) Options() ([]Option, error) {
	options, err := s.options()
	if err != nil {
		return nil, err
	}
	result := make([]Option, len(options))
	for i, o := range options {
		result[i] = o
	}
	return result, nil
}

func (s *SelectField) selected() ([]Option, error) {
	options, err := s.options()
	if err != nil {
		return nil, err
	}
	var result []Option
	for _, o := range options {
		ok, errSelected := o.IsSelected()
		if errSelected != nil {
			return nil, errSelected
		}
		if ok {
			result = append(result, o)
		}
	}
	return result, nil
}

func (s *SelectField) SelectedOption() (Option, error) {
	selected, err := s.selected()
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: nothing selected", ErrNoSuchOption)
	}
	return selected[0], nil
}

func (s *SelectField) IsMultiple() (bool, error) {
	return s.HasAttribute("multiple")
}

// find returns the options accepted by match.
func (s *SelectField) find(match func(o *OptionElement) (bool, error), describe string) ([]*OptionElement, error) {
	options, err := s.options()
	if err != nil {
		return nil, err
	}
	var found []*OptionElement
	for _, o := range options {
		ok, errMatch := match(o)
		if errMatch != nil {
			return nil, errMatch
		}
		if ok {
			found = append(found, o)
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchOption, describe)
	}
	return found, nil
}

func byValue(value string) func(o *OptionElement) (bool, error) {
	return func(o *OptionElement) (bool, error) {
		v, err := o.Value()
		return v == value, err
	}
}

func byText(text string) func(o *OptionElement) (bool, error) {
	return func(o *OptionElement) (bool, error) {
		t, err := o.Text()
		return t == text, err
	}
}

func (s *SelectField) byIndex(index int) ([]*OptionElement, error) {
	options, err := s.options()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(options) {
		return nil, fmt.Errorf("%w: index %d of %d options", ErrNoSuchOption, index, len(options))
	}
	return options[index : index+1], nil
}

// setSelected clicks every option whose selected state differs from state.
// A single select only takes the first match.
func (s *SelectField) setSelected(options []*OptionElement, state bool) error {
	multiple, err := s.IsMultiple()
	if err != nil {
		return err
	}
	if !multiple && len(options) > 1 {
		options = options[:1]
	}
	for _, o := range options {
		if err = clickUnless(o.el, state); err != nil {
			return err
		}
	}
	return nil
}

func (s *SelectField) SelectByValue(value string) error {
	options, err := s.find(byValue(value), fmt.Sprintf("value %q", value))
	if err != nil {
		return err
	}
	return s.setSelected(options, true)
}

func (s *SelectField) SelectByVisibleText(text string) error {
	options, err := s.find(byText(text), fmt.Sprintf("text %q", text))
	if err != nil {
		return err
	}
	return s.setSelected(options, true)
}

func (s *SelectField) SelectByIndex(index int) error {
	options, err := s.byIndex(index)
	if err != nil {
		return err
	}
	return s.setSelected(options, true)
}

type MultiSelectField struct {
	*SelectField
}

func NewMultiSelect(el driver.Element) *MultiSelectField {
	return &MultiSelectField{SelectField: NewSelect(el)}
}

func (m *MultiSelectField) SelectedOptions() ([]Option, error) {
	return m.selected()
}

func (m *MultiSelectField) deselect(options []*OptionElement, err error) error {
	if err != nil {
		return err
	}
	multiple, err := m.IsMultiple()
	if err != nil {
		return err
	}
	if !multiple {
		return ErrNotMultiple
	}
	return m.setSelected(options, false)
}

func (m *MultiSelectField) DeselectAll() error {
	return m.deselect(m.options())
}

func (m *MultiSelectField) DeselectByValue(value string) error {
	return m.deselect(m.find(byValue(value), fmt.Sprintf("value %q", value)))
}

func (m *MultiSelectField) DeselectByVisibleText(text string) error {
	return m.deselect(m.find(byText(text), fmt.Sprintf("text %q", text)))
}

func (m *MultiSelectField) DeselectByIndex(index int) error {
	return m.deselect(m.byIndex(index))
}
