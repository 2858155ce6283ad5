package field

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/luispater/wiselenium/driver"
)

// Constructor wraps a located element into a field object.
type Constructor func(driver.Element) any

var registry = struct {
	sync.RWMutex
	byType map[reflect.Type]Constructor
	byName map[string]reflect.Type
}{
	byType: make(map[reflect.Type]Constructor),
	byName: make(map[string]reflect.Type),
}

// Register makes T bindable by page factories and, when name is not empty,
// addressable by name from scenario files. T is usually an interface or a
// pointer to a wrapper struct.
func Register[T any](name string, fn func(driver.Element) T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	registry.Lock()
	defer registry.Unlock()
	registry.byType[t] = func(el driver.Element) any { return fn(el) }
	if name != "" {
		registry.byName[strings.ToLower(name)] = t
	}
}

// IsRegistered reports whether values of t can be produced by Wrap.
func IsRegistered(t reflect.Type) bool {
	registry.RLock()
	defer registry.RUnlock()
	_, ok := registry.byType[t]
	return ok
}

// Wrap builds a value of type t around el.
func Wrap(t reflect.Type, el driver.Element) (reflect.Value, error) {
	registry.RLock()
	fn, ok := registry.byType[t]
	registry.RUnlock()
	if !ok {
		return reflect.Value{}, fmt.Errorf("no field wrapper registered for %s", t)
	}
	v := reflect.ValueOf(fn(el))
	if !v.IsValid() {
		return reflect.Zero(t), nil
	}
	if v.Type() != t {
		v = v.Convert(t)
	}
	return v, nil
}

// Lookup returns the type registered under name.
func Lookup(name string) (reflect.Type, bool) {
	registry.RLock()
	defer registry.RUnlock()
	t, ok := registry.byName[strings.ToLower(name)]
	return t, ok
}

// Names lists the registered wrapper names in order.
func Names() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.byName))
	for name := range registry.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("element", func(el driver.Element) driver.Element { return el })

	Register("base", NewElement)

	Register("button", func(el driver.Element) Button { return NewButton(el) })
	Register("", NewButton)

	Register("checkbox", func(el driver.Element) Checkbox { return NewCheckbox(el) })
	Register("", NewCheckbox)

	Register("radiobutton", func(el driver.Element) Radiobutton { return NewRadiobutton(el) })
	Register("", NewRadiobutton)

	Register("text", func(el driver.Element) Text { return NewText(el) })
	Register("", NewText)

	Register("password", func(el driver.Element) Password { return NewPassword(el) })
	Register("", NewPassword)

	Register("textarea", func(el driver.Element) TextArea { return NewTextArea(el) })
	Register("", NewTextArea)

	Register("hidden", func(el driver.Element) Hidden { return NewHidden(el) })
	Register("", NewHidden)

	Register("link", func(el driver.Element) Link { return NewLink(el) })
	Register("", NewLink)

	Register("image", func(el driver.Element) Image { return NewImage(el) })
	Register("", NewImage)

	Register("label", func(el driver.Element) Label { return NewLabel(el) })
	Register("", NewLabel)

	Register("select", func(el driver.Element) Select { return NewSelect(el) })
	Register("", NewSelect)

	Register("multiselect", func(el driver.Element) MultiSelect { return NewMultiSelect(el) })
	Register("", NewMultiSelect)

	Register("option", func(el driver.Element) Option { return NewOption(el) })
	Register("", NewOption)
}
