// Package driver defines the contract between page objects and the browser
// automation engine underneath them.
package driver

import "errors"

var (
	// ErrNoSuchElement is returned by FindElement when nothing matches.
	ErrNoSuchElement = errors.New("no such element")
	// ErrUnsupportedLocator is returned when an engine cannot apply a strategy
	// in the requested scope.
	ErrUnsupportedLocator = errors.New("unsupported locator")
	// ErrStaleElement is returned when an element no longer belongs to the
	// current document.
	ErrStaleElement = errors.New("stale element reference")
)

// SearchContext is anything elements can be located from.
type SearchContext interface {
	// FindElement returns the first match or an error wrapping ErrNoSuchElement.
	FindElement(by By) (Element, error)
	// FindElements returns all matches, an empty slice when there are none.
	FindElements(by By) ([]Element, error)
}

// Element is a located DOM element.
type Element interface {
	SearchContext

	Click() error
	Clear() error
	SendKeys(keys string) error
	Submit() error
	Text() (string, error)
	TagName() (string, error)
	// Attribute returns the HTML attribute and whether it is present.
	Attribute(name string) (string, bool, error)
	// Property returns the live DOM property.
	Property(name string) (any, error)
	IsSelected() (bool, error)
	IsEnabled() (bool, error)
	IsDisplayed() (bool, error)
}

// Driver controls one browser tab.
type Driver interface {
	SearchContext

	Navigate(url string) error
	CurrentURL() (string, error)
	Title() (string, error)
	PageSource() (string, error)
	// ExecuteScript runs script as a function body; args are available as
	// the arguments object.
	ExecuteScript(script string, args ...any) (any, error)
	// Screenshot returns the visible viewport as PNG.
	Screenshot() ([]byte, error)
}
