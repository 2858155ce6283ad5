// Package page provides the page object base type and the factory that binds
// struct tagged fields of page objects to elements located through a driver.
package page

import (
	"errors"
	"fmt"
	"time"

	"github.com/luispater/wiselenium/driver"
)

// ErrNotLoaded is returned by Get when a page is still not loaded after Load.
var ErrNotLoaded = errors.New("page not loaded")

// Loadable is implemented by page objects with load semantics. IsLoaded
// returns nil when the page is ready.
type Loadable interface {
	Load() error
	IsLoaded() error
}

// Get loads p unless it already is, then checks that it is.
func Get(p Loadable) error {
	if err := p.IsLoaded(); err == nil {
		return nil
	}
	if err := p.Load(); err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}
	if err := p.IsLoaded(); err != nil {
		return fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}
	return nil
}

// Page is embedded by page objects. The zero value gets its driver from
// InitElements.
type Page struct {
	driver driver.Driver
}

// New returns a Page around d.
func New(d driver.Driver) *Page {
	return &Page{driver: d}
}

func (p *Page) setDriver(d driver.Driver) {
	p.driver = d
}

func (p *Page) WrappedDriver() driver.Driver {
	return p.driver
}

// Get loads url in the current tab.
func (p *Page) Get(url string) error {
	return p.driver.Navigate(url)
}

func (p *Page) CurrentURL() (string, error) {
	return p.driver.CurrentURL()
}

func (p *Page) PageSource() (string, error) {
	return p.driver.PageSource()
}

func (p *Page) Title() (string, error) {
	return p.driver.Title()
}

// ExecuteScript runs script as a function body in the page.
func (p *Page) ExecuteScript(script string, args ...any) (any, error) {
	return p.driver.ExecuteScript(script, args...)
}

func (p *Page) FindElement(by driver.By) (driver.Element, error) {
	return p.driver.FindElement(by)
}

func (p *Page) FindElements(by driver.By) ([]driver.Element, error) {
	return p.driver.FindElements(by)
}

// TakeScreenShot saves the viewport and returns the written path.
func (p *Page) TakeScreenShot(fileName string) (string, error) {
	return TakeScreenShot(p.driver, fileName)
}

// WaitFor returns a Wait polling at the default interval.
func (p *Page) WaitFor(timeout time.Duration) *Wait {
	return NewWait(p.driver, timeout)
}

func (p *Page) WaitForInterval(timeout, interval time.Duration) *Wait {
	return NewWait(p.driver, timeout).WithInterval(interval)
}

// Load does nothing; page objects override it.
func (p *Page) Load() error { return nil }

// IsLoaded reports success; page objects override it.
func (p *Page) IsLoaded() error { return nil }

// InitNextPage binds the page object the navigation leads to.
func InitNextPage[T any](from *Page) (*T, error) {
	return InitElements[T](from.driver)
}
