package page

import (
	"sync"

	"github.com/luispater/wiselenium/driver"
)

// locatingElement is the element handed to field wrappers. It locates its
// target on every call, or once when cache is set.
type locatingElement struct {
	sc    driver.SearchContext
	by    driver.By
	cache bool

	mu     sync.Mutex
	cached driver.Element
}

var _ driver.Element = (*locatingElement)(nil)

func newLocatingElement(sc driver.SearchContext, by driver.By, cache bool) *locatingElement {
	return &locatingElement{sc: sc, by: by, cache: cache}
}

// Locator returns the locator the element is bound with.
func (l *locatingElement) Locator() driver.By {
	return l.by
}

func (l *locatingElement) locate() (driver.Element, error) {
	if !l.cache {
		return l.sc.FindElement(l.by)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cached != nil {
		return l.cached, nil
	}
	el, err := l.sc.FindElement(l.by)
	if err != nil {
		return nil, err
	}
	l.cached = el
	return el, nil
}

func (l *locatingElement) FindElement(by driver.By) (driver.Element, error) {
	el, err := l.locate()
	if err != nil {
		return nil, err
	}
	return el.FindElement(by)
}

func (l *locatingElement) FindElements(by driver.By) ([]driver.Element, error) {
	el, err := l.locate()
	if err != nil {
		return nil, err
	}
	return el.FindElements(by)
}

func (l *locatingElement) do(fn func(driver.Element) error) error {
	el, err := l.locate()
	if err != nil {
		return err
	}
	return fn(el)
}

func (l *locatingElement) Click() error {
	return l.do(driver.Element.Click)
}

func (l *locatingElement) Clear() error {
	return l.do(driver.Element.Clear)
}

func (l *locatingElement) Submit() error {
	return l.do(driver.Element.Submit)
}

func (l *locatingElement) SendKeys(keys string) error {
	return l.do(func(el driver.Element) error { return el.SendKeys(keys) })
}

func (l *locatingElement) Text() (string, error) {
	el, err := l.locate()
	if err != nil {
		return "", err
	}
	return el.Text()
}

func (l *locatingElement) TagName() (string, error) {
	el, err := l.locate()
	if err != nil {
		return "", err
	}
	return el.TagName()
}

func (l *locatingElement) Attribute(name string) (string, bool, error) {
	el, err := l.locate()
	if err != nil {
		return "", false, err
	}
	return el.Attribute(name)
}

func (l *locatingElement) Property(name string) (any, error) {
	el, err := l.locate()
	if err != nil {
		return nil, err
	}
	return el.Property(name)
}

func (l *locatingElement) IsSelected() (bool, error) {
	return l.predicate(driver.Element.IsSelected)
}

func (l *locatingElement) IsEnabled() (bool, error) {
	return l.predicate(driver.Element.IsEnabled)
}

func (l *locatingElement) IsDisplayed() (bool, error) {
	return l.predicate(driver.Element.IsDisplayed)
}

func (l *locatingElement) predicate(fn func(driver.Element) (bool, error)) (bool, error) {
	el, err := l.locate()
	if err != nil {
		return false, err
	}
	return fn(el)
}

// LazyElement returns an element that locates by in sc on every call.
func LazyElement(sc driver.SearchContext, by driver.By) driver.Element {
	return newLocatingElement(sc, by, false)
}
