package drivertest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/luispater/wiselenium/driver"
	"golang.org/x/net/html"
)

// Element is a driver.Element over one html.Node. Form state (checked,
// selected, value) is kept in the node's attributes.
type Element struct {
	d *Driver
	n *html.Node
}

// Node exposes the underlying node.
func (e *Element) Node() *html.Node { return e.n }

func (e *Element) check() error {
	if !e.d.attached(e.n) {
		return fmt.Errorf("%w: <%s>", driver.ErrStaleElement, e.n.Data)
	}
	return nil
}

func (e *Element) FindElement(by driver.By) (driver.Element, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(); err != nil {
		return nil, err
	}
	return e.d.findOne(e.n, by, true)
}

func (e *Element) FindElements(by driver.By) ([]driver.Element, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(); err != nil {
		return nil, err
	}
	return e.d.findAll(e.n, by, true)
}

func (e *Element) Click() error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(); err != nil {
		return err
	}
	return e.click()
}

func (e *Element) click() error {
	if !enabled(e.n) {
		return nil
	}
	switch tag(e.n) {
	case "input":
		switch inputType(e.n) {
		case "checkbox":
			toggleAttr(e.n, "checked")
		case "radio":
			e.checkRadio()
		case "submit", "image":
			return e.submit()
		}
	case "button":
		if t := strings.ToLower(attr(e.n, "type")); t == "" || t == "submit" {
			if form(e.n) != nil {
				return e.submit()
			}
		}
	case "option":
		e.clickOption()
	case "a":
		if href, ok := attrOK(e.n, "href"); ok && !strings.HasPrefix(href, "#") && !strings.HasPrefix(href, "javascript:") {
			return e.d.navigate(href)
		}
	case "label":
		if target := e.labelTarget(); target != nil {
			return (&Element{d: e.d, n: target}).click()
		}
	}
	return nil
}

func (e *Element) labelTarget() *html.Node {
	if id := attr(e.n, "for"); id != "" {
		return htmlquery.FindOne(e.d.doc, fmt.Sprintf("//*[@id=%s]", driver.XPathLiteral(id)))
	}
	return htmlquery.FindOne(e.n, ".//input|.//select|.//textarea")
}

func (e *Element) checkRadio() {
	name := attr(e.n, "name")
	if name != "" {
		scope := form(e.n)
		if scope == nil {
			scope = e.d.doc
		}
		for _, other := range htmlquery.Find(scope, fmt.Sprintf(".//input[@type='radio' and @name=%s]", driver.XPathLiteral(name))) {
			if form(other) == form(e.n) {
				removeAttr(other, "checked")
			}
		}
	}
	setAttr(e.n, "checked", "checked")
}

func (e *Element) clickOption() {
	sel := selectOf(e.n)
	if sel == nil {
		setAttr(e.n, "selected", "selected")
		return
	}
	if !enabled(sel) {
		return
	}
	if _, multiple := attrOK(sel, "multiple"); multiple {
		toggleAttr(e.n, "selected")
		return
	}
	for _, opt := range options(sel) {
		removeAttr(opt, "selected")
	}
	setAttr(e.n, "selected", "selected")
}

func (e *Element) Clear() error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(); err != nil {
		return err
	}
	if !editable(e.n) {
		return fmt.Errorf("drivertest: <%s> is not editable", tag(e.n))
	}
	setAttr(e.n, "value", "")
	return nil
}

func (e *Element) SendKeys(keys string) error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(); err != nil {
		return err
	}
	if !editable(e.n) {
		return fmt.Errorf("drivertest: <%s> is not editable", tag(e.n))
	}
	v := value(e.n) + keys
	if ml, err := strconv.Atoi(attr(e.n, "maxlength")); err == nil && ml >= 0 {
		if runes := []rune(v); len(runes) > ml {
			v = string(runes[:ml])
		}
	}
	setAttr(e.n, "value", v)
	return nil
}

func (e *Element) Submit() error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(); err != nil {
		return err
	}
	return e.submit()
}

func (e *Element) submit() error {
	f := e.n
	if tag(f) != "form" {
		f = form(e.n)
	}
	if f == nil {
		return fmt.Errorf("drivertest: <%s> is not in a form", tag(e.n))
	}
	values := url.Values{}
	for _, field := range htmlquery.Find(f, ".//input|.//textarea|.//select") {
		name := attr(field, "name")
		if name == "" || !enabled(field) {
			continue
		}
		switch tag(field) {
		case "select":
			for _, opt := range options(field) {
				if optionSelected(opt) {
					values.Add(name, optionValue(opt))
				}
			}
		case "input":
			switch inputType(field) {
			case "checkbox", "radio":
				if _, ok := attrOK(field, "checked"); ok {
					v, has := attrOK(field, "value")
					if !has {
						v = "on"
					}
					values.Add(name, v)
				}
			case "submit", "button", "image", "reset":
			default:
				values.Add(name, value(field))
			}
		default:
			values.Add(name, value(field))
		}
	}
	action := attr(f, "action")
	if action == "" {
		action = e.d.url
	}
	target, err := url.Parse(action)
	if err != nil {
		return fmt.Errorf("drivertest: invalid form action %q: %w", action, err)
	}
	target.RawQuery = values.Encode()
	return e.d.navigate(target.String())
}

func (e *Element) Text() (string, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(); err != nil {
		return "", err
	}
	if !displayed(e.n) {
		return "", nil
	}
	return strings.Join(strings.Fields(htmlquery.InnerText(e.n)), " "), nil
}

func (e *Element) TagName() (string, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(); err != nil {
		return "", err
	}
	return tag(e.n), nil
}

func (e *Element) Attribute(name string) (string, bool, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(); err != nil {
		return "", false, err
	}
	v, ok := attrOK(e.n, name)
	return v, ok, nil
}

func (e *Element) Property(name string) (any, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(); err != nil {
		return nil, err
	}
	switch name {
	case "checked":
		_, ok := attrOK(e.n, "checked")
		return ok, nil
	case "selected":
		return optionSelected(e.n), nil
	case "disabled":
		return !enabled(e.n), nil
	case "multiple", "readOnly", "required", "hidden":
		_, ok := attrOK(e.n, strings.ToLower(name))
		return ok, nil
	case "value":
		if tag(e.n) == "option" {
			return optionValue(e.n), nil
		}
		return value(e.n), nil
	case "textContent":
		return htmlquery.InnerText(e.n), nil
	case "tagName":
		return strings.ToUpper(tag(e.n)), nil
	case "maxLength":
		if ml, err := strconv.Atoi(attr(e.n, "maxlength")); err == nil {
			return float64(ml), nil
		}
		return float64(-1), nil
	}
	if v, ok := attrOK(e.n, name); ok {
		return v, nil
	}
	return nil, nil
}

func (e *Element) IsSelected() (bool, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(); err != nil {
		return false, err
	}
	if tag(e.n) == "option" {
		return optionSelected(e.n), nil
	}
	_, ok := attrOK(e.n, "checked")
	return ok, nil
}

func (e *Element) IsEnabled() (bool, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(); err != nil {
		return false, err
	}
	return enabled(e.n), nil
}

func (e *Element) IsDisplayed() (bool, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(); err != nil {
		return false, err
	}
	return displayed(e.n), nil
}
