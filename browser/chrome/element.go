package chrome

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/luispater/wiselenium/driver"
)

const (
	jsIsSelected  = `function(){ return !!(this.checked || this.selected); }`
	jsIsEnabled   = `function(){ return !this.disabled; }`
	jsIsDisplayed = `function(){
		const style = window.getComputedStyle(this);
		if (style.visibility === 'hidden' || style.display === 'none') { return false; }
		return !!(this.offsetWidth || this.offsetHeight || this.getClientRects().length);
	}`
	jsProperty     = `function(name){ const v = this[name]; return v === undefined ? null : v; }`
	jsSelectOption = `function(){
		const sel = this.closest('select');
		if (this.disabled || (sel && sel.disabled)) { return; }
		if (sel && sel.multiple) { this.selected = !this.selected; } else { this.selected = true; }
		if (sel) {
			sel.dispatchEvent(new Event('input', {bubbles: true}));
			sel.dispatchEvent(new Event('change', {bubbles: true}));
		}
	}`
)

// Element is a driver.Element over one DOM node of a tab.
type Element struct {
	d    *Driver
	node *cdp.Node
	by   driver.By
}

var _ driver.Element = (*Element)(nil)

// Node exposes the underlying cdp node.
func (e *Element) Node() *cdp.Node {
	return e.node
}

func (e *Element) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

func (e *Element) call(function string, res any, args ...any) error {
	return e.d.run(chromedp.ActionFunc(func(ctx context.Context) error {
		return chromedp.CallFunctionOnNode(ctx, e.node, function, res, args...)
	}))
}

func (e *Element) FindElement(by driver.By) (driver.Element, error) {
	elements, err := e.d.query(by, e.node)
	return first(by, elements, err)
}

func (e *Element) FindElements(by driver.By) ([]driver.Element, error) {
	return e.d.query(by, e.node)
}

func (e *Element) Click() error {
	var err error
	if strings.EqualFold(e.node.NodeName, "option") {
		err = e.call(jsSelectOption, nil)
	} else {
		err = e.d.run(chromedp.MouseClickNode(e.node))
	}
	if err != nil {
		return fmt.Errorf("error clicking element %s: %w", e.by, err)
	}
	return nil
}

func (e *Element) Clear() error {
	if err := e.d.run(chromedp.Clear(e.ids(), chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("error clearing element %s: %w", e.by, err)
	}
	return nil
}

func (e *Element) SendKeys(keys string) error {
	if err := e.d.run(chromedp.SendKeys(e.ids(), keys, chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("error sending keys to element %s: %w", e.by, err)
	}
	return nil
}

func (e *Element) Submit() error {
	if err := e.d.run(chromedp.Submit(e.ids(), chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("error submitting element %s: %w", e.by, err)
	}
	return nil
}

func (e *Element) Text() (string, error) {
	var text string
	if err := e.d.run(chromedp.Text(e.ids(), &text, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("error getting text from element %s: %w", e.by, err)
	}
	return strings.TrimSpace(text), nil
}

func (e *Element) TagName() (string, error) {
	return strings.ToLower(e.node.NodeName), nil
}

func (e *Element) Attribute(name string) (string, bool, error) {
	var value string
	var ok bool
	if err := e.d.run(chromedp.AttributeValue(e.ids(), name, &value, &ok, chromedp.ByNodeID)); err != nil {
		return "", false, fmt.Errorf("error getting attribute %s from element %s: %w", name, e.by, err)
	}
	return value, ok, nil
}

func (e *Element) Property(name string) (any, error) {
	var raw []byte
	if err := e.call(jsProperty, &raw, name); err != nil {
		return nil, fmt.Errorf("error getting property %s from element %s: %w", name, e.by, err)
	}
	return decodeValue(raw)
}

func (e *Element) IsSelected() (bool, error) {
	return e.predicate(jsIsSelected, "selected")
}

func (e *Element) IsEnabled() (bool, error) {
	return e.predicate(jsIsEnabled, "enabled")
}

func (e *Element) IsDisplayed() (bool, error) {
	return e.predicate(jsIsDisplayed, "displayed")
}

func (e *Element) predicate(function, what string) (bool, error) {
	var res bool
	if err := e.call(function, &res); err != nil {
		return false, fmt.Errorf("error checking whether element %s is %s: %w", e.by, what, err)
	}
	return res, nil
}
