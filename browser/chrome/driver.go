package chrome

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/luispater/wiselenium/driver"
	log "github.com/sirupsen/logrus"
)

// Driver is a driver.Driver bound to one Chrome tab.
type Driver struct {
	ctx      context.Context
	cancel   context.CancelFunc
	targetID target.ID
	timeout  time.Duration
}

var _ driver.Driver = (*Driver)(nil)

// NewDriver creates a new tab in the browser behind browserCtx and navigates
// it to url.
func NewDriver(browserCtx context.Context, url string) (*Driver, error) {
	if browserCtx == nil {
		return nil, fmt.Errorf("browser context not initialized. Call Launch first")
	}
	if url == "" {
		url = "about:blank"
	}

	var newTargetID target.ID
	err := chromedp.Run(
		browserCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			newTargetID, err = target.CreateTarget(url).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create new target (tab): %w", err)
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(newTargetID))
	if err = chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to attach to target %s: %w", newTargetID, err)
	}

	log.Debugf("New chromedp tab (targetID: %s) created.", newTargetID)

	return &Driver{
		ctx:      tabCtx,
		cancel:   tabCancel,
		targetID: newTargetID,
	}, nil
}

// SetTimeout bounds every operation. Zero means no bound.
func (d *Driver) SetTimeout(timeout time.Duration) {
	d.timeout = timeout
}

// Context returns the chromedp context of the tab.
func (d *Driver) Context() context.Context {
	return d.ctx
}

func (d *Driver) Close() {
	d.cancel()
}

func (d *Driver) run(actions ...chromedp.Action) error {
	opCtx := d.ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(d.ctx, d.timeout)
		defer cancel()
	}
	return chromedp.Run(opCtx, actions...)
}

func (d *Driver) Navigate(url string) error {
	if err := d.run(chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (d *Driver) CurrentURL() (string, error) {
	var location string
	if err := d.run(chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("failed to get location: %w", err)
	}
	return location, nil
}

func (d *Driver) Title() (string, error) {
	var title string
	if err := d.run(chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("failed to get title: %w", err)
	}
	return title, nil
}

func (d *Driver) PageSource() (string, error) {
	var source string
	if err := d.run(chromedp.OuterHTML("html", &source, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to get page source: %w", err)
	}
	return source, nil
}

func (d *Driver) ExecuteScript(script string, args ...any) (any, error) {
	if args == nil {
		args = []any{}
	}
	encodedArgs, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode script arguments: %w", err)
	}
	expression := fmt.Sprintf(`(function(){ const r = (function(){%s}).apply(null, %s); return r === undefined ? null : r; })()`, script, encodedArgs)

	var raw []byte
	if err = d.run(chromedp.Evaluate(expression, &raw)); err != nil {
		return nil, fmt.Errorf("failed to execute script: %w", err)
	}
	return decodeValue(raw)
}

func decodeValue(raw []byte) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("failed to decode script result: %w", err)
	}
	return value, nil
}

func (d *Driver) Screenshot() ([]byte, error) {
	var buf []byte
	if err := d.run(chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

func (d *Driver) FindElement(by driver.By) (driver.Element, error) {
	elements, err := d.query(by, nil)
	return first(by, elements, err)
}

func (d *Driver) FindElements(by driver.By) ([]driver.Element, error) {
	return d.query(by, nil)
}

func (d *Driver) query(by driver.By, from *cdp.Node) ([]driver.Element, error) {
	var nodes []*cdp.Node
	var action chromedp.QueryAction
	if sel, ok := by.CSSSelector(); ok {
		opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
		if from != nil {
			opts = append(opts, chromedp.FromNode(from))
		}
		action = chromedp.Nodes(sel, &nodes, opts...)
	} else {
		expr := by.Value
		if by.Strategy != driver.StrategyXPath {
			var ok bool
			if expr, ok = by.LinkXPath(); !ok {
				return nil, fmt.Errorf("%w: %s", driver.ErrUnsupportedLocator, by)
			}
		}
		if from != nil {
			return nil, fmt.Errorf("%w: %s inside an element", driver.ErrUnsupportedLocator, by)
		}
		action = chromedp.Nodes(expr, &nodes, chromedp.BySearch, chromedp.AtLeast(0))
	}

	if err := d.run(action); err != nil {
		return nil, fmt.Errorf("failed to locate %s: %w", by, err)
	}

	elements := make([]driver.Element, 0, len(nodes))
	for _, n := range nodes {
		if n.NodeType != cdp.NodeTypeElement {
			continue
		}
		elements = append(elements, &Element{d: d, node: n, by: by})
	}
	return elements, nil
}

func first(by driver.By, elements []driver.Element, err error) (driver.Element, error) {
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: %s", driver.ErrNoSuchElement, by)
	}
	return elements[0], nil
}
