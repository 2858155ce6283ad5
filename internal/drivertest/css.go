package drivertest

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/luispater/wiselenium/driver"
	"golang.org/x/net/html"
)

// queryNodes returns the descendants of scope matched by by, in document
// order. CSS based strategies go through cascadia, XPath and link text
// through htmlquery.
func queryNodes(scope *html.Node, by driver.By, scoped bool) ([]*html.Node, error) {
	if sel, ok := by.CSSSelector(); ok {
		group, err := cascadia.ParseGroup(sel)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", driver.ErrUnsupportedLocator, by, err)
		}
		return cascadia.QueryAll(scope, group), nil
	}

	var expr string
	switch by.Strategy {
	case driver.StrategyXPath:
		expr = by.Value
	case driver.StrategyLinkText, driver.StrategyPartialLinkText:
		expr, _ = by.LinkXPath()
		if scoped {
			expr = "." + expr
		}
	default:
		return nil, fmt.Errorf("%w: %s", driver.ErrUnsupportedLocator, by)
	}
	nodes, err := htmlquery.QueryAll(scope, expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", driver.ErrUnsupportedLocator, by, err)
	}
	return nodes, nil
}
