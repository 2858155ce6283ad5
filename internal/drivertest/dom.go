package drivertest

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

func tag(n *html.Node) string {
	return strings.ToLower(n.Data)
}

func inputType(n *html.Node) string {
	t := strings.ToLower(attr(n, "type"))
	if t == "" {
		return "text"
	}
	return t
}

func attr(n *html.Node, name string) string {
	v, _ := attrOK(n, name)
	return v
}

func attrOK(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if !strings.EqualFold(a.Key, name) {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

func toggleAttr(n *html.Node, name string) {
	if _, ok := attrOK(n, name); ok {
		removeAttr(n, name)
		return
	}
	setAttr(n, name, name)
}

func closest(n *html.Node, tags ...string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		for _, t := range tags {
			if tag(p) == t {
				return p
			}
		}
	}
	return nil
}

func form(n *html.Node) *html.Node {
	return closest(n, "form")
}

func selectOf(option *html.Node) *html.Node {
	return closest(option, "select")
}

func options(sel *html.Node) []*html.Node {
	return htmlquery.Find(sel, ".//option")
}

func optionValue(opt *html.Node) string {
	if v, ok := attrOK(opt, "value"); ok {
		return v
	}
	return strings.Join(strings.Fields(htmlquery.InnerText(opt)), " ")
}

// optionSelected follows browser defaults: a single select without an
// explicitly selected option selects its first option.
func optionSelected(opt *html.Node) bool {
	if _, ok := attrOK(opt, "selected"); ok {
		return true
	}
	sel := selectOf(opt)
	if sel == nil {
		return false
	}
	if _, multiple := attrOK(sel, "multiple"); multiple {
		return false
	}
	opts := options(sel)
	for _, o := range opts {
		if _, ok := attrOK(o, "selected"); ok {
			return false
		}
	}
	return len(opts) > 0 && opts[0] == opt
}

func enabled(n *html.Node) bool {
	if _, ok := attrOK(n, "disabled"); ok {
		return false
	}
	if tag(n) == "option" {
		if p := closest(n, "select", "optgroup"); p != nil {
			return enabled(p)
		}
	}
	if fs := closest(n, "fieldset"); fs != nil {
		if _, ok := attrOK(fs, "disabled"); ok {
			return false
		}
	}
	return true
}

func displayed(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		switch tag(p) {
		case "head", "script", "style", "title", "template":
			return false
		case "input":
			if inputType(p) == "hidden" {
				return false
			}
		}
		if _, ok := attrOK(p, "hidden"); ok {
			return false
		}
		style := strings.ReplaceAll(strings.ToLower(attr(p, "style")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

func editable(n *html.Node) bool {
	if !enabled(n) {
		return false
	}
	if _, ok := attrOK(n, "readonly"); ok {
		return false
	}
	switch tag(n) {
	case "textarea":
		return true
	case "input":
		switch inputType(n) {
		case "checkbox", "radio", "submit", "button", "image", "reset", "file":
			return false
		}
		return true
	}
	return false
}

func value(n *html.Node) string {
	if v, ok := attrOK(n, "value"); ok {
		return v
	}
	if tag(n) == "textarea" {
		return htmlquery.InnerText(n)
	}
	return ""
}
