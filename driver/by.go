package driver

import (
	"fmt"
	"strings"
)

// Strategy names a way of locating elements.
type Strategy string

const (
	StrategyID              Strategy = "id"
	StrategyName            Strategy = "name"
	StrategyIDOrName        Strategy = "id-or-name"
	StrategyCSS             Strategy = "css"
	StrategyXPath           Strategy = "xpath"
	StrategyClassName       Strategy = "class"
	StrategyTagName         Strategy = "tag"
	StrategyLinkText        Strategy = "link"
	StrategyPartialLinkText Strategy = "partial-link"
)

var strategies = []Strategy{
	StrategyID,
	StrategyName,
	StrategyIDOrName,
	StrategyCSS,
	StrategyXPath,
	StrategyClassName,
	StrategyTagName,
	StrategyLinkText,
	StrategyPartialLinkText,
}

// By is a locator: a strategy and the value it is applied to.
type By struct {
	Strategy Strategy
	Value    string
}

func ID(id string) By                { return By{StrategyID, id} }
func Name(name string) By            { return By{StrategyName, name} }
func IDOrName(v string) By           { return By{StrategyIDOrName, v} }
func CSS(selector string) By         { return By{StrategyCSS, selector} }
func XPath(expr string) By           { return By{StrategyXPath, expr} }
func ClassName(class string) By      { return By{StrategyClassName, class} }
func TagName(tag string) By          { return By{StrategyTagName, tag} }
func LinkText(text string) By        { return By{StrategyLinkText, text} }
func PartialLinkText(text string) By { return By{StrategyPartialLinkText, text} }

func (b By) String() string {
	return fmt.Sprintf("%s=%s", b.Strategy, b.Value)
}

// ParseBy parses "strategy=value". A string without a known strategy prefix
// is taken as a CSS selector.
func ParseBy(s string) (By, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return By{}, fmt.Errorf("empty locator")
	}
	if i := strings.Index(s, "="); i > 0 {
		prefix := Strategy(strings.TrimSpace(s[:i]))
		for _, strategy := range strategies {
			if prefix == strategy {
				value := strings.TrimSpace(s[i+1:])
				if value == "" {
					return By{}, fmt.Errorf("empty value for locator strategy %s", prefix)
				}
				return By{strategy, value}, nil
			}
		}
	}
	return CSS(s), nil
}

// IDOrNameCSS returns a CSS selector matching either the id or the name.
func IDOrNameCSS(v string) string {
	return fmt.Sprintf(`[id=%s],[name=%s]`, cssString(v), cssString(v))
}

// CSSSelector rewrites the attribute based strategies as CSS. ok is false for
// strategies that have no CSS form.
func (b By) CSSSelector() (selector string, ok bool) {
	switch b.Strategy {
	case StrategyCSS:
		return b.Value, true
	case StrategyID:
		return "[id=" + cssString(b.Value) + "]", true
	case StrategyName:
		return "[name=" + cssString(b.Value) + "]", true
	case StrategyIDOrName:
		return IDOrNameCSS(b.Value), true
	case StrategyClassName:
		return "." + cssIdent(b.Value), true
	case StrategyTagName:
		return cssIdent(b.Value), true
	}
	return "", false
}

// cssString quotes s as a CSS string token.
func cssString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\%x `, r)
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// cssIdent escapes s as a CSS identifier the way CSS.escape does.
func cssIdent(s string) string {
	var b strings.Builder
	for i, r := range s {
		digit := r >= '0' && r <= '9'
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case r < 0x20 || r == 0x7f, digit && i == 0, digit && i == 1 && s[0] == '-':
			fmt.Fprintf(&b, `\%x `, r)
		case r == '-' && i == 0 && len(s) == 1:
			b.WriteString(`\-`)
		case r >= 0x80 || r == '-' || r == '_' || digit || (r|0x20 >= 'a' && r|0x20 <= 'z'):
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LinkXPath returns the XPath used for link text strategies.
func (b By) LinkXPath() (expr string, ok bool) {
	switch b.Strategy {
	case StrategyLinkText:
		return fmt.Sprintf(`//a[normalize-space(.)=%s]`, XPathLiteral(b.Value)), true
	case StrategyPartialLinkText:
		return fmt.Sprintf(`//a[contains(normalize-space(.),%s)]`, XPathLiteral(b.Value)), true
	}
	return "", false
}

// XPathLiteral quotes s as an XPath string literal.
func XPathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}
