// Package drivertest provides an in-memory driver.Driver over parsed HTML so
// page objects and field wrappers can be exercised without a browser.
package drivertest

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/luispater/wiselenium/driver"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// ScriptFunc serves ExecuteScript calls for one script body.
type ScriptFunc func(d *Driver, args []any) (any, error)

// Driver is a driver.Driver backed by an html.Node tree.
type Driver struct {
	mu      sync.Mutex
	client  *http.Client
	docs    map[string]string
	scripts map[string]ScriptFunc
	url     string
	doc     *html.Node
	history []string
}

type Option func(*Driver)

// WithClient sets the client used for http(s) navigation.
func WithClient(c *http.Client) Option {
	return func(d *Driver) { d.client = c }
}

// WithDocument serves body for url without any I/O.
func WithDocument(url, body string) Option {
	return func(d *Driver) { d.docs[url] = body }
}

func New(opts ...Option) *Driver {
	d := &Driver{
		client:  http.DefaultClient,
		docs:    make(map[string]string),
		scripts: make(map[string]ScriptFunc),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// HandleScript registers fn for an exact script body.
func (d *Driver) HandleScript(script string, fn ScriptFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scripts[strings.TrimSpace(script)] = fn
}

// History returns every URL navigated to, oldest first.
func (d *Driver) History() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.history...)
}

func (d *Driver) Navigate(rawURL string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.navigate(rawURL)
}

func (d *Driver) navigate(rawURL string) error {
	target, err := d.resolve(rawURL)
	if err != nil {
		return err
	}
	body, err := d.fetch(target)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", target, err)
	}
	doc, err := htmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", target, err)
	}
	d.url = target
	d.doc = doc
	d.history = append(d.history, target)
	log.Debugf("drivertest: navigated to %s", target)
	return nil
}

func (d *Driver) resolve(rawURL string) (string, error) {
	if d.url == "" {
		return rawURL, nil
	}
	base, err := url.Parse(d.url)
	if err != nil {
		return rawURL, nil
	}
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func (d *Driver) fetch(target string) (string, error) {
	if body, ok := d.docs[target]; ok {
		return body, nil
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	switch parsed.Scheme {
	case "file":
		data, errRead := os.ReadFile(parsed.Path)
		if errRead != nil {
			return "", errRead
		}
		return string(data), nil
	case "http", "https":
		resp, errGet := d.client.Get(target)
		if errGet != nil {
			return "", errGet
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		data, errRead := io.ReadAll(resp.Body)
		if errRead != nil {
			return "", errRead
		}
		return string(data), nil
	case "about":
		return "<html><head></head><body></body></html>", nil
	}
	return "", fmt.Errorf("unsupported url scheme %q", parsed.Scheme)
}

func (d *Driver) CurrentURL() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, nil
}

func (d *Driver) Title() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.doc == nil {
		return "", nil
	}
	title := htmlquery.FindOne(d.doc, "//title")
	if title == nil {
		return "", nil
	}
	return strings.TrimSpace(htmlquery.InnerText(title)), nil
}

func (d *Driver) PageSource() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.doc == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, d.doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (d *Driver) ExecuteScript(script string, args ...any) (any, error) {
	d.mu.Lock()
	fn, ok := d.scripts[strings.TrimSpace(script)]
	d.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("drivertest: no handler for script %q", script)
	}
	return fn(d, args)
}

var blankPNG = func() []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	return buf.Bytes()
}()

func (d *Driver) Screenshot() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.doc == nil {
		return nil, fmt.Errorf("drivertest: nothing loaded")
	}
	return append([]byte(nil), blankPNG...), nil
}

func (d *Driver) FindElement(by driver.By) (driver.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.findOne(d.doc, by, false)
}

func (d *Driver) FindElements(by driver.By) ([]driver.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.findAll(d.doc, by, false)
}

func (d *Driver) findAll(scope *html.Node, by driver.By, scoped bool) ([]driver.Element, error) {
	if scope == nil {
		return []driver.Element{}, nil
	}
	nodes, err := queryNodes(scope, by, scoped)
	if err != nil {
		return nil, err
	}
	elements := make([]driver.Element, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			elements = append(elements, &Element{d: d, n: n})
		}
	}
	return elements, nil
}

func (d *Driver) findOne(scope *html.Node, by driver.By, scoped bool) (driver.Element, error) {
	elements, err := d.findAll(scope, by, scoped)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: %s", driver.ErrNoSuchElement, by)
	}
	return elements[0], nil
}

func (d *Driver) attached(n *html.Node) bool {
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	return root == d.doc
}
