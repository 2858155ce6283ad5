package runner

import (
	"path/filepath"
	"time"

	"github.com/luispater/wiselenium/driver"
	"github.com/luispater/wiselenium/page"
)

// pageActions is the target of steps without a field: the Page methods plus
// waits bounded by the runner timeout.
type pageActions struct {
	*page.Page
	opts Options
}

func (p *pageActions) wait() *page.Wait {
	return p.WaitForInterval(p.opts.Timeout, p.opts.Interval)
}

func (p *pageActions) WaitForTitle(title string) error {
	return p.wait().Until(page.TitleIs(title))
}

// WaitForURL waits for the current URL to match a glob pattern.
func (p *pageActions) WaitForURL(pattern string) error {
	return p.wait().Until(page.URLMatches(pattern))
}

func (p *pageActions) WaitForElement(by driver.By) error {
	return p.wait().Until(page.ElementVisible(by))
}

func (p *pageActions) WaitForElementGone(by driver.By) error {
	return p.wait().Until(page.ElementNotPresent(by))
}

func (p *pageActions) Count(by driver.By) (int, error) {
	elements, err := p.FindElements(by)
	return len(elements), err
}

func (p *pageActions) Sleep(d time.Duration) {
	time.Sleep(d)
}

// Screenshot saves the viewport under the screenshot directory.
func (p *pageActions) Screenshot(name string) (string, error) {
	if p.opts.ScreenshotDir != "" && name != "" && !filepath.IsAbs(name) {
		name = filepath.Join(p.opts.ScreenshotDir, name)
	}
	return p.TakeScreenShot(name)
}
