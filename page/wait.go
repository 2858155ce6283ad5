package page

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/luispater/wiselenium/driver"
	"github.com/luispater/wiselenium/internal/utils"
	log "github.com/sirupsen/logrus"
)

var ErrTimeout = errors.New("timed out waiting for condition")

const DefaultInterval = 500 * time.Millisecond

// Condition reports whether the state waited for is reached. An error keeps
// the wait going and is reported if the wait times out.
type Condition func(d driver.Driver) (bool, error)

type Wait struct {
	driver   driver.Driver
	timeout  time.Duration
	interval time.Duration
	message  string
}

func NewWait(d driver.Driver, timeout time.Duration) *Wait {
	return &Wait{driver: d, timeout: timeout, interval: DefaultInterval}
}

func (w *Wait) WithInterval(interval time.Duration) *Wait {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// WithMessage sets the text of the timeout error.
func (w *Wait) WithMessage(message string) *Wait {
	w.message = message
	return w
}

func (w *Wait) Until(cond Condition) error {
	return w.UntilContext(context.Background(), cond)
}

// UntilContext polls cond until it holds, the timeout passes or ctx is done.
// The condition is always evaluated at least once.
func (w *Wait) UntilContext(ctx context.Context, cond Condition) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var lastErr error
	for attempt := 1; ; attempt++ {
		ok, err := cond(w.driver)
		if ok && err == nil {
			return nil
		}
		lastErr = err
		log.Debugf("wait attempt %d not satisfied: %v", attempt, err)

		select {
		case <-ctx.Done():
			return w.timeoutError(lastErr)
		case <-ticker.C:
		}
	}
}

func (w *Wait) timeoutError(lastErr error) error {
	msg := w.message
	if msg == "" {
		msg = fmt.Sprintf("after %s", w.timeout)
	}
	if lastErr != nil {
		return fmt.Errorf("%w %s: %w", ErrTimeout, msg, lastErr)
	}
	return fmt.Errorf("%w %s", ErrTimeout, msg)
}

func TitleIs(title string) Condition {
	return func(d driver.Driver) (bool, error) {
		t, err := d.Title()
		return t == title, err
	}
}

func TitleContains(fragment string) Condition {
	return func(d driver.Driver) (bool, error) {
		t, err := d.Title()
		return strings.Contains(t, fragment), err
	}
}

func URLIs(url string) Condition {
	return func(d driver.Driver) (bool, error) {
		u, err := d.CurrentURL()
		return u == url, err
	}
}

func URLContains(fragment string) Condition {
	return func(d driver.Driver) (bool, error) {
		u, err := d.CurrentURL()
		return strings.Contains(u, fragment), err
	}
}

// URLMatches holds when the current URL has the scheme and host of one of
// the patterns and its path matches the pattern path glob.
func URLMatches(patterns ...string) Condition {
	return func(d driver.Driver) (bool, error) {
		u, err := d.CurrentURL()
		if err != nil {
			return false, err
		}
		return utils.MatchURL(patterns, u), nil
	}
}

func URLMatchesRegexp(re *regexp.Regexp) Condition {
	return func(d driver.Driver) (bool, error) {
		u, err := d.CurrentURL()
		return re.MatchString(u), err
	}
}

func ElementPresent(by driver.By) Condition {
	return func(d driver.Driver) (bool, error) {
		elements, err := d.FindElements(by)
		return len(elements) > 0, err
	}
}

func ElementVisible(by driver.By) Condition {
	return func(d driver.Driver) (bool, error) {
		el, err := d.FindElement(by)
		if err != nil {
			return false, err
		}
		return el.IsDisplayed()
	}
}

func ElementNotPresent(by driver.By) Condition {
	return func(d driver.Driver) (bool, error) {
		elements, err := d.FindElements(by)
		return len(elements) == 0, err
	}
}
