package page_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/luispater/wiselenium/driver"
	"github.com/luispater/wiselenium/internal/drivertest"
	"github.com/luispater/wiselenium/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitPage(t *testing.T) *page.Page {
	t.Helper()
	d := drivertest.New()
	p := page.New(d)
	require.NoError(t, p.Get(fixtureURL("wait")))
	return p
}

func TestWaitConditions(t *testing.T) {
	p := waitPage(t)
	w := p.WaitForInterval(time.Second, 5*time.Millisecond)

	assert.NoError(t, w.Until(page.TitleIs("page for wait tests")))
	assert.NoError(t, w.Until(page.TitleContains("wait")))
	assert.NoError(t, w.Until(page.URLIs(fixtureURL("wait"))))
	assert.NoError(t, w.Until(page.URLContains("/testdata/wait.html")))
	assert.NoError(t, w.Until(page.URLMatches(fixtureURL("*"))))
	assert.NoError(t, w.Until(page.URLMatchesRegexp(regexp.MustCompile(`wait\.html$`))))
	assert.NoError(t, w.Until(page.ElementPresent(driver.ID("ready"))))
	assert.NoError(t, w.Until(page.ElementNotPresent(driver.ID("missing"))))
	assert.NoError(t, w.Until(page.ElementVisible(driver.ID("next"))))
}

func TestWaitTimeout(t *testing.T) {
	p := waitPage(t)

	err := p.WaitForInterval(30*time.Millisecond, 5*time.Millisecond).Until(page.ElementVisible(driver.ID("ready")))
	assert.ErrorIs(t, err, page.ErrTimeout)

	err = p.WaitForInterval(30*time.Millisecond, 5*time.Millisecond).
		WithMessage("for the missing element").
		Until(page.ElementVisible(driver.ID("missing")))
	assert.ErrorIs(t, err, page.ErrTimeout)
	assert.ErrorIs(t, err, driver.ErrNoSuchElement)
	assert.ErrorContains(t, err, "for the missing element")
}

func TestWaitPollsUntilTrue(t *testing.T) {
	p := waitPage(t)
	boom := errors.New("boom")

	calls := 0
	err := p.WaitForInterval(time.Second, time.Millisecond).Until(func(driver.Driver) (bool, error) {
		calls++
		switch calls {
		case 1:
			return false, boom
		case 2:
			return false, nil
		}
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	err = p.WaitForInterval(20*time.Millisecond, time.Millisecond).Until(func(driver.Driver) (bool, error) {
		return true, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestWaitFollowsNavigation(t *testing.T) {
	p := waitPage(t)
	next, err := p.FindElement(driver.ID("next"))
	require.NoError(t, err)
	require.NoError(t, next.Click())

	assert.NoError(t, p.WaitFor(time.Second).Until(page.TitleIs("submitted")))
}

func TestWaitContextCanceled(t *testing.T) {
	p := waitPage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := page.NewWait(p.WrappedDriver(), time.Minute).UntilContext(ctx, page.TitleIs("never"))
	assert.ErrorIs(t, err, page.ErrTimeout)
}

func TestWaitDefaultInterval(t *testing.T) {
	p := waitPage(t)
	w := page.NewWait(p.WrappedDriver(), time.Second).WithInterval(0)

	start := time.Now()
	calls := 0
	err := w.Until(func(driver.Driver) (bool, error) {
		calls++
		return calls > 1, nil
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), page.DefaultInterval-50*time.Millisecond)
}
