package page_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luispater/wiselenium/driver"
	"github.com/luispater/wiselenium/field"
	"github.com/luispater/wiselenium/internal/drivertest"
	"github.com/luispater/wiselenium/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindElement(t *testing.T) {
	d := drivertest.New()
	require.NoError(t, d.Navigate(fixtureURL("checkbox")))

	cb, err := page.FindElement[field.Checkbox](d, driver.ID("checkedCheckbox"))
	require.NoError(t, err)
	checked, err := cb.IsChecked()
	require.NoError(t, err)
	assert.True(t, checked)

	label, err := page.FindElement[*field.LabelElement](d, driver.TagName("label"))
	require.NoError(t, err)
	target, err := label.For()
	require.NoError(t, err)
	assert.Equal(t, "checkbox", target)

	_, err = page.FindElement[field.Checkbox](d, driver.ID("missing"))
	assert.ErrorIs(t, err, driver.ErrNoSuchElement)

	_, err = page.FindElement[string](d, driver.ID("checkbox"))
	assert.ErrorContains(t, err, "no field wrapper registered")
}

func TestFindElements(t *testing.T) {
	d := drivertest.New()
	require.NoError(t, d.Navigate(fixtureURL("checkbox")))

	boxes, err := page.FindElements[field.Checkbox](d, driver.CSS("input[type=checkbox]"))
	require.NoError(t, err)
	require.Len(t, boxes, 3)

	form, err := d.FindElement(driver.ID("form"))
	require.NoError(t, err)
	scoped, err := page.FindElements[field.Label](form, driver.TagName("label"))
	require.NoError(t, err)
	assert.Len(t, scoped, 1)

	none, err := page.FindElements[field.Checkbox](d, driver.ClassName("nothing"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTakeScreenShot(t *testing.T) {
	dir := t.TempDir()
	previous := page.ScreenshotDir
	page.ScreenshotDir = filepath.Join(dir, "generated")
	defer func() { page.ScreenshotDir = previous }()

	d := drivertest.New()
	p := page.New(d)

	_, err := p.TakeScreenShot(filepath.Join(dir, "empty"))
	assert.Error(t, err)

	require.NoError(t, p.Get(fixtureURL("wait")))

	path, err := p.TakeScreenShot(filepath.Join(dir, "nested", "shot"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "shot.png"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\x89PNG"))

	path, err = page.TakeScreenShot(d, "")
	require.NoError(t, err)
	assert.Equal(t, page.ScreenshotDir, filepath.Dir(path))
	assert.Equal(t, ".png", filepath.Ext(path))
	assert.FileExists(t, path)

	path, err = page.TakeScreenShot(d, filepath.Join(dir, "keep.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, ".jpeg", filepath.Ext(path))
}
