package chrome

import (
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/luispater/wiselenium/driver"
	"github.com/luispater/wiselenium/field"
	"github.com/luispater/wiselenium/internal/fixture"
	"github.com/luispater/wiselenium/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValue(t *testing.T) {
	v, err := decodeValue(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = decodeValue([]byte(`{"a":[1,"b"]}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{float64(1), "b"}}, v)

	_, err = decodeValue([]byte(`{`))
	assert.Error(t, err)
}

func TestFlagOptions(t *testing.T) {
	assert.Len(t, flagOptions([]string{"--lang=en", "", "--mute-audio"}), 2)
}

func TestManagerRequiresLaunch(t *testing.T) {
	m, err := NewManager(Options{Headless: true})
	require.NoError(t, err)
	defer func() {
		_ = m.Close()
	}()

	_, err = m.NewDriver("about:blank")
	assert.Error(t, err)
	assert.Error(t, m.ClearBrowserCookies())
	assert.Error(t, m.ClearBrowserCache())
}

type loginBox struct {
	User field.Text   `find:"name=user"`
	Go   field.Button `find:"css=.go"`
}

type containerPage struct {
	page.Page

	Login loginBox                      `find:"id=login"`
	Items page.Elements[*field.Element] `find:"css=#items li.item"`
}

// TestChrome drives a real browser and only runs with WISELENIUM_CHROME=1.
func TestChrome(t *testing.T) {
	if os.Getenv("WISELENIUM_CHROME") != "1" {
		t.Skip("set WISELENIUM_CHROME=1 to run against Chrome")
	}

	server, err := fixture.NewServer(fixture.Config{})
	require.NoError(t, err)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	m, err := NewManager(Options{Headless: true, WindowWidth: 1024, WindowHeight: 768})
	require.NoError(t, err)
	defer func() {
		_ = m.Close()
	}()
	require.NoError(t, m.Launch())

	d, err := m.NewDriver(fixture.PageURL(ts.URL, "radiobutton"))
	require.NoError(t, err)
	defer d.Close()
	d.SetTimeout(10 * time.Second)

	title, err := d.Title()
	require.NoError(t, err)
	assert.Equal(t, "page for radiobutton tests", title)

	r, err := page.FindElement[field.Radiobutton](d, driver.ID("radiobutton"))
	require.NoError(t, err)
	require.NoError(t, r.Check())
	checked, err := r.IsChecked()
	require.NoError(t, err)
	assert.True(t, checked)

	disabled, err := page.FindElement[field.Radiobutton](d, driver.ID("disabledRadiobutton"))
	require.NoError(t, err)
	_ = disabled.Check()
	checked, err = disabled.IsChecked()
	require.NoError(t, err)
	assert.False(t, checked)

	v, err := d.ExecuteScript("return arguments[0] * 2", 21)
	require.NoError(t, err)
	assert.Equal(t, float64(42), v)

	png, err := d.Screenshot()
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	require.NoError(t, d.Navigate(fixture.PageURL(ts.URL, "container")))
	p, err := page.InitElements[containerPage](d)
	require.NoError(t, err)
	require.NoError(t, p.Login.User.Fill("bob"))
	value, err := p.Login.User.Value()
	require.NoError(t, err)
	assert.Equal(t, "bob", value)
	n, err := p.Items.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, d.Navigate(fixture.PageURL(ts.URL, "select")))
	s, err := page.FindElement[field.Select](d, driver.ID("select"))
	require.NoError(t, err)
	require.NoError(t, s.SelectByValue("3"))
	selected, err := s.SelectedOption()
	require.NoError(t, err)
	value, err = selected.Value()
	require.NoError(t, err)
	assert.Equal(t, "3", value)

	session := t.TempDir() + "/session.json"
	require.NoError(t, d.SaveSession(session))
	require.NoError(t, d.LoadSession(session, ts.URL))
}
