package page_test

import (
	"testing"

	"github.com/luispater/wiselenium/driver"
	"github.com/luispater/wiselenium/field"
	"github.com/luispater/wiselenium/internal/drivertest"
	"github.com/luispater/wiselenium/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginBox struct {
	User field.Text   `find:"name=user"`
	Go   field.Button `find:"css=.go"`
}

type containerPage struct {
	page.Page

	Login  loginBox                      `find:"id=login"`
	Search *loginBox                     `find:"css=#search"`
	Items  page.Elements[*field.Element] `find:"css=#items li.item"`
	Users  page.Elements[field.Text]     `find:"css=input[name=user]"`
	First  field.Text                    `find:"xpath=//div[@class='box']//input[@name='user']"`
	Note   string                        `find:"-"`
	Count  int
}

func loadContainer(t *testing.T) (*drivertest.Driver, *containerPage) {
	t.Helper()
	d := drivertest.New()
	require.NoError(t, d.Navigate(fixtureURL("container")))
	p := &containerPage{Note: "kept"}
	require.NoError(t, page.InitElementsOn(d, p))
	return d, p
}

func TestContainers(t *testing.T) {
	_, p := loadContainer(t)

	require.NoError(t, p.Login.User.Fill("bob"))
	v, err := p.Login.User.Value()
	require.NoError(t, err)
	assert.Equal(t, "bob", v)

	require.NotNil(t, p.Search)
	v, err = p.Search.User.Value()
	require.NoError(t, err)
	assert.Equal(t, "searching", v)

	text, err := p.Login.Go.Text()
	require.NoError(t, err)
	assert.Equal(t, "Login", text)
	text, err = p.Search.Go.Text()
	require.NoError(t, err)
	assert.Equal(t, "Search", text)

	id, err := p.First.ID()
	require.NoError(t, err)
	assert.Equal(t, "loginUser", id)

	assert.Equal(t, "kept", p.Note)
	assert.Zero(t, p.Count)
}

func TestElementsList(t *testing.T) {
	_, p := loadContainer(t)

	assert.Equal(t, driver.CSS("#items li.item"), p.Items.By())

	n, err := p.Items.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	item, err := p.Items.At(1)
	require.NoError(t, err)
	text, err := item.Text()
	require.NoError(t, err)
	assert.Equal(t, "two", text)

	_, err = p.Items.At(3)
	assert.ErrorIs(t, err, driver.ErrNoSuchElement)

	users, err := p.Users.All()
	require.NoError(t, err)
	require.Len(t, users, 2)
	v, err := users[1].Value()
	require.NoError(t, err)
	assert.Equal(t, "searching", v)
}

type pointerListPage struct {
	Items *page.Elements[*field.Element] `find:"css=#items li.item"`
	Users *page.Elements[field.Text]     `find:"name=user"`
}

func TestPointerElementsList(t *testing.T) {
	d := drivertest.New()
	require.NoError(t, d.Navigate(fixtureURL("container")))

	kept := &page.Elements[field.Text]{}
	p := &pointerListPage{Users: kept}
	require.NoError(t, page.InitElementsOn(d, p))

	require.NotNil(t, p.Items)
	n, err := p.Items.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Same(t, kept, p.Users)
	assert.Equal(t, driver.Name("user"), p.Users.By())
	users, err := p.Users.All()
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUnboundElements(t *testing.T) {
	var list page.Elements[field.Text]
	_, err := list.All()
	assert.Error(t, err)
	_, err = list.Len()
	assert.Error(t, err)
}

const (
	firstDoc  = `<html><head><title>first</title></head><body><input id="q" value="one"></body></html>`
	secondDoc = `<html><head><title>second</title></head><body><input id="q" value="two"></body></html>`
)

type queryPage struct {
	Lazy   field.Text
	Cached field.Text `find:"id=q" cache:"true"`
	// Q is located by id or name "q".
	Q field.Hidden `find:"id-or-name=q"`
}

func TestLazyAndCachedFields(t *testing.T) {
	d := drivertest.New(
		drivertest.WithDocument("http://fake/1", firstDoc),
		drivertest.WithDocument("http://fake/2", secondDoc),
	)
	require.NoError(t, d.Navigate("http://fake/1"))

	p, err := page.InitElements[queryPage](d)
	require.NoError(t, err)

	_, err = p.Lazy.Value()
	assert.ErrorIs(t, err, driver.ErrNoSuchElement)

	v, err := p.Cached.Value()
	require.NoError(t, err)
	assert.Equal(t, "one", v)

	require.NoError(t, d.Navigate("http://fake/2"))

	v, err = p.Q.Value()
	require.NoError(t, err)
	assert.Equal(t, "two", v)

	_, err = p.Cached.Value()
	assert.ErrorIs(t, err, driver.ErrStaleElement)
}

type unexportedPage struct {
	checkbox        field.Checkbox
	checkedCheckbox *field.CheckboxField
	raw             driver.Element `find:"css=#disabledCheckbox"`
}

func TestUnexportedAndDefaultLocators(t *testing.T) {
	d := drivertest.New()
	require.NoError(t, d.Navigate(fixtureURL("checkbox")))

	p, err := page.InitElements[unexportedPage](d)
	require.NoError(t, err)

	checked, err := p.checkbox.IsChecked()
	require.NoError(t, err)
	assert.False(t, checked)

	checked, err = p.checkedCheckbox.IsChecked()
	require.NoError(t, err)
	assert.True(t, checked)

	enabled, err := p.raw.IsEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestInitElementsErrors(t *testing.T) {
	d := drivertest.New()

	assert.Error(t, page.InitElementsOn(nil, &queryPage{}))
	assert.Error(t, page.InitElementsOn(d, queryPage{}))
	assert.Error(t, page.InitElementsOn(d, (*queryPage)(nil)))

	type badLocator struct {
		F field.Text `find:"id="`
	}
	_, err := page.InitElements[badLocator](d)
	assert.ErrorContains(t, err, "badLocator.F")

	type badType struct {
		F string `find:"id=f"`
	}
	_, err = page.InitElements[badType](d)
	assert.ErrorContains(t, err, "unsupported field type")
}
