package chrome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/chromedp/cdproto/domstorage"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

// Session is the browser state persisted between runs so tests can start
// logged in.
type Session struct {
	Cookies      []*network.CookieParam `json:"cookies"`
	LocalStorage map[string]string      `json:"local_storage"`
}

// SaveSession writes the cookies and the local storage of the current origin
// to path.
func (d *Driver) SaveSession(path string) error {
	cookies, err := GetCookies(d.ctx)
	if err != nil {
		return err
	}
	location, err := d.CurrentURL()
	if err != nil {
		return err
	}
	storage, err := GetLocalStorages(d.ctx, location)
	if err != nil {
		return err
	}

	session := Session{LocalStorage: storage}
	for _, c := range cookies {
		session.Cookies = append(session.Cookies, &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: c.SameSite,
		})
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling session to JSON: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err = os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing session to file %s: %w", path, err)
	}
	log.Debugf("Successfully saved session to file %s", path)
	return nil
}

// LoadSession restores a session saved by SaveSession. origin is the page
// whose local storage receives the saved items. A missing file is not an
// error.
func (d *Driver) LoadSession(path, origin string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Infof("Session file not found at %s. Proceeding without loading state.", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading session file %s: %w", path, err)
	}

	var session Session
	if err = json.Unmarshal(data, &session); err != nil {
		return fmt.Errorf("error unmarshalling session from JSON: %w", err)
	}
	if err = SetCookies(d.ctx, session.Cookies); err != nil {
		return err
	}
	if err = SetLocalStorages(d.ctx, origin, session.LocalStorage); err != nil {
		return fmt.Errorf("error writing local storage: %w", err)
	}
	log.Debugf("Successfully loaded session from file %s", path)
	return nil
}

func storageID(origin string) (*domstorage.StorageID, error) {
	parsedURL, err := url.Parse(origin)
	if err != nil {
		return nil, err
	}
	return &domstorage.StorageID{
		SecurityOrigin: fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host),
		IsLocalStorage: true,
	}, nil
}

func SetLocalStorages(pageCtx context.Context, origin string, items map[string]string) error {
	if len(items) == 0 {
		return nil
	}
	id, err := storageID(origin)
	if err != nil {
		return err
	}
	return chromedp.Run(pageCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			for key, value := range items {
				if errSet := domstorage.SetDOMStorageItem(id, key, value).Do(ctx); errSet != nil {
					return errSet
				}
			}
			return nil
		}),
	)
}

func GetLocalStorages(pageCtx context.Context, origin string) (map[string]string, error) {
	id, err := storageID(origin)
	if err != nil {
		return nil, err
	}
	var items []domstorage.Item
	err = chromedp.Run(pageCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var errGetDOMStorageItems error
			items, errGetDOMStorageItems = domstorage.GetDOMStorageItems(id).Do(ctx)
			return errGetDOMStorageItems
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get localStorage: %w", err)
	}
	localStorage := make(map[string]string)
	for _, item := range items {
		if len(item) == 2 {
			localStorage[item[0]] = item[1]
		}
	}
	return localStorage, nil
}

func SetCookies(pageCtx context.Context, cookies []*network.CookieParam) error {
	if len(cookies) == 0 {
		return nil
	}
	err := chromedp.Run(pageCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookies(cookies).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("failed to set cookies: %w", err)
	}
	return nil
}

func GetCookies(pageCtx context.Context) ([]*network.Cookie, error) {
	var cookies []*network.Cookie
	err := chromedp.Run(pageCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to get cookies: %w", err)
	}
	return cookies, nil
}
