// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	xglog "github.com/ManuGH/cloudportal/internal/log"
	"github.com/google/renameio/v2"
	"golang.org/x/net/publicsuffix"
)

// CookieCSRF is the cookie carrying the CSRF token.
const CookieCSRF = "csrftoken"

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Jar is an http.CookieJar for one portal that mirrors the portal's cookies
// to a file. An empty path keeps cookies in memory only.
type Jar struct {
	mu    sync.Mutex
	inner *cookiejar.Jar
	base  *url.URL
	path  string
}

// NewJar creates a jar for the portal at base, loading cookies previously
// saved to path.
func NewJar(base *url.URL, path string) (*Jar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	j := &Jar{inner: inner, base: base, path: path}
	if err := j.load(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Jar) root() *url.URL {
	u := *j.base
	u.Path = "/"
	return &u
}

func (j *Jar) load() error {
	if j.path == "" {
		return nil
	}
	raw, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cookie file: %w", err)
	}
	var stored []storedCookie
	if err := json.Unmarshal(raw, &stored); err != nil {
		logger := xglog.WithComponent("transport")
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "transport.cookies_corrupt").
			Str("path", j.path).
			Msg("ignoring unreadable cookie file")
		return nil
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	j.inner.SetCookies(j.root(), cookies)
	return nil
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// SetCookies implements http.CookieJar and persists the portal's cookies.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)
	if err := j.save(); err != nil {
		logger := xglog.WithComponent("transport")
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "transport.cookies_save_failed").
			Str("path", j.path).
			Msg("failed to persist cookies")
	}
}

// Cookie returns the value of the named portal cookie.
func (j *Jar) Cookie(name string) (string, bool) {
	for _, c := range j.inner.Cookies(j.root()) {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

func (j *Jar) save() error {
	if j.path == "" {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	current := j.inner.Cookies(j.root())
	stored := make([]storedCookie, 0, len(current))
	for _, c := range current {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return fmt.Errorf("create cookie directory: %w", err)
	}

	pendingFile, err := renameio.NewPendingFile(j.path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending cookie file: %w", err)
	}
	defer func() { _ = pendingFile.Cleanup() }()

	if _, err := pendingFile.Write(raw); err != nil {
		return fmt.Errorf("write cookies: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace cookie file: %w", err)
	}
	return nil
}
