package storage

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
)

// FileJar is a cookie jar that remembers every cookie the backend sets so the
// session can be written back to disk.
type FileJar struct {
	inner *cookiejar.Jar

	mu      sync.Mutex
	cookies map[string]*http.Cookie
	order   []string
}

func NewFileJar(baseURL string, session *Session) (*FileJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	jar := &FileJar{inner: inner, cookies: map[string]*http.Cookie{}}
	if session == nil || len(session.Cookies) == 0 {
		return jar, nil
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	jar.SetCookies(u, session.HTTPCookies())
	return jar, nil
}

func (j *FileJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)

	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range cookies {
		if _, ok := j.cookies[c.Name]; !ok {
			j.order = append(j.order, c.Name)
		}
		if c.MaxAge < 0 || c.Value == "" {
			delete(j.cookies, c.Name)
			continue
		}
		copied := *c
		j.cookies[c.Name] = &copied
	}
}

func (j *FileJar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// Saved returns the live cookies in first-set order.
func (j *FileJar) Saved() []SavedCookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	saved := make([]SavedCookie, 0, len(j.cookies))
	for _, name := range j.order {
		c, ok := j.cookies[name]
		if !ok {
			continue
		}
		saved = append(saved, SavedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
	return saved
}
