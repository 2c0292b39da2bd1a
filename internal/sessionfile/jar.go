package sessionfile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// cookiesEntry is the entry name the jar persists to.
const cookiesEntry = "cookies"

// storedCookie is the on-disk form of one cookie plus the URL it was set for.
// MaxAge is folded into Expires at save time.
type storedCookie struct {
	URL      string        `json:"url"`
	Name     string        `json:"name"`
	Value    string        `json:"value"`
	Path     string        `json:"path,omitempty"`
	Domain   string        `json:"domain,omitempty"`
	Expires  time.Time     `json:"expires,omitzero"`
	Secure   bool          `json:"secure,omitempty"`
	HTTPOnly bool          `json:"http_only,omitempty"`
	SameSite http.SameSite `json:"same_site,omitempty"`
}

func (s storedCookie) key() string {
	return s.Domain + "|" + s.Path + "|" + s.Name
}

func (s storedCookie) cookie() *http.Cookie {
	return &http.Cookie{
		Name:     s.Name,
		Value:    s.Value,
		Path:     s.Path,
		Domain:   s.Domain,
		Expires:  s.Expires,
		Secure:   s.Secure,
		HttpOnly: s.HTTPOnly,
		SameSite: s.SameSite,
	}
}

// Jar is an http.CookieJar that mirrors every cookie it accepts into a
// session Dir, so the refresh-session cookie set at login is still available
// to the next CLI invocation in the same login session. A nil Dir keeps the
// jar purely in memory.
type Jar struct {
	dir    *Dir
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	jar     *cookiejar.Jar
	entries map[string]storedCookie
}

// NewJar creates a Jar and loads any cookies previously saved in dir.
// Unreadable or corrupt entries are logged and ignored.
func NewJar(dir *Dir, logger *slog.Logger) (*Jar, error) {
	if logger == nil {
		logger = slog.Default()
	}

	inner, err := newInnerJar()
	if err != nil {
		return nil, err
	}

	j := &Jar{
		dir:     dir,
		logger:  logger,
		now:     time.Now,
		jar:     inner,
		entries: make(map[string]storedCookie),
	}

	j.load()

	return j, nil
}

func newInnerJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("sessionfile: creating cookie jar: %w", err)
	}

	return jar, nil
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)

	now := j.now()
	changed := false

	for _, c := range cookies {
		sc := storedCookie{
			URL:      u.String(),
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
			SameSite: c.SameSite,
		}

		if c.MaxAge > 0 {
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}

		expired := c.MaxAge < 0 || (!sc.Expires.IsZero() && !sc.Expires.After(now))
		if expired {
			if _, ok := j.entries[sc.key()]; ok {
				delete(j.entries, sc.key())
				changed = true
			}

			continue
		}

		j.entries[sc.key()] = sc
		changed = true
	}

	if changed {
		j.save()
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.jar.Cookies(u)
}

// Clear drops every cookie from memory and from the session directory.
func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()

	inner, err := newInnerJar()
	if err != nil {
		j.logger.Warn("cookie jar reset failed", slog.String("error", err.Error()))
		return
	}

	j.jar = inner
	j.entries = make(map[string]storedCookie)

	if j.dir == nil {
		return
	}

	if err := j.dir.Remove(cookiesEntry); err != nil {
		j.logger.Warn("failed to remove saved cookies", slog.String("error", err.Error()))
	}
}

// load restores saved cookies into the in-memory jar. Caller need not hold mu
// because load only runs from NewJar.
func (j *Jar) load() {
	if j.dir == nil {
		return
	}

	data, err := j.dir.Get(cookiesEntry)
	if err != nil {
		j.logger.Warn("failed to read saved cookies", slog.String("error", err.Error()))
		return
	}

	if data == nil {
		return
	}

	var saved []storedCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		j.logger.Warn("discarding corrupt cookie file", slog.String("error", err.Error()))
		return
	}

	now := j.now()

	for _, sc := range saved {
		if !sc.Expires.IsZero() && !sc.Expires.After(now) {
			continue
		}

		u, err := url.Parse(sc.URL)
		if err != nil {
			continue
		}

		j.jar.SetCookies(u, []*http.Cookie{sc.cookie()})
		j.entries[sc.key()] = sc
	}

	j.logger.Debug("restored session cookies", slog.Int("count", len(j.entries)))
}

// save persists entries. Caller must hold mu.
func (j *Jar) save() {
	if j.dir == nil {
		return
	}

	saved := make([]storedCookie, 0, len(j.entries))
	for _, sc := range j.entries {
		saved = append(saved, sc)
	}

	data, err := json.Marshal(saved)
	if err != nil {
		j.logger.Warn("failed to encode cookies", slog.String("error", err.Error()))
		return
	}

	if err := j.dir.Set(cookiesEntry, data); err != nil {
		j.logger.Warn("failed to persist cookies", slog.String("error", err.Error()))
	}
}
