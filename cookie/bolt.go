package cookie

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

const cookieBucket = "cookies"

// record is the persisted form of one cookie.
type record struct {
	URL    string       `json:"url"`
	Cookie *http.Cookie `json:"cookie"`
}

// Bolt is a Jar whose contents survive the process. Every cookie set
// through it is written to a bbolt file and replayed into the jar by
// OpenBolt.
type Bolt struct {
	*Jar
	db     *bolt.DB
	logger *slog.Logger
	now    func() time.Time
}

// OpenBolt opens (or creates) the cookie database at path.
func OpenBolt(path string, logger *slog.Logger) (*Bolt, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cookie directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cookieBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	jar, err := NewJar()
	if err != nil {
		db.Close()
		return nil, err
	}

	b := &Bolt{Jar: jar, db: db, logger: logger, now: time.Now}
	if err := b.replay(); err != nil {
		db.Close()
		return nil, err
	}

	return b, nil
}

// Close closes the database. The in-memory jar stays readable.
func (b *Bolt) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SetCookies stores cookies in memory and on disk. Expired or deleted
// cookies are removed from disk.
func (b *Bolt) SetCookies(u *url.URL, cookies []*http.Cookie) {
	b.Jar.SetCookies(u, cookies)

	now := b.now()
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cookieBucket))
		for _, c := range cookies {
			key := []byte(recordKey(u, c))
			if expired(c, now) {
				if err := bucket.Delete(key); err != nil {
					return err
				}
				continue
			}

			data, err := json.Marshal(record{URL: u.String(), Cookie: absolute(c, now)})
			if err != nil {
				return fmt.Errorf("encode cookie %s: %w", c.Name, err)
			}
			if err := bucket.Put(key, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		b.logger.Error("persisting cookies", "host", u.Host, "error", err)
	}
}

// Len returns the number of persisted cookies.
func (b *Bolt) Len() (int, error) {
	var n int
	err := b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(cookieBucket)).Stats().KeyN
		return nil
	})
	return n, err
}

func (b *Bolt) replay() error {
	now := b.now()
	var stale [][]byte

	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(cookieBucket)).ForEach(func(k, v []byte) error {
			var r record
			if err := json.Unmarshal(v, &r); err != nil || r.Cookie == nil {
				b.logger.Debug("dropping unreadable cookie record", "key", string(k))
				stale = append(stale, append([]byte(nil), k...))
				return nil
			}
			if expired(r.Cookie, now) {
				stale = append(stale, append([]byte(nil), k...))
				return nil
			}

			u, err := url.Parse(r.URL)
			if err != nil {
				stale = append(stale, append([]byte(nil), k...))
				return nil
			}
			b.Jar.SetCookies(u, []*http.Cookie{r.Cookie})
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("replay cookies: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cookieBucket))
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return fmt.Errorf("delete stale cookie: %w", err)
			}
		}
		return nil
	})
}

func recordKey(u *url.URL, c *http.Cookie) string {
	domain := c.Domain
	if domain == "" {
		domain = u.Hostname()
	}
	path := c.Path
	if path == "" {
		path = "/"
	}

	return strings.ToLower(domain) + "|" + path + "|" + c.Name
}

func expired(c *http.Cookie, now time.Time) bool {
	if c.MaxAge < 0 {
		return true
	}
	return !c.Expires.IsZero() && c.Expires.Before(now)
}

// absolute converts a relative Max-Age into Expires so the lifetime does
// not restart on replay.
func absolute(c *http.Cookie, now time.Time) *http.Cookie {
	cpy := *c
	if cpy.MaxAge > 0 {
		cpy.Expires = now.Add(time.Duration(cpy.MaxAge) * time.Second)
		cpy.MaxAge = 0
	}
	cpy.Raw = ""
	cpy.Unparsed = nil

	return &cpy
}
