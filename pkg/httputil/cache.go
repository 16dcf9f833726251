package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"path"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// ErrExpired is returned by [Cache.Get] when an entry exists but is older
// than the cache's TTL. The stale value is left on disk until the next Set.
var ErrExpired = errors.New("cache entry expired")

// Cache stores JSON values under hashed keys in a directory.
//
// Entries expire by modification time; a TTL of 0 disables expiry. A Cache
// is not safe for concurrent use, but several processes may share the
// directory since every entry is written as a whole file.
type Cache struct {
	fs     vfs.FileSystem
	dir    string
	ttl    time.Duration
	prefix string
	now    func() time.Time
}

// NewCache returns a Cache storing entries in dir on fs, creating dir when
// needed.
func NewCache(fs vfs.FileSystem, dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache directory is empty")
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{fs: fs, dir: dir, ttl: ttl, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the entry lifetime. 0 means entries never expire.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get decodes the entry for key into v.
//
// It reports (true, nil) on a fresh hit, (false, nil) on a miss and
// (false, ErrExpired) for a stale entry. Any other error comes from
// reading or decoding the entry.
func (c *Cache) Get(key string, v any) (bool, error) {
	p := c.keyPath(c.prefix + key)
	fi, err := c.fs.Stat(p)
	if errors.Is(err, vfs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.ttl > 0 && c.now().Sub(fi.ModTime()) > c.ttl {
		return false, ErrExpired
	}
	data, err := vfs.ReadFile(c.fs, p)
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, v)
}

// Set stores v under key, replacing any earlier entry and restarting its TTL.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return vfs.WriteFile(c.fs, c.keyPath(c.prefix+key), data, 0o644)
}

// Namespace returns a view of the cache whose keys are prefixed with
// prefix. Views share the directory and TTL; prefixes accumulate.
func (c *Cache) Namespace(prefix string) *Cache {
	ns := *c
	ns.prefix = c.prefix + prefix
	return &ns
}

// Clear removes every entry of the directory, whatever its namespace, and
// returns how many were removed.
func (c *Cache) Clear() (int, error) {
	infos, err := vfs.ReadDir(c.fs, c.dir)
	if err != nil {
		if errors.Is(err, vfs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, fi := range infos {
		if fi.IsDir() {
			continue
		}
		if err := c.fs.Remove(path.Join(c.dir, fi.Name())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return path.Join(c.dir, hex.EncodeToString(h[:]))
}
