package imports

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/dhall-run/dhall-go/core"
)

// DiskLRUCache is the content-addressed cache the spec calls "optional
// on-disk content-addressed cache": an in-memory LRU in front of
// `$XDG_CACHE_HOME/dhall/1220<hex>` files, one per semantic hash, each
// holding the CBOR encoding of the resolved, normalized expression. Only
// ever consulted with a hash-shaped key (imports.Resolver decides when
// that applies); a canonical-path key never reaches this type.
type DiskLRUCache struct {
	mem  *lru.Cache[string, core.Term]
	dir  string // empty disables disk persistence
	mu   sync.Mutex
	warn Logger
}

// NewDiskLRUCache builds a cache with an in-memory LRU of the given size
// and, if XDG_CACHE_HOME (or HOME/.cache as the XDG fallback) can be
// determined, a disk-backed tier under "<base>/dhall".
func NewDiskLRUCache(size int, logger Logger) (*DiskLRUCache, error) {
	mem, err := lru.New[string, core.Term](size)
	if err != nil {
		return nil, errors.Wrap(err, "building import cache")
	}
	c := &DiskLRUCache{mem: mem, warn: logger}
	if base := xdgCacheHome(); base != "" {
		dir := filepath.Join(base, "dhall")
		if err := os.MkdirAll(dir, 0o755); err == nil {
			c.dir = dir
		}
	}
	return c, nil
}

func xdgCacheHome() string {
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return v
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache")
	}
	return ""
}

// Get satisfies Cache. key is expected to be a "sha256:<hex>" semantic
// hash; diskPath derives the on-disk file name from its hex digits.
func (c *DiskLRUCache) Get(key string) (core.Term, bool) {
	if v, ok := c.mem.Get(key); ok {
		return v, true
	}
	if c.dir == "" {
		return nil, false
	}
	path := c.diskPath(key)
	if path == "" {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	term, err := core.DecodeCbor(data)
	if err != nil {
		if c.warn != nil {
			c.warn.Warn("discarding corrupt cache entry", "path", path, "error", err)
		}
		return nil, false
	}
	c.mem.Add(key, term)
	return term, true
}

// Put satisfies Cache, storing in the memory tier always and, when the
// disk tier is available, persisting the CBOR encoding too.
func (c *DiskLRUCache) Put(key string, expr core.Term) {
	c.mem.Add(key, expr)
	if c.dir == "" {
		return
	}
	path := c.diskPath(key)
	if path == "" {
		return
	}
	data, err := core.EncodeCbor(expr)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	os.Rename(tmp, path)
}

// diskPath turns a "sha256:<hex>" key into "<dir>/1220<hex>", the multihash
// hex encoding the CLI's --cache flag also writes (spec.md §6).
func (c *DiskLRUCache) diskPath(key string) string {
	const prefix = "sha256:"
	if !strings.HasPrefix(key, prefix) {
		return ""
	}
	h := strings.TrimPrefix(key, prefix)
	if _, err := hex.DecodeString(h); err != nil {
		return ""
	}
	return filepath.Join(c.dir, "1220"+h)
}
