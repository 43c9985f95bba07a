package layout

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/patrickmn/go-cache"

	"pptgen/slide"
)

// Cache memoizes assembled documents. Assembly is deterministic, so document
// could be reused for as long as the input stays the same.
type Cache struct {
	c *cache.Cache
}

// NewCache creates cache which keeps documents for ttl after assembly.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{c: cache.New(ttl, 2*ttl)}
}

// Assemble returns cached document for the input or assembles and remembers
// a new one. hit reports whether cached document was used. Documents are
// shared between callers and must not be modified.
func (c *Cache) Assemble(seq slide.Sequence, meta Metadata, background string) (doc Document, hit bool) {
	key, err := cacheKey(seq, meta, background)
	if err != nil {
		return Assemble(seq, meta, background), false
	}
	if v, found := c.c.Get(key); found {
		return v.(Document), true
	}
	doc = Assemble(seq, meta, background)
	c.c.SetDefault(key, doc)
	return doc, false
}

// Len returns number of cached documents.
func (c *Cache) Len() int {
	return c.c.ItemCount()
}

func cacheKey(seq slide.Sequence, meta Metadata, background string) (string, error) {
	data, err := json.Marshal(struct {
		Slides     slide.Sequence `json:"slides"`
		Meta       Metadata       `json:"meta"`
		Background string         `json:"background"`
	}{seq, meta, background})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
