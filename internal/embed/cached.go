package embed

import (
	"context"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/blake3"
)

// DefaultEmbeddingCacheSize bounds the query vector cache. 256 vectors of
// 384 float32s take about 400KB.
const DefaultEmbeddingCacheSize = 256

// entryKey is the BLAKE3 digest of model name and text.
type entryKey [32]byte

// CachedEmbedder memoises vectors of an inner Embedder in an LRU. Failed
// calls are not cached.
type CachedEmbedder struct {
	inner Embedder
	lru   *lru.Cache[entryKey, []float32]
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps inner. size <= 0 selects DefaultEmbeddingCacheSize.
func NewCachedEmbedder(inner Embedder, size int) *CachedEmbedder {
	if size <= 0 {
		size = DefaultEmbeddingCacheSize
	}
	// lru.New only fails for a non-positive size.
	c, _ := lru.New[entryKey, []float32](size)
	return &CachedEmbedder{inner: inner, lru: c}
}

func (c *CachedEmbedder) cacheKey(text string) entryKey {
	h := blake3.New()
	_, _ = h.Write([]byte(c.inner.ModelName()))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(text))
	var k entryKey
	copy(k[:], h.Sum(nil))
	return k
}

// Embed serves text from the cache or the inner embedder. The returned
// vector is the caller's own copy.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	k := c.cacheKey(text)
	if vec, ok := c.lru.Get(k); ok {
		return slices.Clone(vec), nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.lru.Add(k, slices.Clone(vec))
	return vec, nil
}

// EmbedBatch sends only the cache misses to the inner embedder, as one
// batch, and fills the result in input order.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	type miss struct {
		pos int
		key entryKey
	}
	var misses []miss
	var missTexts []string
	for i, text := range texts {
		k := c.cacheKey(text)
		if vec, ok := c.lru.Get(k); ok {
			out[i] = slices.Clone(vec)
			continue
		}
		misses = append(misses, miss{pos: i, key: k})
		missTexts = append(missTexts, text)
	}
	if len(misses) == 0 {
		return out, nil
	}

	vecs, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, m := range misses {
		out[m.pos] = vecs[j]
		c.lru.Add(m.key, slices.Clone(vecs[j]))
	}
	return out, nil
}

// Len is the number of cached vectors.
func (c *CachedEmbedder) Len() int { return c.lru.Len() }

func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

func (c *CachedEmbedder) ModelName() string { return c.inner.ModelName() }

func (c *CachedEmbedder) Available(ctx context.Context) bool { return c.inner.Available(ctx) }

// Close drops the cache and closes the inner embedder.
func (c *CachedEmbedder) Close() error {
	c.lru.Purge()
	return c.inner.Close()
}

// Inner returns the wrapped embedder.
func (c *CachedEmbedder) Inner() Embedder { return c.inner }
