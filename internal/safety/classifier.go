/*
Package safety scores how glycemically appropriate a food is for the current
metabolic context. The production classifier is a boosted tree ensemble
trained offline and shipped as a JSON artifact; callers only see the
Classifier capability.
*/
package safety

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Classifier returns the probability, in [0,1], that a food is safe.
// Implementations must be pure and safe for concurrent use.
type Classifier interface {
	Score(f Features) float64
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(f Features) float64

// Score calls fn(f).
func (fn ClassifierFunc) Score(f Features) float64 {
	return fn(f)
}

// Cached memoizes a pure classifier per feature vector.
type Cached struct {
	next  Classifier
	cache *lru.Cache[Features, float64]
}

// NewCached wraps next with an LRU of the given size.
func NewCached(next Classifier, size int) (*Cached, error) {
	cache, err := lru.New[Features, float64](size)
	if err != nil {
		return nil, fmt.Errorf("create score cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

// Score returns the cached probability or computes and stores it.
func (c *Cached) Score(f Features) float64 {
	if p, ok := c.cache.Get(f); ok {
		return p
	}
	p := c.next.Score(f)
	c.cache.Add(f, p)
	return p
}

// Len returns the number of cached vectors.
func (c *Cached) Len() int {
	return c.cache.Len()
}

// Loader resolves a model artifact to a single shared classifier. Concurrent
// first calls race safely; every caller gets the same instance or the same
// error. Only the first call's arguments are used.
type Loader struct {
	once       sync.Once
	classifier Classifier
	err        error
}

// Load reads the artifact at path once and wraps it in an LRU cache when
// cacheSize is positive.
func (l *Loader) Load(path string, cacheSize int) (Classifier, error) {
	l.once.Do(func() {
		model, err := LoadModel(path)
		if err != nil {
			l.err = err
			return
		}
		if cacheSize <= 0 {
			l.classifier = model
			return
		}
		l.classifier, l.err = NewCached(model, cacheSize)
	})
	return l.classifier, l.err
}

var shared Loader

// LoadShared is Loader.Load on the process-wide loader.
func LoadShared(path string, cacheSize int) (Classifier, error) {
	return shared.Load(path, cacheSize)
}
