package cache

import (
	"context"

	"github.com/anacondy/examwatch/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCache is the in-process AnalysisCache used when no Redis is configured.
// The size bound keeps memory flat regardless of how many documents get
// analyzed over the process lifetime.
type LRUCache struct {
	cache *lru.Cache[string, *models.AnalysisResult]
}

func NewLRUCache(size int) (*LRUCache, error) {
	c, err := lru.New[string, *models.AnalysisResult](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{cache: c}, nil
}

func (l *LRUCache) Get(_ context.Context, url string) (*models.AnalysisResult, bool) {
	return l.cache.Get(urlKey(url))
}

func (l *LRUCache) Set(_ context.Context, url string, res *models.AnalysisResult) {
	l.cache.Add(urlKey(url), res)
}

func (l *LRUCache) Close() error {
	l.cache.Purge()
	return nil
}
