package params

import (
	"strings"
	"sync"

	"github.com/zeebo/xxh3"
)

// rewriteCache запоминает результаты ReplaceParams: текст запроса
// переписывается один раз, дальше берется по хешу. Размер ограничен;
// при переполнении кеш сбрасывается целиком - запросов с именованными
// плейсхолдерами в приложении конечное число, заполнение одноразовое.
type rewriteCache struct {
	mu      sync.RWMutex
	entries map[uint64]string
	limit   int
}

var cache = &rewriteCache{
	entries: make(map[uint64]string),
	limit:   512,
}

func cacheKey(sql string, names []string) uint64 {
	h := xxh3.New()
	_, _ = h.WriteString(sql)
	for _, name := range names {
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(strings.ToLower(name))
	}
	return h.Sum64()
}

// ReplaceParamsCached - ReplaceParams с мемоизацией переписанного текста.
func ReplaceParamsCached(sql string, names ...string) (string, error) {
	key := cacheKey(sql, names)

	cache.mu.RLock()
	rewritten, ok := cache.entries[key]
	cache.mu.RUnlock()
	if ok {
		return rewritten, nil
	}

	rewritten, err := ReplaceParams(sql, names...)
	if err != nil {
		return "", err
	}

	cache.mu.Lock()
	if len(cache.entries) >= cache.limit {
		cache.entries = make(map[uint64]string)
	}
	cache.entries[key] = rewritten
	cache.mu.Unlock()

	return rewritten, nil
}

// cacheLen - для тестов.
func cacheLen() int {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	return len(cache.entries)
}
