package existence

import (
	"context"
	"log/slog"
	"strings"
)

// Validator answers existence questions through a shared Cache.
type Validator struct {
	checker *Checker
	cache   *Cache
}

func NewValidator(checker *Checker, cache *Cache) *Validator {
	return &Validator{checker: checker, cache: cache}
}

// Exists reports whether song plausibly exists. A failed live check is
// logged and cached as false. A failure of the cache lookup itself is
// returned as a *LookupError and the answer is left to the caller.
func (v *Validator) Exists(ctx context.Context, song string) (bool, error) {
	key := strings.ToLower(song)
	return v.cache.GetOrCompute(ctx, key, func(ctx context.Context) (bool, error) {
		found, err := v.checker.Check(ctx, song)
		if err != nil {
			slog.Warn("existence check failed", "song", song, "err", err)
			return false, nil
		}
		return found, nil
	})
}
