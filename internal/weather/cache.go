package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/novatrek/planner/backend/internal/domain"
)

// Recorder receives cache lookup outcomes ("hit", "miss", "error").
type Recorder interface {
	Weather(result string)
}

// Cached memoizes forecasts per (coordinates, date). Failures are not cached.
type Cached struct {
	next  Provider
	cache *cache.Cache
	rec   Recorder
}

// NewCached wraps next with an in-memory cache. rec may be nil.
func NewCached(next Provider, ttl time.Duration, rec Recorder) *Cached {
	return &Cached{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
		rec:   rec,
	}
}

func (c *Cached) Forecast(ctx context.Context, at domain.Coordinates, date time.Time) (domain.Weather, error) {
	key := fmt.Sprintf("%.4f,%.4f,%s", at.Lat, at.Lng, date.Format(domain.DateLayout))
	if cached, found := c.cache.Get(key); found {
		c.record("hit")
		return cached.(domain.Weather), nil
	}

	w, err := c.next.Forecast(ctx, at, date)
	if err != nil {
		c.record("error")
		return domain.Weather{}, err
	}
	c.record("miss")
	c.cache.Set(key, w, cache.DefaultExpiration)
	return w, nil
}

func (c *Cached) record(result string) {
	if c.rec != nil {
		c.rec.Weather(result)
	}
}
