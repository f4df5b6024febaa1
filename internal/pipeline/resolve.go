package pipeline

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/threadlist/internal/services"
	"golang.org/x/time/rate"
)

// DefaultMarket is used when the caller supplies no market code.
const DefaultMarket = "US"

// SearchCache stores previously resolved queries so repeat runs against the
// same thread avoid redundant catalog calls. Implementations treat a miss as
// (nil, false, nil).
type SearchCache interface {
	Get(ctx context.Context, query, market string) (*services.Track, bool, error)
	Put(ctx context.Context, query, market string, t *services.Track) error
}

// Resolver turns candidate queries into catalog tracks. Queries are capped
// at the search API's character limit here, exactly once, at the boundary.
type Resolver struct {
	catalog services.Catalog
	cache   SearchCache
	guard   *Guard
	limiter *rate.Limiter
	market  string
	logger  *log.Logger
}

// NewResolver builds a Resolver. cache may be nil to disable caching, and
// market falls back to DefaultMarket when empty.
func NewResolver(catalog services.Catalog, cache SearchCache, guard *Guard, limiter *rate.Limiter, market string, logger *log.Logger) *Resolver {
	if market == "" {
		market = DefaultMarket
	}
	return &Resolver{
		catalog: catalog,
		cache:   cache,
		guard:   guard,
		limiter: limiter,
		market:  market,
		logger:  logger,
	}
}

// Market reports the market code the resolver searches against.
func (r *Resolver) Market() string {
	return r.market
}

// Resolve searches the catalog for query. A miss returns (nil, nil); the
// caller decides whether a miss is worth reporting. Errors surface only
// after the guard's attempts are exhausted.
func (r *Resolver) Resolve(ctx context.Context, query string) (*services.Track, error) {
	query = TruncateQuery(query)

	if r.cache != nil {
		track, hit, err := r.cache.Get(ctx, query, r.market)
		if err != nil {
			r.logger.Warn("search cache read failed", "error", err)
		} else if hit {
			return track, nil
		}
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var track *services.Track
	err := r.guard.Do(ctx, "track search", func(ctx context.Context) error {
		found, err := r.catalog.SearchTrack(ctx, query, r.market)
		if err != nil {
			return err
		}
		track = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	if track != nil && r.cache != nil {
		if err := r.cache.Put(ctx, query, r.market, track); err != nil {
			r.logger.Warn("search cache write failed", "error", err)
		}
	}
	return track, nil
}
