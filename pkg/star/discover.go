package star

import (
	"context"

	"github.com/starlane-io/starlane/pkg/search"
	"github.com/starlane-io/starlane/pkg/wrangler"
)

// Discover floods a search for kind and records every hit in the
// wrangler table, so a subsequent Wrangle.Next(wrangler.ForKind(kind))
// has fresh candidates. Every hit returned by an OfKind search is, by
// construction, of the kind searched for — the search protocol itself
// never reports a star's kind, only its key and hop distance — so this
// is the only place a Row's Kind field gets populated for a discovered
// peer.
func (s *Star) Discover(ctx context.Context, kind search.StarKind) (search.Hits, error) {
	hits, err := s.Search.Search(ctx, search.OfKind(kind))
	if err != nil {
		return search.Hits{}, err
	}
	for key, hops := range hits.Hits {
		h := hops
		s.Wrangle.Add(wrangler.Row{Key: key, Kind: kind, Hops: &h})
	}
	return hits, nil
}
