package cache

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/player-scout/internal/domain/player"
	basecache "github.com/riskibarqy/player-scout/internal/platform/cache"
)

// SourceRepository decorates a player source with a TTL cache. Concurrent identical
// calls collapse into one upstream request; failures are never cached.
type SourceRepository struct {
	next     player.Source
	searches *basecache.Store[[]player.RawRecord]
	profiles *basecache.Store[player.SourceProfile]
}

func NewSourceRepository(next player.Source, ttl time.Duration) *SourceRepository {
	return &SourceRepository{
		next:     next,
		searches: basecache.NewStore[[]player.RawRecord](ttl),
		profiles: basecache.NewStore[player.SourceProfile](ttl),
	}
}

func (r *SourceRepository) Tag() player.SourceTag {
	return r.next.Tag()
}

func (r *SourceRepository) SearchByName(ctx context.Context, name string) ([]player.RawRecord, error) {
	key := "search:" + string(r.next.Tag()) + ":" + searchKey(name)
	items, err := r.searches.GetOrLoad(ctx, key, func(ctx context.Context) ([]player.RawRecord, error) {
		items, err := r.next.SearchByName(ctx, name)
		if err != nil {
			return nil, err
		}
		return append([]player.RawRecord{}, items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]player.RawRecord{}, items...), nil
}

func (r *SourceRepository) GetProfile(ctx context.Context, id string) (player.SourceProfile, error) {
	key := "profile:" + string(r.next.Tag()) + ":" + strings.TrimSpace(id)
	profile, err := r.profiles.GetOrLoad(ctx, key, func(ctx context.Context) (player.SourceProfile, error) {
		return r.next.GetProfile(ctx, id)
	})
	if err != nil {
		return player.SourceProfile{}, err
	}
	return cloneProfile(profile), nil
}

// EvictExpired drops stale entries from both caches.
func (r *SourceRepository) EvictExpired() int {
	return r.searches.EvictExpired() + r.profiles.EvictExpired()
}

func searchKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func cloneProfile(p player.SourceProfile) player.SourceProfile {
	out := p
	if p.Fields != nil {
		out.Fields = make(map[string]player.Value, len(p.Fields))
		for k, v := range p.Fields {
			out.Fields[k] = v
		}
	}
	if p.Seasons != nil {
		out.Seasons = append([]player.SeasonStats(nil), p.Seasons...)
	}
	return out
}
