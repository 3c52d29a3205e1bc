package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/league-sync/internal/domain/bracket"
	"github.com/riskibarqy/league-sync/internal/domain/league"
	basecache "github.com/riskibarqy/league-sync/internal/platform/cache"
)

// LeagueRepository caches the read paths of league.Repository. Upsert drops the keys of the
// written row.
type LeagueRepository struct {
	next  league.Repository
	lists *basecache.Store[[]league.LinkedLeague]
	byID  *basecache.Store[cachedLeagueByID]
}

type cachedLeagueByID struct {
	value  league.LinkedLeague
	exists bool
}

func NewLeagueRepository(next league.Repository, ttl time.Duration) *LeagueRepository {
	return &LeagueRepository{
		next:  next,
		lists: basecache.NewStore[[]league.LinkedLeague](ttl),
		byID:  basecache.NewStore[cachedLeagueByID](ttl),
	}
}

func (r *LeagueRepository) Upsert(ctx context.Context, item league.LinkedLeague) (int64, error) {
	id, err := r.next.Upsert(ctx, item)
	if err != nil {
		return 0, err
	}
	r.lists.Delete(ctx, leagueListKey(item.PlatformUserID))
	r.byID.Delete(ctx, leagueIDKey(id))
	return id, nil
}

func (r *LeagueRepository) ListByPlatformUser(ctx context.Context, platformUserID int64) ([]league.LinkedLeague, error) {
	items, err := r.lists.GetOrLoad(ctx, leagueListKey(platformUserID), func(ctx context.Context) ([]league.LinkedLeague, error) {
		return r.next.ListByPlatformUser(ctx, platformUserID)
	})
	if err != nil {
		return nil, err
	}
	return append([]league.LinkedLeague(nil), items...), nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, id int64) (league.LinkedLeague, bool, error) {
	cached, err := r.byID.GetOrLoad(ctx, leagueIDKey(id), func(ctx context.Context) (cachedLeagueByID, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return cachedLeagueByID{}, err
		}
		return cachedLeagueByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.LinkedLeague{}, false, err
	}
	return cached.value, cached.exists, nil
}

func leagueListKey(platformUserID int64) string {
	return "league:user:" + strconv.FormatInt(platformUserID, 10)
}

func leagueIDKey(id int64) string {
	return "league:id:" + strconv.FormatInt(id, 10)
}

// BracketRepository caches ListByLeague. ExistsByLeague always reads through so the
// insert-once check never sees a stale answer.
type BracketRepository struct {
	next    bracket.Repository
	entries *basecache.Store[[]bracket.Entry]
}

func NewBracketRepository(next bracket.Repository, ttl time.Duration) *BracketRepository {
	return &BracketRepository{
		next:    next,
		entries: basecache.NewStore[[]bracket.Entry](ttl),
	}
}

func (r *BracketRepository) ExistsByLeague(ctx context.Context, leagueID int64) (bool, error) {
	return r.next.ExistsByLeague(ctx, leagueID)
}

func (r *BracketRepository) InsertMany(ctx context.Context, items []bracket.Entry) (int, error) {
	inserted, err := r.next.InsertMany(ctx, items)
	seen := make(map[int64]struct{}, 1)
	for _, item := range items {
		if _, ok := seen[item.LeagueID]; ok {
			continue
		}
		seen[item.LeagueID] = struct{}{}
		r.entries.Delete(ctx, bracketListKey(item.LeagueID))
	}
	return inserted, err
}

func (r *BracketRepository) ListByLeague(ctx context.Context, leagueID int64) ([]bracket.Entry, error) {
	items, err := r.entries.GetOrLoad(ctx, bracketListKey(leagueID), func(ctx context.Context) ([]bracket.Entry, error) {
		return r.next.ListByLeague(ctx, leagueID)
	})
	if err != nil {
		return nil, err
	}
	return append([]bracket.Entry(nil), items...), nil
}

func bracketListKey(leagueID int64) string {
	return "bracket:league:" + strconv.FormatInt(leagueID, 10)
}
