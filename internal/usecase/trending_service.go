package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/league-sync/internal/platform/cache"
)

const (
	defaultTrendingLookbackHours = 24
	defaultTrendingLimit         = 25
	maxTrendingLookbackHours     = 24 * 7
	maxTrendingLimit             = 200
)

type TrendingQuery struct {
	Sport         string
	Direction     TrendDirection
	LookbackHours int
	Limit         int
}

// TrendingService serves trending players from the remote platform through a TTL cache.
type TrendingService struct {
	remote RemoteSportsProvider
	cache  *cache.Store[[]TrendingPlayer]
}

func NewTrendingService(remote RemoteSportsProvider, store *cache.Store[[]TrendingPlayer]) *TrendingService {
	return &TrendingService{remote: remote, cache: store}
}

func (s *TrendingService) List(ctx context.Context, query TrendingQuery) ([]TrendingPlayer, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TrendingService.List")
	defer span.End()

	query, err := normalizeTrendingQuery(query)
	if err != nil {
		return nil, err
	}

	load := func(ctx context.Context) ([]TrendingPlayer, error) {
		return s.remote.GetTrendingPlayers(ctx, query.Sport, query.Direction, query.LookbackHours, query.Limit)
	}
	if s.cache == nil {
		items, err := load(ctx)
		recordSpanError(span, err)
		return items, err
	}

	key := "trending:" + query.Sport + ":" + string(query.Direction) + ":" +
		strconv.Itoa(query.LookbackHours) + ":" + strconv.Itoa(query.Limit)
	items, err := s.cache.GetOrLoad(ctx, key, load)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return append([]TrendingPlayer(nil), items...), nil
}

func normalizeTrendingQuery(query TrendingQuery) (TrendingQuery, error) {
	query.Sport = strings.ToLower(strings.TrimSpace(query.Sport))
	if query.Sport == "" {
		query.Sport = DefaultSyncSport
	}
	query.Direction = TrendDirection(strings.ToLower(strings.TrimSpace(string(query.Direction))))
	if !query.Direction.Valid() {
		return TrendingQuery{}, fmt.Errorf("%w: direction must be add or drop", ErrInvalidInput)
	}

	switch {
	case query.LookbackHours == 0:
		query.LookbackHours = defaultTrendingLookbackHours
	case query.LookbackHours < 0 || query.LookbackHours > maxTrendingLookbackHours:
		return TrendingQuery{}, fmt.Errorf("%w: lookback_hours must be between 1 and %d", ErrInvalidInput, maxTrendingLookbackHours)
	}
	switch {
	case query.Limit == 0:
		query.Limit = defaultTrendingLimit
	case query.Limit < 0 || query.Limit > maxTrendingLimit:
		return TrendingQuery{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, maxTrendingLimit)
	}
	return query, nil
}
