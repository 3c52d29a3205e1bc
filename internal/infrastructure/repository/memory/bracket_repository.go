package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/riskibarqy/league-sync/internal/domain/bracket"
)

type BracketRepository struct {
	mu    sync.RWMutex
	items map[int64]map[string]bracket.Entry
}

func NewBracketRepository() *BracketRepository {
	return &BracketRepository{items: make(map[int64]map[string]bracket.Entry)}
}

func (r *BracketRepository) ExistsByLeague(_ context.Context, leagueID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items[leagueID]) > 0, nil
}

func (r *BracketRepository) InsertMany(_ context.Context, items []bracket.Entry) (int, error) {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return 0, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, item := range items {
		byKey, ok := r.items[item.LeagueID]
		if !ok {
			byKey = make(map[string]bracket.Entry)
			r.items[item.LeagueID] = byKey
		}
		key := string(item.Type) + "::" + strconv.Itoa(item.MatchID)
		if _, exists := byKey[key]; exists {
			continue
		}
		byKey[key] = item
		inserted++
	}
	return inserted, nil
}

func (r *BracketRepository) ListByLeague(_ context.Context, leagueID int64) ([]bracket.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bracket.Entry, 0, len(r.items[leagueID]))
	for _, item := range r.items[leagueID] {
		out = append(out, item)
	}
	sortEntries(out)
	return out, nil
}

func sortEntries(items []bracket.Entry) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Type != items[j].Type {
			return items[i].Type == bracket.TypeWinners
		}
		if items[i].Round != items[j].Round {
			return items[i].Round < items[j].Round
		}
		return items[i].MatchID < items[j].MatchID
	})
}
