package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/riskibarqy/league-sync/internal/domain/league"
)

type LeagueRepository struct {
	mu     sync.RWMutex
	items  map[int64]league.LinkedLeague
	byKey  map[string]int64
	nextID int64
}

func NewLeagueRepository() *LeagueRepository {
	return &LeagueRepository{
		items: make(map[int64]league.LinkedLeague),
		byKey: make(map[string]int64),
	}
}

func (r *LeagueRepository) Upsert(_ context.Context, item league.LinkedLeague) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := leagueKey(item.Snapshot.RemoteLeagueID, item.PlatformUserID)
	id, ok := r.byKey[key]
	if !ok {
		r.nextID++
		id = r.nextID
		r.byKey[key] = id
	}

	item.ID = id
	r.items[id] = cloneLinkedLeague(item)
	return id, nil
}

func (r *LeagueRepository) ListByPlatformUser(_ context.Context, platformUserID int64) ([]league.LinkedLeague, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.LinkedLeague, 0)
	for _, item := range r.items {
		if item.PlatformUserID == platformUserID {
			out = append(out, cloneLinkedLeague(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LeagueRepository) GetByID(_ context.Context, id int64) (league.LinkedLeague, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return league.LinkedLeague{}, false, nil
	}
	return cloneLinkedLeague(item), true, nil
}

// Len reports the number of stored rows.
func (r *LeagueRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func leagueKey(remoteLeagueID string, platformUserID int64) string {
	return remoteLeagueID + "::" + strconv.FormatInt(platformUserID, 10)
}

func cloneLinkedLeague(item league.LinkedLeague) league.LinkedLeague {
	copied := item
	copied.Snapshot.Settings = cloneDocument(item.Snapshot.Settings)
	copied.Snapshot.ScoringSettings = cloneDocument(item.Snapshot.ScoringSettings)
	copied.Snapshot.RosterPositions = append([]string(nil), item.Snapshot.RosterPositions...)
	copied.EnhancedSettings = cloneDocument(item.EnhancedSettings)
	return copied
}

func cloneDocument(doc league.Document) league.Document {
	if doc == nil {
		return nil
	}
	return doc.Clone()
}
