package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/league-sync/internal/domain/platformuser"
)

type PlatformUserRepository struct {
	mu     sync.RWMutex
	items  map[string]platformuser.Linkage
	nextID int64
}

func NewPlatformUserRepository() *PlatformUserRepository {
	return &PlatformUserRepository{items: make(map[string]platformuser.Linkage)}
}

func (r *PlatformUserRepository) Upsert(_ context.Context, item platformuser.Linkage) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[item.ProfileID]; ok {
		item.ID = existing.ID
	} else {
		r.nextID++
		item.ID = r.nextID
	}
	r.items[item.ProfileID] = item
	return nil
}

func (r *PlatformUserRepository) GetByProfileID(_ context.Context, profileID string) (platformuser.Linkage, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[profileID]
	return item, ok, nil
}

func (r *PlatformUserRepository) List(_ context.Context) ([]platformuser.Linkage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]platformuser.Linkage, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
