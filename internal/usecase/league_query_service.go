package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/league-sync/internal/domain/bracket"
	"github.com/riskibarqy/league-sync/internal/domain/league"
	"github.com/riskibarqy/league-sync/internal/domain/platformuser"
)

// LeagueQueryService is the read side used by the UI after a sync.
type LeagueQueryService struct {
	users    platformuser.Repository
	leagues  league.Repository
	brackets bracket.Repository
}

func NewLeagueQueryService(users platformuser.Repository, leagues league.Repository, brackets bracket.Repository) *LeagueQueryService {
	return &LeagueQueryService{users: users, leagues: leagues, brackets: brackets}
}

type ProfileLeagues struct {
	Linkage platformuser.Linkage  `json:"linkage"`
	Leagues []league.LinkedLeague `json:"leagues"`
}

func (s *LeagueQueryService) ListByProfile(ctx context.Context, profileID string) (ProfileLeagues, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueQueryService.ListByProfile")
	defer span.End()

	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return ProfileLeagues{}, fmt.Errorf("%w: profile id is required", ErrInvalidInput)
	}

	linkage, exists, err := s.users.GetByProfileID(ctx, profileID)
	if err != nil {
		return ProfileLeagues{}, persistenceErr(err, "load platform user profile=%s", profileID)
	}
	if !exists {
		return ProfileLeagues{}, fmt.Errorf("%w: no linked account for profile=%s", ErrNotFound, profileID)
	}

	items, err := s.leagues.ListByPlatformUser(ctx, linkage.ID)
	if err != nil {
		return ProfileLeagues{}, persistenceErr(err, "list leagues platform_user_id=%d", linkage.ID)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Snapshot.Season != items[j].Snapshot.Season {
			return items[i].Snapshot.Season > items[j].Snapshot.Season
		}
		return items[i].Snapshot.Name < items[j].Snapshot.Name
	})
	return ProfileLeagues{Linkage: linkage, Leagues: items}, nil
}

func (s *LeagueQueryService) ListBrackets(ctx context.Context, localLeagueID int64) ([]bracket.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueQueryService.ListBrackets")
	defer span.End()

	if localLeagueID <= 0 {
		return nil, fmt.Errorf("%w: league id must be > 0", ErrInvalidInput)
	}
	if _, exists, err := s.leagues.GetByID(ctx, localLeagueID); err != nil {
		return nil, persistenceErr(err, "load league id=%d", localLeagueID)
	} else if !exists {
		return nil, fmt.Errorf("%w: league id=%d", ErrNotFound, localLeagueID)
	}

	items, err := s.brackets.ListByLeague(ctx, localLeagueID)
	if err != nil {
		return nil, persistenceErr(err, "list brackets league_id=%d", localLeagueID)
	}
	return items, nil
}
