package usecase

import "github.com/riskibarqy/league-sync/internal/domain/platformuser"

// IdentityResolver finds the linked local user among a league's participants.
type IdentityResolver struct{}

// Resolve matches on participant display name equal to the linkage username, exact and
// case-sensitive. Zero or several matches report found=false.
func (IdentityResolver) Resolve(participants []RemoteParticipant, linkage platformuser.Linkage) (RemoteParticipant, bool) {
	if linkage.Username == "" {
		return RemoteParticipant{}, false
	}

	var (
		match RemoteParticipant
		hits  int
	)
	for _, item := range participants {
		if item.DisplayName != linkage.Username {
			continue
		}
		hits++
		if hits > 1 {
			return RemoteParticipant{}, false
		}
		match = item
	}
	return match, hits == 1
}
