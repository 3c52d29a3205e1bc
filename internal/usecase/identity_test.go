package usecase

import (
	"testing"

	"github.com/riskibarqy/league-sync/internal/domain/platformuser"
)

func TestIdentityResolver_Resolve(t *testing.T) {
	t.Parallel()

	linkage := platformuser.Linkage{ProfileID: "p1", Username: "U1"}
	tests := []struct {
		name         string
		participants []RemoteParticipant
		wantFound    bool
		wantID       string
	}{
		{
			name:         "single exact match",
			participants: []RemoteParticipant{{RemoteUserID: "r1", DisplayName: "U1"}, {RemoteUserID: "r2", DisplayName: "U2"}},
			wantFound:    true,
			wantID:       "r1",
		},
		{
			name:         "no match",
			participants: []RemoteParticipant{{RemoteUserID: "r2", DisplayName: "U2"}},
		},
		{
			name:         "case sensitive",
			participants: []RemoteParticipant{{RemoteUserID: "r1", DisplayName: "u1"}},
		},
		{
			name:         "username field is not the join key",
			participants: []RemoteParticipant{{RemoteUserID: "r1", Username: "U1", DisplayName: "Someone"}},
		},
		{
			name:         "ambiguous match",
			participants: []RemoteParticipant{{RemoteUserID: "r1", DisplayName: "U1"}, {RemoteUserID: "r9", DisplayName: "U1"}},
		},
		{
			name:         "empty list",
			participants: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, found := IdentityResolver{}.Resolve(tc.participants, linkage)
			if found != tc.wantFound {
				t.Fatalf("expected found=%v, got %v", tc.wantFound, found)
			}
			if got.RemoteUserID != tc.wantID {
				t.Fatalf("expected remote user id %q, got %q", tc.wantID, got.RemoteUserID)
			}
		})
	}
}

func TestIdentityResolver_EmptyUsernameNeverMatches(t *testing.T) {
	t.Parallel()

	_, found := IdentityResolver{}.Resolve([]RemoteParticipant{{RemoteUserID: "r1"}}, platformuser.Linkage{})
	if found {
		t.Fatalf("expected empty username to resolve nothing")
	}
}
