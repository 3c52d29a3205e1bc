package usecase

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = crerr.New("invalid input")
	ErrNotFound              = crerr.New("resource not found")
	ErrUnauthorized          = crerr.New("unauthorized")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")

	// ErrRemoteUnavailable marks transport failures and non-2xx responses from the remote platform.
	// Retryable by the caller; never retried internally.
	ErrRemoteUnavailable = crerr.New("remote platform unavailable")
	// ErrRemoteMalformed marks response bodies that could not be decoded.
	ErrRemoteMalformed = crerr.New("remote platform response malformed")
	// ErrRemoteNotFound marks lookups the remote platform answered with 404 or an empty body.
	ErrRemoteNotFound = crerr.New("remote resource not found")
	// ErrIdentityUnresolved is informational: the linked user has no unique roster in a league.
	ErrIdentityUnresolved = crerr.New("identity unresolved")
	// ErrPersistenceFailure marks failed writes or reads against the local store.
	ErrPersistenceFailure = crerr.New("persistence failure")
)

// ErrorKind classifies a per-league failure for caller-level reporting.
type ErrorKind string

const (
	KindRemoteUnavailable  ErrorKind = "remote_unavailable"
	KindRemoteMalformed    ErrorKind = "remote_malformed"
	KindPersistenceFailure ErrorKind = "persistence_failure"
	KindCanceled           ErrorKind = "canceled"
	KindUnknown            ErrorKind = "unknown"
)

// LeagueSyncError is the failure of one league inside a sync pass. An empty LeagueID means the
// league list for Season could not be fetched.
type LeagueSyncError struct {
	LeagueID   string    `json:"league_id"`
	LeagueName string    `json:"league_name,omitempty"`
	Season     string    `json:"season,omitempty"`
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	Err        error     `json:"-"`
}

func (e *LeagueSyncError) Error() string {
	if e.LeagueID == "" {
		return fmt.Sprintf("list leagues season=%s (%s): %v", e.Season, e.Kind, e.Err)
	}
	return fmt.Sprintf("league=%s season=%s (%s): %v", e.LeagueID, e.Season, e.Kind, e.Err)
}

func (e *LeagueSyncError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a later pass may succeed without any change on our side.
func (e *LeagueSyncError) Retryable() bool {
	switch e.Kind {
	case KindRemoteUnavailable, KindCanceled, KindPersistenceFailure:
		return true
	default:
		return false
	}
}

func newLeagueSyncError(leagueID, leagueName, season string, err error) *LeagueSyncError {
	return &LeagueSyncError{
		LeagueID:   leagueID,
		LeagueName: leagueName,
		Season:     season,
		Kind:       classifyError(err),
		Message:    err.Error(),
		Err:        err,
	}
}

// SyncFatalError aborts a whole sync pass; no per-league work was attempted.
type SyncFatalError struct {
	LocalUserID    string
	RemoteUsername string
	Stage          string
	Err            error
}

func (e *SyncFatalError) Error() string {
	return fmt.Sprintf("sync aborted at %s profile=%s username=%s: %v", e.Stage, e.LocalUserID, e.RemoteUsername, e.Err)
}

func (e *SyncFatalError) Unwrap() error {
	return e.Err
}

func classifyError(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case crerr.Is(err, context.Canceled), crerr.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case crerr.Is(err, ErrPersistenceFailure):
		return KindPersistenceFailure
	case crerr.Is(err, ErrRemoteMalformed):
		return KindRemoteMalformed
	case crerr.Is(err, ErrRemoteUnavailable), crerr.Is(err, ErrRemoteNotFound):
		return KindRemoteUnavailable
	default:
		return KindUnknown
	}
}

func persistenceErr(err error, format string, args ...any) error {
	return crerr.Mark(crerr.Wrapf(err, format, args...), ErrPersistenceFailure)
}
