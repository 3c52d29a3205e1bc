package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/league-sync/internal/domain/bracket"
	"github.com/riskibarqy/league-sync/internal/platform/logging"
	"github.com/riskibarqy/league-sync/internal/usecase"
)

const maxRequestBodyBytes = 64 << 10

type Syncer interface {
	Sync(ctx context.Context, localUserID, remoteUsername string) (usecase.SyncResult, error)
	SyncAll(ctx context.Context) (usecase.BatchSyncResult, error)
}

type LeagueQuerier interface {
	ListByProfile(ctx context.Context, profileID string) (usecase.ProfileLeagues, error)
	ListBrackets(ctx context.Context, localLeagueID int64) ([]bracket.Entry, error)
}

type TrendingLister interface {
	List(ctx context.Context, query usecase.TrendingQuery) ([]usecase.TrendingPlayer, error)
}

type Handler struct {
	syncer    Syncer
	leagues   LeagueQuerier
	trending  TrendingLister
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(syncer Syncer, leagues LeagueQuerier, trending TrendingLister, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		syncer:    syncer,
		leagues:   leagues,
		trending:  trending,
		logger:    logger.Named("httpapi"),
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Sync")
	defer span.End()

	var req syncRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	req.ProfileID = strings.TrimSpace(req.ProfileID)
	req.Username = strings.TrimSpace(req.Username)
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.syncer.Sync(ctx, req.ProfileID, req.Username)
	if err != nil {
		h.logger.WarnContext(ctx, "sync failed", "profile_id", req.ProfileID, "username", req.Username, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) SyncAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncAll")
	defer span.End()

	result, err := h.syncer.SyncAll(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "sync all failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ListProfileLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListProfileLeagues")
	defer span.End()

	profileID := strings.TrimSpace(r.PathValue("profileID"))
	item, err := h.leagues.ListByProfile(ctx, profileID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, profileLeaguesToDTO(item))
}

func (h *Handler) ListLeagueBrackets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueBrackets")
	defer span.End()

	raw := strings.TrimSpace(r.PathValue("leagueID"))
	leagueID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || leagueID <= 0 {
		writeError(ctx, w, fmt.Errorf("%w: league id must be a positive integer, got %q", usecase.ErrInvalidInput, raw))
		return
	}

	items, err := h.leagues.ListBrackets(ctx, leagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, bracketEntriesToDTO(items))
}

func (h *Handler) ListTrendingPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTrendingPlayers")
	defer span.End()

	query := usecase.TrendingQuery{
		Sport:     strings.TrimSpace(r.PathValue("sport")),
		Direction: usecase.TrendDirection(strings.TrimSpace(r.PathValue("direction"))),
	}
	var err error
	if query.LookbackHours, err = parseOptionalInt(r, "lookback_hours"); err != nil {
		writeError(ctx, w, err)
		return
	}
	if query.Limit, err = parseOptionalInt(r, "limit"); err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.trending.List(ctx, query)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, trendingToDTO(items))
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func parseOptionalInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", usecase.ErrInvalidInput, key, raw)
	}
	return value, nil
}
