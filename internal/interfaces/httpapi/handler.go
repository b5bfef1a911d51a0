package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/pronostic-tracker/internal/usecase"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.metricsHandler.ServeHTTP(w, r)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	if h.lookupService == nil {
		writeError(ctx, w, fmt.Errorf("%w: match lookup is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	eventID, err := parsePositiveID(r.PathValue("eventID"), "event id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.lookupService.GetStored(ctx, eventID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) SyncMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncMatch")
	defer span.End()

	if h.lookupService == nil {
		writeError(ctx, w, fmt.Errorf("%w: match lookup is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	eventID, err := parsePositiveID(r.PathValue("eventID"), "event id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, created, err := h.lookupService.FetchAndStore(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "sync match failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchSyncDTO{Match: matchToDTO(item), Created: created})
}

func (h *Handler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserStats")
	defer span.End()

	if h.statsService == nil {
		writeError(ctx, w, fmt.Errorf("%w: stats are not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req := userStatsRequest{UserID: strings.TrimSpace(r.PathValue("userID"))}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.statsService.UserStats(ctx, req.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user stats failed", "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stats)
}

func (h *Handler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreatePrediction")
	defer span.End()

	if h.predictionService == nil {
		writeError(ctx, w, fmt.Errorf("%w: predictions are not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req createPredictionRequest
	if err := decodeInternalRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.predictionService.Create(ctx, usecase.CreatePredictionInput{
		UserID:  req.UserID,
		MatchID: req.MatchID,
		BetType: req.BetType,
		Details: req.Details,
		Stake:   req.Stake,
		Odds:    req.Odds,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create prediction failed", "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, predictionToDTO(item))
}

func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPrediction")
	defer span.End()

	if h.predictionService == nil {
		writeError(ctx, w, fmt.Errorf("%w: predictions are not configured", usecase.ErrDependencyUnavailable))
		return
	}

	id, err := parsePositiveID(r.PathValue("predictionID"), "prediction id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.predictionService.Get(ctx, id)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(item))
}

func parsePositiveID(raw, label string) (int64, error) {
	raw = strings.TrimSpace(raw)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", usecase.ErrInvalidInput, label, raw)
	}
	return id, nil
}
