package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/pronostic-tracker/internal/usecase"
)

const maxInternalRequestBytes = 1 << 16

var (
	internalJobDispatchUnsafeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	strictJSON                     = sonic.Config{DisallowUnknownFields: true}.Froze()
)

func (h *Handler) RunIngestMatchesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunIngestMatchesJob")
	defer span.End()

	if h.ingestionService == nil {
		writeError(ctx, w, fmt.Errorf("%w: match ingestion is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req ingestMatchesRequest
	if err := decodeInternalRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	daysAhead := h.defaultDaysAhead
	if req.DaysAhead != nil {
		daysAhead = *req.DaysAhead
	}
	dispatchID := resolveDispatchID(req.DispatchID, "ingest-matches", time.Now())

	result, err := h.ingestionService.IngestUpcoming(ctx, daysAhead)
	if err != nil {
		h.logger.WarnContext(ctx, "run ingest matches job failed", "dispatch_id", dispatchID, "days_ahead", daysAhead, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "ingest matches job completed", "dispatch_id", dispatchID, "days_ahead", daysAhead)

	writeSuccess(ctx, w, http.StatusOK, jobResultDTO{DispatchID: dispatchID, Result: result})
}

func (h *Handler) RunSettlePredictionsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettlePredictionsJob")
	defer span.End()

	if h.settlementService == nil {
		writeError(ctx, w, fmt.Errorf("%w: settlement is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req settlePredictionsRequest
	if err := decodeInternalRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	dispatchID := resolveDispatchID(req.DispatchID, "settle-predictions", time.Now())

	result, err := h.settlementService.SettlePending(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run settle predictions job failed", "dispatch_id", dispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "settle predictions job completed", "dispatch_id", dispatchID)

	writeSuccess(ctx, w, http.StatusOK, jobResultDTO{DispatchID: dispatchID, Result: result})
}

type jobResultDTO struct {
	DispatchID string `json:"dispatch_id"`
	Result     any    `json:"result"`
}

// decodeInternalRequest accepts an empty body as the zero request.
func decodeInternalRequest(r *http.Request, target any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxInternalRequestBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := strictJSON.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func resolveDispatchID(provided, jobName string, now time.Time) string {
	if id := strings.TrimSpace(provided); id != "" {
		return sanitizeDispatchPart(id)
	}
	return "manual-" + sanitizeDispatchPart(jobName) + "-" + now.UTC().Format("20060102T150405.000000000Z")
}

func sanitizeDispatchPart(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return internalJobDispatchUnsafeRegex.ReplaceAllString(value, "-")
}
