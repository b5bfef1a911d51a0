package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /metrics", handler.Metrics)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/users/{userID}/stats", handler.GetUserStats)
	mux.HandleFunc("GET /v1/matches/{eventID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/predictions/{predictionID}", handler.GetPrediction)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/ingest-matches", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunIngestMatchesJob)))
	mux.Handle("POST /v1/internal/jobs/settle-predictions", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSettlePredictionsJob)))
	mux.Handle("POST /v1/internal/matches/{eventID}/sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.SyncMatch)))
	mux.Handle("POST /v1/internal/predictions", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.CreatePrediction)))
}
