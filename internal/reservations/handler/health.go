package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	httputil "roomly/pkg/http"
	"roomly/pkg/logger"
)

type HealthHandler struct {
	mongoClient *mongo.Client
	log         *logger.Logger
	startedAt   time.Time
}

func NewHealthHandler(mongoClient *mongo.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		mongoClient: mongoClient,
		log:         log,
		startedAt:   time.Now(),
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/health", h.Health)
	router.HandlerFunc(http.MethodGet, "/ready", h.Ready)
}

// Health reports liveness only. It never touches dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.startedAt).String(),
	}); err != nil {
		h.log.Error("Failed to write health response", "error", err)
	}
}

// Ready reports readiness, which requires a reachable store.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		h.log.Warn("Readiness check failed", "error", err)
		if werr := httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"error":  "store unreachable",
		}); werr != nil {
			h.log.Error("Failed to write readiness response", "error", werr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	}); err != nil {
		h.log.Error("Failed to write readiness response", "error", err)
	}
}
