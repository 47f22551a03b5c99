package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	reserrors "roomly/internal/reservations/errors"
	"roomly/internal/reservations/service"
	"roomly/pkg/cache"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	httputil "roomly/pkg/http"
	"roomly/pkg/logger"
	"roomly/pkg/middleware"
	"roomly/pkg/model"
)

type ReservationHandler struct {
	service   service.ReservationService
	roomCache *cache.RoomReservationCache
	log       *logger.Logger
}

func NewReservationHandler(svc service.ReservationService, roomCache *cache.RoomReservationCache, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service:   svc,
		roomCache: roomCache,
		log:       log,
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodPost, "/api/v1/reservations", h.Create)
	router.HandlerFunc(http.MethodGet, "/api/v1/reservations", h.List)

	router.GET("/api/v1/reservations/:id", h.GetByID)
	router.PATCH("/api/v1/reservations/:id", h.Reschedule)
	router.DELETE("/api/v1/reservations/:id", h.Remove)
	router.POST("/api/v1/reservations/:id/confirm", h.Confirm)
	router.POST("/api/v1/reservations/:id/cancel", h.Cancel)
	router.POST("/api/v1/reservations/:id/complete", h.Complete)

	router.GET("/api/v1/rooms/:roomId/reservations", h.ListByRoom)
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var reservation model.Reservation
	if err := json.NewDecoder(r.Body).Decode(&reservation); err != nil {
		h.writeError(w, r, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	if err := h.service.Admit(r.Context(), &reservation); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.roomCache.Invalidate(reservation.RoomID)
	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("Failed to write response", "error", err, "request_id", middleware.RequestID(r.Context()))
	}
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := config.NormalizePaginationLimit(parseIntQuery(r, "limit", 0))
	offset := parseIntQuery(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	reservations, total, err := h.service.GetAll(r.Context(), limit, int64(offset))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if reservations == nil {
		reservations = []*model.Reservation{}
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("Failed to write response", "error", err, "request_id", middleware.RequestID(r.Context()))
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("Failed to write response", "error", err, "request_id", middleware.RequestID(r.Context()))
	}
}

func (h *ReservationHandler) Reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.ReservationUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, r, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	reservation, err := h.service.Reschedule(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.roomCache.Invalidate(reservation.RoomID)
	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("Failed to write response", "error", err, "request_id", middleware.RequestID(r.Context()))
	}
}

func (h *ReservationHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps.ByName("id"), h.service.Confirm)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps.ByName("id"), h.service.Cancel)
}

func (h *ReservationHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps.ByName("id"), h.service.Complete)
}

func (h *ReservationHandler) Remove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	reservation, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.roomCache.Invalidate(reservation.RoomID)
	httputil.WriteNoContent(w)
}

// ListByRoom serves a room's reservations from the TTL cache when fresh,
// falling back to the store on a miss.
func (h *ReservationHandler) ListByRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("roomId")

	if reservations, ok := h.roomCache.Get(roomID); ok {
		w.Header().Set("X-Cache", "HIT")
		if err := httputil.WriteSuccess(w, reservations); err != nil {
			h.log.Error("Failed to write response", "error", err, "request_id", middleware.RequestID(r.Context()))
		}
		return
	}

	reservations, err := h.service.GetByRoom(r.Context(), roomID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if reservations == nil {
		reservations = []*model.Reservation{}
	}
	h.roomCache.Set(roomID, reservations)

	w.Header().Set("X-Cache", "MISS")
	if err := httputil.WriteSuccess(w, reservations); err != nil {
		h.log.Error("Failed to write response", "error", err, "request_id", middleware.RequestID(r.Context()))
	}
}

func (h *ReservationHandler) transition(w http.ResponseWriter, r *http.Request, id string, fn func(context.Context, string) (*model.Reservation, error)) {
	reservation, err := fn(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.roomCache.Invalidate(reservation.RoomID)
	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("Failed to write response", "error", err, "request_id", middleware.RequestID(r.Context()))
	}
}

// writeError renders admission rejections with their reason payload and
// defers everything else to the shared error envelope.
func (h *ReservationHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.RequestID(r.Context())

	if rej, ok := reserrors.AsRejection(err); ok {
		status := http.StatusUnprocessableEntity
		details := map[string]any{"reason": string(rej.Reason)}
		if rej.Reason == reserrors.ReasonOverlap {
			status = http.StatusConflict
			details["conflict_id"] = rej.ConflictID
		}

		h.log.Info("Admission rejected", "reason", rej.Reason, "request_id", requestID)
		if werr := httputil.WriteJSON(w, status, httputil.ErrorResponse{
			Error:   rej.Detail,
			Code:    string(rej.Reason),
			Details: details,
		}); werr != nil {
			h.log.Error("Failed to write response", "error", werr, "request_id", requestID)
		}
		return
	}

	if appErr := apperrors.AsAppError(err); appErr != nil && appErr.HTTPStatus >= 500 {
		h.log.Error("Request failed", "error", err, "request_id", requestID)
	} else {
		h.log.Warn("Request rejected", "error", err, "request_id", requestID)
	}
	if werr := httputil.WriteError(w, err); werr != nil {
		h.log.Error("Failed to write response", "error", werr, "request_id", requestID)
	}
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
