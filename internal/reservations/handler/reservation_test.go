package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	reserrors "roomly/internal/reservations/errors"
	"roomly/pkg/cache"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

type mockReservationService struct {
	admitFunc      func(ctx context.Context, r *model.Reservation) error
	rescheduleFunc func(ctx context.Context, id string, u *model.ReservationUpdate) (*model.Reservation, error)
	getByIDFunc    func(ctx context.Context, id string) (*model.Reservation, error)
	getAllFunc     func(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	getByRoomFunc  func(ctx context.Context, roomID string) ([]*model.Reservation, error)
	confirmFunc    func(ctx context.Context, id string) (*model.Reservation, error)
	cancelFunc     func(ctx context.Context, id string) (*model.Reservation, error)
	completeFunc   func(ctx context.Context, id string) (*model.Reservation, error)
	removeFunc     func(ctx context.Context, id string) error
}

func (m *mockReservationService) Admit(ctx context.Context, r *model.Reservation) error {
	return m.admitFunc(ctx, r)
}

func (m *mockReservationService) Reschedule(ctx context.Context, id string, u *model.ReservationUpdate) (*model.Reservation, error) {
	return m.rescheduleFunc(ctx, id, u)
}

func (m *mockReservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockReservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return m.getAllFunc(ctx, limit, offset)
}

func (m *mockReservationService) GetByRoom(ctx context.Context, roomID string) ([]*model.Reservation, error) {
	return m.getByRoomFunc(ctx, roomID)
}

func (m *mockReservationService) Confirm(ctx context.Context, id string) (*model.Reservation, error) {
	return m.confirmFunc(ctx, id)
}

func (m *mockReservationService) Cancel(ctx context.Context, id string) (*model.Reservation, error) {
	return m.cancelFunc(ctx, id)
}

func (m *mockReservationService) Complete(ctx context.Context, id string) (*model.Reservation, error) {
	return m.completeFunc(ctx, id)
}

func (m *mockReservationService) Remove(ctx context.Context, id string) error {
	return m.removeFunc(ctx, id)
}

func newTestRouter(svc *mockReservationService) (*httprouter.Router, *cache.RoomReservationCache) {
	log := logger.New(logger.Config{Level: "error", Format: "text", Output: io.Discard})
	roomCache := cache.NewRoomReservationCache(time.Minute)

	router := httprouter.New()
	NewReservationHandler(svc, roomCache, log).RegisterRoutes(router)
	return router, roomCache
}

func sampleReservation() *model.Reservation {
	return &model.Reservation{
		ID:        "65f100000000000000000001",
		RoomID:    "65f000000000000000000001",
		GuestName: "Ada Lovelace",
		CheckIn:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Status:    model.StatusPending,
	}
}

func TestCreate_Success(t *testing.T) {
	svc := &mockReservationService{
		admitFunc: func(_ context.Context, r *model.Reservation) error {
			r.ID = "65f100000000000000000001"
			r.Status = model.StatusPending
			r.Nights = 4
			r.TotalPriceCents = 400_00
			return nil
		},
	}
	router, _ := newTestRouter(svc)

	body, _ := json.Marshal(sampleReservation())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data model.Reservation `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Data.ID == "" || resp.Data.TotalPriceCents != 400_00 {
		t.Errorf("unexpected body: %+v", resp.Data)
	}
}

func TestCreate_OverlapMapsToConflict(t *testing.T) {
	conflict := sampleReservation()
	svc := &mockReservationService{
		admitFunc: func(_ context.Context, _ *model.Reservation) error {
			return reserrors.Overlap(conflict)
		},
	}
	router, _ := newTestRouter(svc)

	body, _ := json.Marshal(sampleReservation())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	var resp struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Code != string(reserrors.ReasonOverlap) {
		t.Errorf("code = %q, want OVERLAP", resp.Code)
	}
	if resp.Details["conflict_id"] != conflict.ID {
		t.Errorf("conflict_id = %v, want %s", resp.Details["conflict_id"], conflict.ID)
	}
}

func TestCreate_StayRejectionsMapToUnprocessable(t *testing.T) {
	cases := []struct {
		name string
		rej  *reserrors.Rejection
	}{
		{"past date", reserrors.PastDate(time.Now().AddDate(0, 0, -1), time.Now())},
		{"invalid range", reserrors.InvalidRange("check-out must be after check-in")},
		{"duration exceeded", reserrors.DurationExceeded(31, 30)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockReservationService{
				admitFunc: func(_ context.Context, _ *model.Reservation) error { return tc.rej },
			}
			router, _ := newTestRouter(svc)

			body, _ := json.Marshal(sampleReservation())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", rec.Code)
			}

			var resp struct {
				Code string `json:"code"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			if resp.Code != string(tc.rej.Reason) {
				t.Errorf("code = %q, want %q", resp.Code, tc.rej.Reason)
			}
		})
	}
}

func TestCreate_InvalidJSON(t *testing.T) {
	svc := &mockReservationService{}
	router, _ := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreate_RetryableFaultExposed(t *testing.T) {
	svc := &mockReservationService{
		admitFunc: func(_ context.Context, _ *model.Reservation) error {
			return apperrors.Unavailable("room admission")
		},
	}
	router, _ := newTestRouter(svc)

	body, _ := json.Marshal(sampleReservation())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var resp struct {
		Retryable bool `json:"retryable"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if !resp.Retryable {
		t.Error("retryable flag must be exposed to callers")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := &mockReservationService{
		getByIDFunc: func(_ context.Context, id string) (*model.Reservation, error) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		},
	}
	router, _ := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/65f1ffffffffffffffffffff", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestConfirm_IllegalTransition(t *testing.T) {
	svc := &mockReservationService{
		confirmFunc: func(_ context.Context, _ string) (*model.Reservation, error) {
			return nil, apperrors.Conflict("cannot mark a cancelled reservation as confirmed")
		},
	}
	router, _ := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/65f100000000000000000001/confirm", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestRemove_NoContentAndCacheInvalidated(t *testing.T) {
	res := sampleReservation()
	svc := &mockReservationService{
		getByIDFunc: func(_ context.Context, _ string) (*model.Reservation, error) { return res, nil },
		removeFunc:  func(_ context.Context, _ string) error { return nil },
	}
	router, roomCache := newTestRouter(svc)
	roomCache.Set(res.RoomID, []*model.Reservation{res})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/reservations/"+res.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if _, ok := roomCache.Get(res.RoomID); ok {
		t.Error("room cache must be invalidated on removal")
	}
}

func TestListByRoom_CacheHit(t *testing.T) {
	res := sampleReservation()
	calls := 0
	svc := &mockReservationService{
		getByRoomFunc: func(_ context.Context, _ string) ([]*model.Reservation, error) {
			calls++
			return []*model.Reservation{res}, nil
		},
	}
	router, _ := newTestRouter(svc)

	url := "/api/v1/rooms/" + res.RoomID + "/reservations"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first call: status %d, X-Cache %q", rec.Code, rec.Header().Get("X-Cache"))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("second call: status %d, X-Cache %q", rec.Code, rec.Header().Get("X-Cache"))
	}

	if calls != 1 {
		t.Errorf("store hit %d times, want 1", calls)
	}
}

func TestList_Paginated(t *testing.T) {
	svc := &mockReservationService{
		getAllFunc: func(_ context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
			if limit != 5 || offset != 10 {
				t.Errorf("limit, offset = %d, %d, want 5, 10", limit, offset)
			}
			return []*model.Reservation{sampleReservation()}, 42, nil
		},
	}
	router, _ := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations?limit=5&offset=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		TotalCount int64 `json:"total_count"`
		Limit      int   `json:"limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.TotalCount != 42 || resp.Limit != 5 {
		t.Errorf("total_count, limit = %d, %d, want 42, 5", resp.TotalCount, resp.Limit)
	}
}
