package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/hitoshi/ignitecall/internal/availability"
	"github.com/hitoshi/ignitecall/internal/middleware"
	"github.com/hitoshi/ignitecall/internal/model"
)

// AvailabilityServiceInterface は時間帯ハンドラーが必要とするサービスインターフェース。
type AvailabilityServiceInterface interface {
	// SaveWeek は7日分のフォーム値を検証し、有効な曜日の時間帯で既存の設定を置き換える。
	// 検証エラーは*availability.ValidationErrorで返す。
	SaveWeek(ctx context.Context, userID string, slots []availability.WeekdaySlot) error
	// ListSlots は再表示用に7日分のフォーム値を返す。
	ListSlots(ctx context.Context, userID string) ([]availability.WeekdaySlot, error)
}

// TimeIntervalHandler は曜日ごとの予約受付時間帯のHTTPハンドラー。
type TimeIntervalHandler struct {
	service AvailabilityServiceInterface
}

// NewTimeIntervalHandler はTimeIntervalHandlerを生成する。
func NewTimeIntervalHandler(service AvailabilityServiceInterface) *TimeIntervalHandler {
	return &TimeIntervalHandler{service: service}
}

type timeIntervalsBody struct {
	Intervals []availability.WeekdaySlot `json:"intervals"`
}

// Save は時間帯を保存する。成功時は空ボディの201を返す。
// POST /users/time-intervals
func (h *TimeIntervalHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var body timeIntervalsBody
	if err := decodeJSON(w, r, &body); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(err.Error()))
		return
	}

	if err := h.service.SaveWeek(r.Context(), userID, body.Intervals); err != nil {
		var verr *availability.ValidationError
		if errors.As(err, &verr) {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, verr.APIError())
			return
		}
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// List は保存済みの時間帯を7日分のフォーム値で返す。
// GET /users/time-intervals
func (h *TimeIntervalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	slots, err := h.service.ListSlots(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, timeIntervalsBody{Intervals: slots})
}
