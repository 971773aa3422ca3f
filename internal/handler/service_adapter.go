package handler

import (
	"context"
	"errors"

	"github.com/hitoshi/ignitecall/internal/availability"
	"github.com/hitoshi/ignitecall/internal/model"
)

// AvailabilityServiceAdapter は availability.Validate と availability.Service を
// AvailabilityServiceInterface に適合させるアダプタ。
type AvailabilityServiceAdapter struct {
	svc *availability.Service
}

// NewAvailabilityServiceAdapter はAvailabilityServiceAdapterを生成する。
func NewAvailabilityServiceAdapter(svc *availability.Service) *AvailabilityServiceAdapter {
	return &AvailabilityServiceAdapter{svc: svc}
}

// SaveWeek はフォーム値を検証・正規化してから保存する。
// 検証に失敗した場合は何も保存しない。
// 曜日の重複は一意制約で検出し、構造エラーとして返す。
func (a *AvailabilityServiceAdapter) SaveWeek(ctx context.Context, userID string, slots []availability.WeekdaySlot) error {
	intervals, err := availability.Validate(slots)
	if err != nil {
		return err
	}
	if err := a.svc.SaveIntervals(ctx, userID, intervals); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return &availability.ValidationError{Kind: availability.KindStructural, Detail: err.Error()}
		}
		return err
	}
	return nil
}

// ListSlots は保存済みの時間帯をフォーム値で返す。
func (a *AvailabilityServiceAdapter) ListSlots(ctx context.Context, userID string) ([]availability.WeekdaySlot, error) {
	return a.svc.ListSlots(ctx, userID)
}

// compile-time interface check
var _ AvailabilityServiceInterface = (*AvailabilityServiceAdapter)(nil)
