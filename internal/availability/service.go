package availability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/ignitecall/internal/model"
	"github.com/hitoshi/ignitecall/internal/repository"
	"github.com/hitoshi/ignitecall/internal/timeutil"
)

// Recorder は時間帯保存のメトリクス記録インターフェース。
type Recorder interface {
	RecordIntervalsSaved(count int)
}

// Service は時間帯の保存と再表示を提供する。
type Service struct {
	repo     repository.TimeIntervalRepository
	recorder Recorder
	now      func() time.Time
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(repo repository.TimeIntervalRepository, recorder Recorder) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		now:      time.Now,
	}
}

// SaveIntervals は検証済みの時間帯をユーザーに紐付けて保存する。
// 既存の時間帯は同一トランザクション内で置き換えられ、一部だけが保存されることはない。
func (s *Service) SaveIntervals(ctx context.Context, userID string, intervals []Interval) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}

	now := s.now()
	records := make([]*model.WeekdayInterval, len(intervals))
	for i, iv := range intervals {
		records[i] = &model.WeekdayInterval{
			ID:                 uuid.New().String(),
			UserID:             userID,
			WeekDay:            iv.WeekDay,
			StartTimeInMinutes: iv.StartTimeInMinutes,
			EndTimeInMinutes:   iv.EndTimeInMinutes,
			CreatedAt:          now,
		}
	}

	if err := s.repo.ReplaceForUser(ctx, userID, records); err != nil {
		return fmt.Errorf("failed to save time intervals: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordIntervalsSaved(len(records))
	}

	slog.Info("time intervals saved",
		slog.String("user_id", userID),
		slog.Int("count", len(records)),
	)
	return nil
}

// ListSlots は保存済みの時間帯をフォーム形式の7曜日分に戻す。
// 未保存の場合はフォームの初期値を返す。保存済みの場合、保存されていない曜日は無効として返す。
func (s *Service) ListSlots(ctx context.Context, userID string) ([]WeekdaySlot, error) {
	saved, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list time intervals: %w", err)
	}

	slots := DefaultSlots()
	if len(saved) == 0 {
		return slots, nil
	}

	for i := range slots {
		slots[i].Enabled = false
	}
	for _, iv := range saved {
		if iv.WeekDay < 0 || iv.WeekDay >= DaysPerWeek {
			continue
		}
		start, err := timeutil.FromMinutes(iv.StartTimeInMinutes)
		if err != nil {
			return nil, fmt.Errorf("stored interval %s: %w", iv.ID, err)
		}
		end, err := timeutil.FromMinutes(iv.EndTimeInMinutes)
		if err != nil {
			return nil, fmt.Errorf("stored interval %s: %w", iv.ID, err)
		}
		slots[iv.WeekDay] = WeekdaySlot{
			WeekDay:   iv.WeekDay,
			Enabled:   true,
			StartTime: start,
			EndTime:   end,
		}
	}
	return slots, nil
}
