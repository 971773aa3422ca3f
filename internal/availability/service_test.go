package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/ignitecall/internal/model"
)

// --- モック ---

type mockIntervalRepo struct {
	replaceFn func(ctx context.Context, userID string, intervals []*model.WeekdayInterval) error
	listFn    func(ctx context.Context, userID string) ([]*model.WeekdayInterval, error)
}

func (m *mockIntervalRepo) ReplaceForUser(ctx context.Context, userID string, intervals []*model.WeekdayInterval) error {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, userID, intervals)
	}
	return nil
}

func (m *mockIntervalRepo) ListByUserID(ctx context.Context, userID string) ([]*model.WeekdayInterval, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

type mockRecorder struct {
	saved []int
}

func (m *mockRecorder) RecordIntervalsSaved(count int) {
	m.saved = append(m.saved, count)
}

// --- テスト ---

func TestService_SaveIntervals(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var stored []*model.WeekdayInterval
	repo := &mockIntervalRepo{
		replaceFn: func(ctx context.Context, userID string, intervals []*model.WeekdayInterval) error {
			if userID != "user-1" {
				t.Errorf("userID = %q, want user-1", userID)
			}
			stored = intervals
			return nil
		},
	}
	recorder := &mockRecorder{}
	svc := NewService(repo, recorder)
	svc.now = func() time.Time { return fixed }

	err := svc.SaveIntervals(context.Background(), "user-1", []Interval{
		{WeekDay: 1, StartTimeInMinutes: 480, EndTimeInMinutes: 1080},
		{WeekDay: 3, StartTimeInMinutes: 540, EndTimeInMinutes: 600},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stored) != 2 {
		t.Fatalf("stored %d records, want 2", len(stored))
	}
	ids := map[string]bool{}
	for i, rec := range stored {
		if rec.UserID != "user-1" {
			t.Errorf("record %d UserID = %q", i, rec.UserID)
		}
		if rec.ID == "" || ids[rec.ID] {
			t.Errorf("record %d has empty or duplicate ID %q", i, rec.ID)
		}
		ids[rec.ID] = true
		if !rec.CreatedAt.Equal(fixed) {
			t.Errorf("record %d CreatedAt = %v, want %v", i, rec.CreatedAt, fixed)
		}
	}
	if stored[0].WeekDay != 1 || stored[0].StartTimeInMinutes != 480 || stored[0].EndTimeInMinutes != 1080 {
		t.Errorf("record 0 = %+v", stored[0])
	}
	if len(recorder.saved) != 1 || recorder.saved[0] != 2 {
		t.Errorf("recorder = %v, want [2]", recorder.saved)
	}
}

func TestService_SaveIntervals_RepoError(t *testing.T) {
	repoErr := errors.New("db down")
	recorder := &mockRecorder{}
	svc := NewService(&mockIntervalRepo{
		replaceFn: func(ctx context.Context, userID string, intervals []*model.WeekdayInterval) error {
			return repoErr
		},
	}, recorder)

	err := svc.SaveIntervals(context.Background(), "user-1", []Interval{{WeekDay: 1, StartTimeInMinutes: 480, EndTimeInMinutes: 1080}})
	if !errors.Is(err, repoErr) {
		t.Errorf("error = %v, want wrapped repoErr", err)
	}
	if len(recorder.saved) != 0 {
		t.Error("recorder should not be called on failure")
	}
}

func TestService_SaveIntervals_EmptyUserID(t *testing.T) {
	called := false
	svc := NewService(&mockIntervalRepo{
		replaceFn: func(ctx context.Context, userID string, intervals []*model.WeekdayInterval) error {
			called = true
			return nil
		},
	}, nil)

	if err := svc.SaveIntervals(context.Background(), "", nil); err == nil {
		t.Error("expected error for empty user ID")
	}
	if called {
		t.Error("repository should not be called")
	}
}

func TestService_ListSlots_NothingSaved(t *testing.T) {
	svc := NewService(&mockIntervalRepo{}, nil)

	slots, err := svc.ListSlots(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := DefaultSlots()
	for i := range want {
		if slots[i] != want[i] {
			t.Errorf("slot %d = %+v, want %+v", i, slots[i], want[i])
		}
	}
}

func TestService_ListSlots_Saved(t *testing.T) {
	svc := NewService(&mockIntervalRepo{
		listFn: func(ctx context.Context, userID string) ([]*model.WeekdayInterval, error) {
			return []*model.WeekdayInterval{
				{ID: "a", UserID: userID, WeekDay: 0, StartTimeInMinutes: 570, EndTimeInMinutes: 690},
				{ID: "b", UserID: userID, WeekDay: 4, StartTimeInMinutes: 480, EndTimeInMinutes: 1080},
			}, nil
		},
	}, nil)

	slots, err := svc.ListSlots(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != DaysPerWeek {
		t.Fatalf("len = %d, want %d", len(slots), DaysPerWeek)
	}

	want0 := WeekdaySlot{WeekDay: 0, Enabled: true, StartTime: "09:30", EndTime: "11:30"}
	if slots[0] != want0 {
		t.Errorf("slot 0 = %+v, want %+v", slots[0], want0)
	}
	if !slots[4].Enabled || slots[4].StartTime != "08:00" || slots[4].EndTime != "18:00" {
		t.Errorf("slot 4 = %+v", slots[4])
	}
	for _, day := range []int{1, 2, 3, 5, 6} {
		if slots[day].Enabled {
			t.Errorf("slot %d should be disabled", day)
		}
	}

	// 保存結果をそのまま再検証できる
	intervals, err := Validate(slots)
	if err != nil {
		t.Fatalf("round trip validation failed: %v", err)
	}
	if len(intervals) != 2 || intervals[0].StartTimeInMinutes != 570 {
		t.Errorf("round trip = %+v", intervals)
	}
}

func TestService_ListSlots_CorruptStoredValue(t *testing.T) {
	svc := NewService(&mockIntervalRepo{
		listFn: func(ctx context.Context, userID string) ([]*model.WeekdayInterval, error) {
			return []*model.WeekdayInterval{{ID: "bad", WeekDay: 2, StartTimeInMinutes: 480, EndTimeInMinutes: 1500}}, nil
		},
	}, nil)

	if _, err := svc.ListSlots(context.Background(), "user-1"); err == nil {
		t.Error("expected error for out-of-range stored minutes")
	}
}
