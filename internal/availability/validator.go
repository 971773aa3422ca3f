// Package availability は曜日ごとの予約受付時間帯の検証と永続化を提供する。
package availability

import (
	"fmt"

	"github.com/hitoshi/ignitecall/internal/model"
	"github.com/hitoshi/ignitecall/internal/timeutil"
)

const (
	// DaysPerWeek はフォームに含まれる曜日スロット数。
	DaysPerWeek = 7

	// MinIntervalMinutes は1つの時間帯に必要な最小の長さ（分）。
	MinIntervalMinutes = 60
)

// WeekdaySlot はフォームから受け取る1曜日分の入力。
type WeekdaySlot struct {
	WeekDay   int    `json:"weekDay"`
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Interval は検証・正規化済みの時間帯。
type Interval struct {
	WeekDay            int `json:"weekDay"`
	StartTimeInMinutes int `json:"startTimeInMinutes"`
	EndTimeInMinutes   int `json:"endTimeInMinutes"`
}

// Kind はValidationErrorの種別。
type Kind string

const (
	// KindStructural は件数・曜日・時刻書式の不正。
	KindStructural Kind = "structural"
	// KindNoDaysSelected は有効な曜日が1つもないこと。
	KindNoDaysSelected Kind = "noDaysSelected"
	// KindIntervalTooShort は終了が開始から60分未満の時間帯があること。
	KindIntervalTooShort Kind = "intervalTooShort"
)

// ValidationError は時間帯フォームの検証エラー。
// 種別ごとにユーザー向けメッセージを1つだけ持つ。
type ValidationError struct {
	Kind   Kind
	Detail string
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return string(e.Kind)
}

// Message はユーザー向けの表示メッセージを返す。
func (e *ValidationError) Message() string {
	switch e.Kind {
	case KindNoDaysSelected:
		return "少なくとも1つの曜日を選択してください。"
	case KindIntervalTooShort:
		return "終了時刻は開始時刻から1時間以上後にしてください。"
	default:
		return "時間帯の入力形式が不正です。"
	}
}

// APIError は統一エラーフォーマットに変換する。
func (e *ValidationError) APIError() *model.APIError {
	code := model.ErrCodeInvalidIntervals
	switch e.Kind {
	case KindNoDaysSelected:
		code = model.ErrCodeNoDaysSelected
	case KindIntervalTooShort:
		code = model.ErrCodeIntervalTooShort
	}
	return &model.APIError{
		Code:     code,
		Message:  e.Message(),
		Category: "validation",
		Action:   "曜日ごとの時間帯を確認してください。",
	}
}

// Validate は7曜日分のスロットを検証し、有効な曜日のみを分単位の時間帯に正規化する。
//
// 各段階は失敗した時点で打ち切る:
//  1. 7件であること、曜日が0〜6であること、時刻が "HH:MM" であること
//  2. 無効な曜日を除外し、1件以上残ること
//  3. 分単位へ変換
//  4. すべての時間帯が60分以上であること（違反はまとめて1つのエラー）
//
// 結果は入力の曜日順を保持する。副作用はない。
func Validate(slots []WeekdaySlot) ([]Interval, error) {
	if len(slots) != DaysPerWeek {
		return nil, &ValidationError{
			Kind:   KindStructural,
			Detail: fmt.Sprintf("expected %d weekday slots, got %d", DaysPerWeek, len(slots)),
		}
	}

	for i, slot := range slots {
		if slot.WeekDay < 0 || slot.WeekDay > 6 {
			return nil, &ValidationError{
				Kind:   KindStructural,
				Detail: fmt.Sprintf("slot %d: weekDay %d out of range", i, slot.WeekDay),
			}
		}
		if _, err := timeutil.ToMinutes(slot.StartTime); err != nil {
			return nil, &ValidationError{Kind: KindStructural, Detail: fmt.Sprintf("slot %d: %v", i, err)}
		}
		if _, err := timeutil.ToMinutes(slot.EndTime); err != nil {
			return nil, &ValidationError{Kind: KindStructural, Detail: fmt.Sprintf("slot %d: %v", i, err)}
		}
	}

	enabled := make([]WeekdaySlot, 0, len(slots))
	for _, slot := range slots {
		if slot.Enabled {
			enabled = append(enabled, slot)
		}
	}
	if len(enabled) == 0 {
		return nil, &ValidationError{Kind: KindNoDaysSelected}
	}

	intervals := make([]Interval, len(enabled))
	for i, slot := range enabled {
		// 書式は段階1で検証済み
		start, _ := timeutil.ToMinutes(slot.StartTime)
		end, _ := timeutil.ToMinutes(slot.EndTime)
		intervals[i] = Interval{
			WeekDay:            slot.WeekDay,
			StartTimeInMinutes: start,
			EndTimeInMinutes:   end,
		}
	}

	for _, iv := range intervals {
		if iv.EndTimeInMinutes-iv.StartTimeInMinutes < MinIntervalMinutes {
			return nil, &ValidationError{Kind: KindIntervalTooShort}
		}
	}

	return intervals, nil
}

// DefaultSlots はフォームの初期値を返す。
// 月〜金が有効で、全曜日 08:00〜18:00。
func DefaultSlots() []WeekdaySlot {
	slots := make([]WeekdaySlot, DaysPerWeek)
	for day := 0; day < DaysPerWeek; day++ {
		slots[day] = WeekdaySlot{
			WeekDay:   day,
			Enabled:   day >= 1 && day <= 5,
			StartTime: "08:00",
			EndTime:   "18:00",
		}
	}
	return slots
}
