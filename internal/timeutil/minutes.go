// Package timeutil は時刻文字列（HH:MM）と0時からの経過分の相互変換を提供する。
package timeutil

import (
	"errors"
	"fmt"
)

// MinutesPerDay は1日の分数。経過分の有効範囲は [0, MinutesPerDay)。
const MinutesPerDay = 24 * 60

// ErrInvalidTime は時刻文字列または経過分が不正であることを示す。
var ErrInvalidTime = errors.New("invalid time")

// ParseError は時刻変換の失敗を表す。
type ParseError struct {
	Input  string
	Reason string
}

// Error はerrorインターフェースを実装する。
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time %q: %s", e.Input, e.Reason)
}

// Unwrap はErrInvalidTimeを返し、errors.Isでの判定を可能にする。
func (e *ParseError) Unwrap() error {
	return ErrInvalidTime
}

// ToMinutes は24時間表記の "HH:MM" を0時からの経過分に変換する。
// 時・分はともに2桁必須。"8:00" や "08:60"、"24:00" はParseErrorになる。
func ToMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, &ParseError{Input: s, Reason: "expected HH:MM"}
	}

	hour, ok := parseTwoDigits(s[0:2])
	if !ok {
		return 0, &ParseError{Input: s, Reason: "hour is not numeric"}
	}
	minute, ok := parseTwoDigits(s[3:5])
	if !ok {
		return 0, &ParseError{Input: s, Reason: "minute is not numeric"}
	}

	if hour > 23 {
		return 0, &ParseError{Input: s, Reason: "hour out of range"}
	}
	if minute > 59 {
		return 0, &ParseError{Input: s, Reason: "minute out of range"}
	}

	return hour*60 + minute, nil
}

// FromMinutes は0時からの経過分を "HH:MM" に変換する。
// ToMinutes(FromMinutes(m)) == m が 0 <= m < MinutesPerDay で成り立つ。
func FromMinutes(m int) (string, error) {
	if m < 0 || m >= MinutesPerDay {
		return "", &ParseError{Input: fmt.Sprintf("%d", m), Reason: "minutes out of range"}
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60), nil
}

// MustFromMinutes はFromMinutesの結果を返し、範囲外の場合はpanicする。
// DBの制約で範囲が保証された値にのみ使用する。
func MustFromMinutes(m int) string {
	s, err := FromMinutes(m)
	if err != nil {
		panic(err)
	}
	return s
}

func parseTwoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}
