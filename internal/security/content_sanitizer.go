package security

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// ProfileSanitizer はプロフィールの自由入力テキスト（自己紹介、表示名）から
// HTMLを取り除き、プレーンテキストとして保存できる形にする。
// bluemondayのStrictPolicyを使用し、全てのタグを除去する。
// script、style等の要素は中身ごと除去される。
type ProfileSanitizer struct {
	policy *bluemonday.Policy
}

// NewProfileSanitizer はProfileSanitizerを生成する。
func NewProfileSanitizer() *ProfileSanitizer {
	return &ProfileSanitizer{policy: bluemonday.StrictPolicy()}
}

// SanitizeText はタグを除去し、前後の空白を取り除き、maxRunes文字で切り詰める。
// maxRunesが0以下の場合は切り詰めない。
// HTML特殊文字はエスケープされた状態で返る。
func (s *ProfileSanitizer) SanitizeText(raw string, maxRunes int) string {
	text := strings.TrimSpace(s.policy.Sanitize(raw))
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxRunes]))
}
