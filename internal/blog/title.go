package blog

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vasantisuthar/journal/internal/model"
)

// MaxTitleLength はタイトルの最大文字数。blogs.titleのVARCHAR(500)に合わせる。
const MaxTitleLength = 500

// 入力検証エラー。いずれもmodel.ErrInvalidInputをラップする。
var (
	ErrTitleTooLong   = fmt.Errorf("title exceeds %d characters: %w", MaxTitleLength, model.ErrInvalidInput)
	ErrUnstorableText = fmt.Errorf("title or post contains invalid characters: %w", model.ErrInvalidInput)
)

// Capitalize は先頭の1文字を大文字にし、残りはそのまま返す。
// 何度適用しても結果は変わらない。
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	upper := unicode.ToUpper(r)
	if upper == r {
		return s
	}
	return string(upper) + s[size:]
}

// NormalizeTitle は前後の空白を除いてCapitalizeを適用する。
// 記事の作成・更新・検索はすべてこの関数でタイトルを正規化する。
func NormalizeTitle(s string) string {
	return Capitalize(strings.TrimSpace(s))
}

// ValidateContent は正規化済みのタイトルと本文が保存可能かを検証する。
func ValidateContent(title, post string) error {
	if title == "" {
		return model.ErrEmptyTitle
	}
	if !model.IsStorableText(title) || !model.IsStorableText(post) {
		return ErrUnstorableText
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// isLookupableTitle は保存され得るタイトルかどうかを返す。
// 保存できないタイトルは検索しても必ず見つからない。
func isLookupableTitle(title string) bool {
	return title != "" &&
		model.IsStorableText(title) &&
		utf8.RuneCountInString(title) <= MaxTitleLength
}
