package model

import (
	"strings"
	"unicode/utf8"
)

// IsStorableText は文字列がストアのテキスト型に保存できるかどうかを返す。
// PostgreSQLは不正なUTF-8とNULバイトを含むテキストを拒否する。
func IsStorableText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}
