// Package security は記事本文の表示時に使うHTMLサニタイズを提供する。
//
// 投稿本文はユーザー入力そのものなので、テンプレートに埋め込む前に
// bluemondayの許可リストポリシーを通し、改行を<br>に置き換える。
package security

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService は記事本文のサニタイズ機能のインターフェースを定義する。
type ContentSanitizerService interface {
	// Sanitize はHTMLをサニタイズして安全なHTMLを返す。
	// 空文字列の入力には空文字列を返す。同一入力に対して常に同一出力を返す。
	Sanitize(rawHTML string) string

	// RenderPost は投稿本文を表示用HTMLに変換する。
	// 改行（\n, \r\n）は<br>に置き換えた上でサニタイズする。
	RenderPost(body string) string
}

type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// ポリシーの内容:
//   - 許可タグ: p, br, a, ul, ol, li, blockquote, pre, code, strong, em, img
//   - script, iframe, style および全てのon*イベント属性は除去
//   - imgのsrc属性: httpsスキームのみ許可
//   - aタグ: target="_blank" と rel="noopener noreferrer" を自動付与
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	// 本文中のリンクは外部サイトのみ。相対URLはアプリのルートと衝突するため許可しない
	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return u.Host != ""
	})

	return &contentSanitizer{policy: p}
}

// Sanitize はHTMLをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}

var newlineReplacer = strings.NewReplacer("\r\n", "<br>", "\r", "<br>", "\n", "<br>")

// RenderPost は投稿本文を表示用HTMLに変換する。
func (s *contentSanitizer) RenderPost(body string) string {
	if body == "" {
		return ""
	}
	return s.policy.Sanitize(newlineReplacer.Replace(body))
}
