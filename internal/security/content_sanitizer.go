// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は外部ブログから集約した記事HTMLをサニタイズし、
// XSS攻撃などのセキュリティリスクから閲覧者を保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグと属性のみを通過させる。
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はHTMLコンテンツのサニタイズ機能のインターフェースを定義する。
// ブログ記事のコンテンツ保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
	// 許可タグのみを通過させ、script/iframe/styleタグと
	// on*イベント属性を除去する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(rawHTML string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// 初期化時にbluemondayのカスタムポリシーを構築する。
// ポリシーの内容:
//   - 許可タグ: h1〜h4, p, br, a, ul, ol, li, blockquote, pre, code, strong, em, img
//   - 禁止タグ: script, iframe, style および全てのon*イベント属性
//   - aタグのhref属性: IsSafeHrefと同じプロトコル許可リスト
//     （http/https/mailto）。相対URLは外部記事には不適切なため不許可。
//   - aタグ: target="_blank" と rel="noopener noreferrer" を自動付与
//   - imgタグのsrc属性: http/httpsのみ許可
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"h1", "h2", "h3", "h4",
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src").OnElements("img")
	p.AllowAttrs("alt").OnElements("img")

	// スキームごとの許可リスト。bluemondayがパース済みのURLを渡してくるため、
	// 反復デコード検査（IsSafeHref）を再適用してエンコード変種も確実に弾く。
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return IsSafeHref(u.String())
	})
	p.AllowURLSchemeWithCustomPolicy("http", func(u *url.URL) bool {
		return IsSafeHref(u.String())
	})
	p.AllowURLSchemeWithCustomPolicy("mailto", func(u *url.URL) bool {
		return IsSafeHref(u.String())
	})

	return &contentSanitizer{
		policy: p,
	}
}

// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
