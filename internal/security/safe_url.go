package security

import (
	"net/url"
	"strings"
)

// maxDecodeIterations は反復パーセントデコードの上限回数。
// 深くネストしたエンコードで無制限の処理を強制する攻撃への防御として、
// 上限に達した時点で最後にデコードできた値を使って判定する。
const maxDecodeIterations = 10

// decodeFully は文字列を不動点に達するまで反復的にパーセントデコードする。
// デコードが失敗した場合、変化しなくなった場合、または上限回数に達した
// 場合に打ち切り、最後に正常にデコードできた値を返す。
// 多重パーセントエンコードで javascript: 等の危険スキームを
// 単発デコード検査の裏に隠す攻撃（%253A等）をこれで無効化する。
func decodeFully(s string) string {
	for i := 0; i < maxDecodeIterations; i++ {
		decoded, err := url.PathUnescape(s)
		if err != nil || decoded == s {
			break
		}
		s = decoded
	}
	return s
}

// IsSafeHref はレンダリングされるリンクのナビゲーション先として
// 安全な文字列かどうかを判定する。
//
// 正規化: 前後の空白を除去し、decodeFullyで完全にデコードした
// 文字列に対して以下の許可リスト判定を行う。
//   - "//" で始まる: プロトコル相対URL。相対に見えて任意のホストを
//     指せるため、絶対URL同等として拒否する。
//   - "/" または "#" で始まる: 同一オリジンの相対参照として許可。
//   - 大文字小文字を無視して http:// https:// mailto: で始まる: 許可。
//   - それ以外（javascript: data: vbscript: file: および各種
//     エンコード変種を含む）: すべて拒否。
//
// 判定はプロトコル種別のみで、URLとしての整形式性は検証しない
// （ホストのない "http://" も本契約では安全扱い）。危険スキームの
// 集合は開いているため、拒否リストではなく許可リストで判定する。
func IsSafeHref(href string) bool {
	s := strings.TrimSpace(href)
	if s == "" {
		return false
	}
	s = decodeFully(s)

	if strings.HasPrefix(s, "//") {
		return false
	}
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "#") {
		return true
	}

	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "mailto:")
}

// imageBase は相対パスの画像srcを解決するための中立なベースURL。
// ルート相対パス（/images/x.png）がパースに成功するためだけに使う。
var imageBase = &url.URL{Scheme: "https", Host: "folio.invalid"}

// IsSafeImageSrc はIsSafeHrefの厳格版で、<img src> 用の判定を行う。
// 画像にmailto:は意味を持たないため許可せず、さらにURLパーサーで
// 整形式性を検証する。
//
// IsSafeHrefと同じ正規化（トリム + 反復デコード）とプロトコル相対URLの
// 拒否を行ったうえで、中立ベースに対して標準URLパーサーでパースし、
// スキームが http/https かつホストが空でない場合のみ許可する。
// IsSafeHrefと異なり、ホストのない "http://" はパース結果の空ホストに
// より拒否される。この非対称は意図的に維持している。
func IsSafeImageSrc(src string) bool {
	s := strings.TrimSpace(src)
	if s == "" {
		return false
	}
	s = decodeFully(s)

	if strings.HasPrefix(s, "//") {
		return false
	}

	u, err := imageBase.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Hostname() != ""
}
