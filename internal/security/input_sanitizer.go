package security

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SanitizeInput は自由入力テキスト（チャットメッセージ等）を
// AIバックエンドへ送信する前に正規化する。
//
// 処理内容:
//  1. Unicode互換正規化（NFKC）。視覚的・意味的に等価なコードポイントを
//     正規形に畳み込む（上付き数字→通常数字など）。ホモグリフや
//     正規化差分を使った検査バイパスをここで閉じる。
//  2. ASCII制御文字の除去。ただしTAB(0x09)/LF(0x0A)/CR(0x0D)は保持する。
//     DEL(0x7F)も除去する。
//  3. ゼロ幅文字と双方向制御文字（U+200B〜U+200F、U+202A〜U+202E）の除去。
//     テキスト偽装や表示方向の上書き攻撃に使われる。
//  4. 前後の空白を除去。
//
// どんな入力に対しても必ず文字列を返し、パニックしない。
func SanitizeInput(input string) string {
	s := norm.NFKC.String(input)

	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20 || r == 0x7F:
			return -1
		case r >= 0x200B && r <= 0x200F:
			return -1
		case r >= 0x202A && r <= 0x202E:
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(s)
}
