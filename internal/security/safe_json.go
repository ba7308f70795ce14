// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"encoding/json"
	"strings"
)

// SafeJSONMarshal は値をHTMLの<script>要素内に埋め込んでも安全な
// JSONテキストに変換する。
//
// シリアライズに失敗した場合（循環参照、chan/func等の非対応型、NaN など）は
// パニックやエラーを返さず、リテラル文字列 "null" を返す。
// 呼び出し元は「値が不正」と「シリアライズ不能」を区別できないが、
// セキュリティゲートとしては同一の安全なデフォルトに倒すのが意図した挙動。
//
// エスケープ規則: encoding/json のHTMLエスケープにより < > & と
// U+2028/U+2029 は \uXXXX 形式で出力される。加えてシングルクォート(')を
// ' にエスケープし、シングルクォートで囲まれたHTML属性からの
// 脱出を防ぐ。' はJSON出力中では文字列リテラル内にしか現れないため、
// テキスト置換で二重エスケープが発生することはない。
func SafeJSONMarshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return strings.ReplaceAll(string(b), "'", `\u0027`)
}

// SafeJSONMarshalIndent はSafeJSONMarshalのインデント付き版。
// json.MarshalIndentと同じprefix/indentセマンティクスを持ち、
// 失敗時は同様に "null" を返す。
func SafeJSONMarshalIndent(v any, prefix, indent string) string {
	b, err := json.MarshalIndent(v, prefix, indent)
	if err != nil {
		return "null"
	}
	return strings.ReplaceAll(string(b), "'", `\u0027`)
}
