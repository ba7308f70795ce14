// Package blog は集約ブログ記事のドメインロジックを提供する。
package blog

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractSummary はHTMLからプレーンテキストの要約を抽出する。
// タグを取り除いたテキストを空白正規化し、maxRunes文字（rune単位）で
// 切り詰める。切り詰めた場合は末尾に省略記号を付ける。
// パースに失敗する断片でもhtml.Parseは寛容に処理するため、
// どんな入力に対しても必ず文字列を返す。
func ExtractSummary(rawHTML string, maxRunes int) string {
	if rawHTML == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	text := strings.Join(strings.Fields(sb.String()), " ")

	runes := []rune(text)
	if maxRunes > 0 && len(runes) > maxRunes {
		return strings.TrimSpace(string(runes[:maxRunes])) + "…"
	}
	return text
}

// ExtractLeadImage はHTML内で最初に現れるimgタグのsrc属性を返す。
// imgタグがない場合は空文字列を返す。
// 返されたURLの安全性検証は呼び出し元の責務。
func ExtractLeadImage(rawHTML string) string {
	if rawHTML == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	var found string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "img" {
			for _, attr := range n.Attr {
				if attr.Key == "src" && attr.Val != "" {
					found = attr.Val
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return found
}
